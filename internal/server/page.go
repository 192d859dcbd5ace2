package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/render"
	"github.com/matzehuels/worktime/pkg/worktime"
)

//go:embed templates/*.tmpl
var templates embed.FS

// pageRefresh is how often the page reloads itself when autoupdate is on.
const pageRefresh = 30

type pageData struct {
	*worktime.Summary
	Bar        render.Bar
	BarWidth   float64
	AllModes   []string
	AutoUpdate bool
	Refresh    int
	Palette    render.Palette
}

func parsePage() (*template.Template, error) {
	return template.New("main.tmpl").Funcs(template.FuncMap{
		"percent": arrange.FormatPercent,
	}).ParseFS(templates, "templates/main.tmpl")
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, summary *worktime.Summary) {
	bar := render.NewBar(r.Context(), summary.History, s.opts.BarWidth,
		render.WithMeasurer(render.GlyphWidth(s.opts.GlyphWidth)),
		render.WithArrangeOptions(
			arrange.WithMinSpace(s.opts.MinSpace),
			arrange.WithMaxPasses(s.opts.MaxPasses),
			arrange.WithLogger(logger(r)),
		),
	)
	data := pageData{
		Summary:    summary,
		Bar:        bar,
		BarWidth:   s.opts.BarWidth,
		AllModes:   append(append([]string{}, summary.Modes...), worktime.NoMode),
		AutoUpdate: summary.Settings[worktime.SettingAutoUpdate],
		Refresh:    pageRefresh,
		Palette:    render.NewPalette(summary.Modes),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		logger(r).Error("render page", "err", err)
	}
}
