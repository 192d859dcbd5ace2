package render

import (
	"hash/fnv"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/worktime/pkg/worktime"
)

var modeColors = []string{
	"#4e79a7", // blue
	"#f28e2b", // orange
	"#59a14f", // green
	"#e15759", // red
	"#76b7b2", // teal
	"#edc948", // yellow
	"#b07aa1", // purple
	"#9c755f", // brown
}

const noModeColor = "#d0d0d0"

// Palette assigns colours to modes. Configured modes get the palette
// colours in order; other modes get a colour derived from their name.
type Palette struct {
	modes []string
}

// NewPalette creates a palette for the configured modes.
func NewPalette(modes []string) Palette {
	return Palette{modes: slices.Clone(modes)}
}

// Color returns the hex colour of mode.
func (p Palette) Color(mode string) string {
	if mode == "" || mode == worktime.NoMode {
		return noModeColor
	}
	if i := slices.Index(p.modes, mode); i >= 0 {
		return modeColors[i%len(modeColors)]
	}
	h := fnv.New32a()
	h.Write([]byte(mode))
	return modeColors[h.Sum32()%uint32(len(modeColors))]
}

// Style returns a lipgloss style with the mode colour as foreground.
func (p Palette) Style(mode string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color(mode)))
}
