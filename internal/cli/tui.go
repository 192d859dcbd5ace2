package cli

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/worktime/pkg/render"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// Dashboard styles
var (
	dashHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	dashDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	dashErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	defaultPollInterval = 30 * time.Second
	dashboardTick       = time.Second
	defaultDashWidth    = 60
)

// summarySource provides summaries to the dashboard and accepts mode
// switches. Both the tracker and the HTTP client can act as one.
type summarySource interface {
	Summary(ctx context.Context) (*worktime.Summary, error)
	Switch(ctx context.Context, mode string) (*worktime.Summary, error)
}

// lastSummarier is implemented by sources that remember the last summary
// they fetched successfully.
type lastSummarier interface {
	LastSummary() (*worktime.Summary, time.Time, bool)
}

// trackerSource adapts a tracker to summarySource.
type trackerSource struct {
	t *worktime.Tracker
}

func (s trackerSource) Summary(ctx context.Context) (*worktime.Summary, error) {
	return s.t.Summary(ctx, worktime.NumbersText)
}

func (s trackerSource) Switch(ctx context.Context, mode string) (*worktime.Summary, error) {
	if _, err := s.t.SwitchMode(ctx, mode); err != nil {
		return nil, err
	}
	return s.Summary(ctx)
}

// =============================================================================
// DashboardModel - live summary view
// =============================================================================

type summaryMsg struct {
	summary *worktime.Summary
	err     error
	at      time.Time
}

type tickMsg time.Time

type pollMsg struct{}

// DashboardModel is the bubbletea model of the watch command.
type DashboardModel struct {
	ctx    context.Context
	source summarySource
	poll   time.Duration
	clock  func() time.Time

	summary   *worktime.Summary
	fetchedAt time.Time
	now       time.Time
	err       error
	width     int
}

// newDashboardModel creates a dashboard polling source every poll.
func newDashboardModel(ctx context.Context, source summarySource, poll time.Duration) DashboardModel {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return DashboardModel{
		ctx:    ctx,
		source: source,
		poll:   poll,
		clock:  time.Now,
		now:    time.Now(),
		width:  defaultDashWidth,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tickCmd(), m.pollCmd())
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-4, 10)
	case summaryMsg:
		m.now = msg.at
		if msg.err != nil {
			m.err = msg.err
			if m.summary == nil {
				if ls, ok := m.source.(lastSummarier); ok {
					if s, at, ok := ls.LastSummary(); ok {
						m.summary, m.fetchedAt = s, at
					}
				}
			}
			return m, nil
		}
		m.summary, m.fetchedAt, m.err = msg.summary, msg.at, nil
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case pollMsg:
		if m.autoUpdate() {
			return m, tea.Batch(m.fetch(), m.pollCmd())
		}
		return m, m.pollCmd()
	}
	return m, nil
}

func (m DashboardModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "r":
		return m, m.fetch()
	case "0":
		return m, m.switchTo(worktime.NoMode)
	}
	if m.summary == nil {
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.summary.Modes) {
		return m, m.switchTo(m.summary.Modes[n-1])
	}
	if slices.Contains(m.summary.Modes, key) {
		return m, m.switchTo(key)
	}
	return m, nil
}

// autoUpdate reports whether polling is enabled. Before the first summary
// arrives the dashboard keeps polling.
func (m DashboardModel) autoUpdate() bool {
	if m.summary == nil {
		return true
	}
	on, ok := m.summary.Settings[worktime.SettingAutoUpdate]
	return !ok || on
}

func (m DashboardModel) fetch() tea.Cmd {
	return func() tea.Msg {
		s, err := m.source.Summary(m.ctx)
		return summaryMsg{summary: s, err: err, at: m.clock()}
	}
}

func (m DashboardModel) switchTo(mode string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.source.Switch(m.ctx, mode)
		return summaryMsg{summary: s, err: err, at: m.clock()}
	}
}

func (m DashboardModel) pollCmd() tea.Cmd {
	return tea.Tick(m.poll, func(time.Time) tea.Msg { return pollMsg{} })
}

func tickCmd() tea.Cmd {
	return tea.Tick(dashboardTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m DashboardModel) View() string {
	var b strings.Builder

	if m.summary == nil {
		b.WriteString(StyleDim.Render("Waiting for the first summary..."))
		if m.err != nil {
			b.WriteString("\n" + dashErrorStyle.Render(m.err.Error()))
		}
		return b.String()
	}
	s := m.summary
	palette := render.NewPalette(s.Modes)

	b.WriteString(palette.Style(s.CurrentMode).Bold(true).Render(s.CurrentMode))
	b.WriteString(" ")
	b.WriteString(StyleNumber.Render(s.CurrentElapsed.String()))
	if s.Era != "" {
		b.WriteString(dashDimStyle.Render("  era " + s.Era))
	}
	b.WriteString("\n\n")

	b.WriteString(m.totalsTable(palette))
	b.WriteString("\n")

	if s.RatioStr != "" {
		parts := make([]string, len(s.Ratios))
		for i, r := range s.Ratios {
			parts[i] = r.Timespan + " " + StyleNumber.Render(r.Value.String())
		}
		b.WriteString(styleKey.Render(s.RatioStr) + " " + strings.Join(parts, dashDimStyle.Render(" · ")))
		b.WriteString("\n")
	}

	bar := render.NewBar(m.ctx, s.History, float64(m.width), render.TerminalOptions()...)
	if out := render.RenderTerminal(bar, palette); out != "" {
		b.WriteString("\n" + out + "\n")
		b.WriteString(dashDimStyle.Render("last " + s.History.Timespan))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.ageLine())
	if m.err != nil {
		b.WriteString("  " + dashErrorStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(dashDimStyle.Render(m.helpLine()))

	return b.String()
}

func (m DashboardModel) totalsTable(palette render.Palette) string {
	rows := make([][]string, len(m.summary.Elapsed))
	for i, e := range m.summary.Elapsed {
		rows[i] = []string{e.Mode, e.Time.String()}
	}
	current := m.summary.CurrentMode

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Mode", "Time").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return dashHeaderStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(rows) {
				return base
			}
			mode := rows[row][0]
			if col == 0 {
				base = base.Foreground(lipgloss.Color(palette.Color(mode)))
			}
			if mode == current {
				base = base.Bold(true)
			}
			return base
		})
	return t.Render()
}

// ageLine shows how old the displayed summary is, fading as it ages.
func (m DashboardModel) ageLine() string {
	age := max(m.now.Sub(m.fetchedAt), 0)
	text := "updated " + worktime.HumanTime(age) + " ago"
	return lipgloss.NewStyle().Foreground(fadeColor(worktime.Opacity(age))).Render(text)
}

// fadeColor maps an opacity to a shade of the 256-color grayscale ramp.
func fadeColor(opacity float64) lipgloss.Color {
	return lipgloss.Color(strconv.Itoa(232 + int(math.Round(opacity*23))))
}

func (m DashboardModel) helpLine() string {
	keys := "1-" + strconv.Itoa(len(m.summary.Modes))
	if len(m.summary.Modes) == 1 {
		keys = "1"
	}
	return fmt.Sprintf("%s or mode key: switch  0 stop  r refresh  q quit", keys)
}
