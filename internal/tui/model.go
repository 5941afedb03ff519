// Package tui provides a scrollable terminal viewer for probe reports.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/report"
)

var (
	barBg = lipgloss.Color("#2B2D3A")

	headerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#F4F4F8")).
			Background(lipgloss.Color("#2E7D6B")).
			Padding(0, 1)
	barText  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D8D8E0")).Background(barBg)
	barLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7AF")).Background(barBg).Bold(true).PaddingLeft(1)
	barError = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Background(barBg)
)

// ReportMsg replaces the displayed report.
type ReportMsg struct {
	Report *probe.Report
}

// ErrMsg reports a failed run; the last good report stays on screen.
type ErrMsg struct {
	Err error
}

// Model displays one rendered report at a time.
type Model struct {
	width  int
	height int
	ready  bool

	renderer *report.TextRenderer
	lines    []string
	runs     int
	lastErr  error

	offset int
	// follow keeps the view pinned to the bottom across new reports.
	follow bool

	sourceName string
}

// NewModel creates a viewer that renders reports with r.
func NewModel(sourceName string, r *report.TextRenderer) Model {
	return Model{renderer: r, sourceName: sourceName}
}

// NewModelWithReport creates a viewer already showing rep.
func NewModelWithReport(rep *probe.Report, r *report.TextRenderer) Model {
	m := NewModel(rep.Source, r)
	m.setReport(rep)
	return m
}

func (m *Model) setReport(rep *probe.Report) {
	m.lines = m.renderer.Lines(rep)
	m.runs++
	m.lastErr = nil
	if m.follow {
		m.offset = m.maxOffset()
	}
	m.clampOffset()
}

// viewHeight is the total height minus the title and status bars.
func (m Model) viewHeight() int {
	h := m.height - 3
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) maxOffset() int {
	return max(len(m.lines)-m.viewHeight(), 0)
}

func (m *Model) clampOffset() {
	m.offset = min(max(m.offset, 0), m.maxOffset())
}

func (m Model) isAtBottom() bool {
	return m.offset >= m.maxOffset()
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

type scrollStep struct{ lines, pages, halves int }

var scrollKeys = map[string]scrollStep{
	"j": {lines: 1}, "down": {lines: 1},
	"k": {lines: -1}, "up": {lines: -1},
	"f": {pages: 1}, " ": {pages: 1}, "pgdown": {pages: 1}, "ctrl+f": {pages: 1},
	"b": {pages: -1}, "pgup": {pages: -1}, "ctrl+b": {pages: -1},
	"d": {halves: 1}, "ctrl+d": {halves: 1},
	"u": {halves: -1}, "ctrl+u": {halves: -1},
}

func (m *Model) scroll(delta int) {
	m.follow = false
	m.offset += delta
	m.clampOffset()
	if delta > 0 && m.isAtBottom() {
		m.follow = true
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		page := m.viewHeight()
		switch k := msg.String(); k {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "g", "home":
			m.follow, m.offset = false, 0
		case "G", "end":
			m.follow, m.offset = true, m.maxOffset()
		default:
			if step, ok := scrollKeys[k]; ok {
				m.scroll(step.lines + step.pages*page + step.halves*page/2)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.follow {
			m.offset = m.maxOffset()
		}
		m.clampOffset()

	case ReportMsg:
		if msg.Report != nil {
			m.setReport(msg.Report)
		}

	case ErrMsg:
		m.lastErr = msg.Err
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("logprobe"))
	b.WriteByte('\n')

	vh := m.viewHeight()
	if len(m.lines) == 0 {
		for i := 0; i < vh; i++ {
			if i == vh/2 {
				b.WriteString("  Waiting for the first report...")
			}
			b.WriteByte('\n')
		}
	} else {
		end := min(m.offset+vh, len(m.lines))
		rendered := 0
		for _, l := range m.lines[max(m.offset, 0):end] {
			if m.width > 0 && ansi.StringWidth(l) > m.width {
				l = ansi.Truncate(l, m.width, "…")
			}
			b.WriteString(l)
			b.WriteByte('\n')
			rendered++
		}
		for i := rendered; i < vh; i++ {
			b.WriteByte('\n')
		}
	}

	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) statusBar() string {
	pos := "top"
	switch {
	case m.maxOffset() == 0:
		pos = "all"
	case m.isAtBottom():
		pos = "bottom"
	case m.offset > 0:
		pos = fmt.Sprintf("%d%%", m.offset*100/m.maxOffset())
	}

	src := m.sourceName
	if src == "" {
		src = "stdin"
	}

	field := func(label, value string) string {
		return barLabel.Render(label) + barText.Render(" "+value+" ")
	}
	left := field("src", src) + field("runs", fmt.Sprint(m.runs))
	if m.lastErr != nil {
		left += barError.Render(" " + m.lastErr.Error() + " ")
	}
	right := field("pos", pos)

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + barText.Render(strings.Repeat(" ", gap)) + right
}

// Listen forwards reports and errors to prog until both channels close.
func Listen(prog *tea.Program, reports <-chan *probe.Report, errs <-chan error) {
	go func() {
		for rep := range reports {
			prog.Send(ReportMsg{Report: rep})
		}
	}()
	go func() {
		for err := range errs {
			prog.Send(ErrMsg{Err: err})
		}
	}()
}
