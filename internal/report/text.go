// Package report renders probe reports as styled terminal text, JSON or
// YAML.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rotisserie/eris"

	"github.com/clarabennett2626/logprobe/internal/parser"
	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/roles"
	"github.com/clarabennett2626/logprobe/internal/stacktrace"
)

// Theme selects the terminal palette.
type Theme int

const (
	ThemeDark Theme = iota
	ThemeLight
	// ThemePlain renders without any styling.
	ThemePlain
)

// ParseTheme maps a configured theme name to a Theme.
func ParseTheme(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", "dark":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	case "plain":
		return ThemePlain, nil
	}
	return ThemeDark, eris.Errorf("report: unknown theme %q", name)
}

// TextConfig holds text rendering configuration.
type TextConfig struct {
	Theme Theme
	// Width truncates every output line; zero disables truncation.
	Width int
	// Evidence is how many signals are listed per assigned role.
	Evidence int
}

// DefaultTextConfig returns the stock layout.
func DefaultTextConfig() TextConfig {
	return TextConfig{Theme: ThemeDark, Width: 120, Evidence: 3}
}

// TextRenderer renders reports as human-readable terminal text.
type TextRenderer struct {
	config TextConfig
	styles themeStyles
}

type themeStyles struct {
	title      lipgloss.Style
	heading    lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	role       lipgloss.Style
	unassigned lipgloss.Style
	evidence   lipgloss.Style
	winner     lipgloss.Style
	exception  lipgloss.Style
	warning    lipgloss.Style
	separator  lipgloss.Style
}

func darkStyles() themeStyles {
	return themeStyles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1),
		heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		value:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		role:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		unassigned: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		evidence:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		winner:     lipgloss.NewStyle().Foreground(lipgloss.Color("76")).Bold(true),
		exception:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func lightStyles() themeStyles {
	return themeStyles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#5A3FC0")).Padding(0, 1),
		heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		value:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
		role:       lipgloss.NewStyle().Foreground(lipgloss.Color("27")),
		unassigned: lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
		evidence:   lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
		winner:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		exception:  lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		warning:    lipgloss.NewStyle().Foreground(lipgloss.Color("172")),
		separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	}
}

func plainStyles() themeStyles {
	s := lipgloss.NewStyle()
	return themeStyles{
		title: s, heading: s, label: s, value: s, role: s, unassigned: s,
		evidence: s, winner: s, exception: s, warning: s, separator: s,
	}
}

// NewTextRenderer creates a renderer with the given config.
func NewTextRenderer(config TextConfig) *TextRenderer {
	if config.Width < 0 {
		config.Width = 0
	}
	if config.Evidence <= 0 {
		config.Evidence = 3
	}
	var styles themeStyles
	switch config.Theme {
	case ThemeLight:
		styles = lightStyles()
	case ThemePlain:
		styles = plainStyles()
	default:
		styles = darkStyles()
	}
	return &TextRenderer{config: config, styles: styles}
}

// Render returns the whole report as text, one entry per line.
func (r *TextRenderer) Render(rep *probe.Report) string {
	return strings.Join(r.Lines(rep), "\n") + "\n"
}

// Lines returns the rendered report split into display lines, each
// truncated to the configured width.
func (r *TextRenderer) Lines(rep *probe.Report) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	add("%s %s", r.styles.title.Render("logprobe"), r.styles.value.Render(rep.Source))

	if rep.Status == probe.StatusInsufficient {
		add("")
		add("%s", r.styles.warning.Render(fmt.Sprintf(
			"Not enough lines to analyse: %d sampled, at least %d required.", rep.Lines, rep.MinLines)))
		return r.truncate(out)
	}

	add("")
	add("%s %s", r.label("Lines"), r.styles.value.Render(fmt.Sprintf("%d sampled", rep.Lines)))
	add("%s %s", r.label("Format"), r.styles.value.Render(
		fmt.Sprintf("%s (json ratio %.2f)", rep.Format, rep.JSONRatio)))

	switch {
	case rep.Delimited != nil:
		out = append(out, r.delimited(rep.Delimited)...)
	case rep.JSON != nil:
		out = append(out, r.json(rep.JSON)...)
	}

	add("")
	add("%s", r.styles.heading.Render("Roles"))
	for _, a := range rep.Roles {
		add("%s", r.role(a))
	}

	if rep.Delimited != nil && len(rep.Delimited.Candidates) > 0 {
		add("")
		add("%s", r.styles.heading.Render("Strategies"))
		for _, c := range rep.Delimited.Candidates {
			add("%s", r.candidate(c, c.Strategy == rep.Delimited.Strategy && !rep.Delimited.Fallback))
		}
	}

	if rep.Exceptions != nil {
		out = append(out, r.exceptions(rep.Exceptions)...)
	}
	return r.truncate(out)
}

func (r *TextRenderer) label(s string) string {
	return r.styles.label.Render(fmt.Sprintf("%-10s", s))
}

func (r *TextRenderer) delimited(d *probe.Delimited) []string {
	if d.Fallback {
		return []string{fmt.Sprintf("%s %s", r.label("Strategy"),
			r.styles.warning.Render("none matched; whole line is the message"))}
	}
	return []string{fmt.Sprintf("%s %s", r.label("Strategy"), r.styles.value.Render(fmt.Sprintf(
		"%s, %d columns, coverage %s, support %s",
		d.Strategy, d.Columns, percent(d.Coverage), percent(d.SupportRatio))))}
}

func (r *TextRenderer) json(j *probe.JSONSummary) []string {
	lines := []string{fmt.Sprintf("%s %s", r.label("Objects"), r.styles.value.Render(fmt.Sprintf(
		"%d parsed, %d unparsed, typically %d keys", j.Parsed, j.Unparsed, j.TypicalKeys)))}
	if j.Fallback {
		lines = append(lines, fmt.Sprintf("%s %s", r.label(""),
			r.styles.warning.Render("no pairs parsed; whole line is the message")))
	}
	if len(j.Keys) > 0 {
		keys := make([]string, len(j.Keys))
		for i, k := range j.Keys {
			keys[i] = fmt.Sprintf("%s(%d)", k.Key, k.Count)
		}
		lines = append(lines, fmt.Sprintf("%s %s", r.label("Keys"), r.styles.value.Render(strings.Join(keys, " "))))
	}
	return lines
}

func (r *TextRenderer) role(a roles.Assignment) string {
	name := r.styles.role.Render(fmt.Sprintf("  %-9s", a.Role))
	if !a.Assigned {
		return name + r.styles.unassigned.Render("unassigned")
	}

	where := fmt.Sprintf("column %d", a.Column)
	if a.Key != "" {
		where = fmt.Sprintf("key %q", a.Key)
	}
	var ev []string
	for _, s := range a.Evidence[:min(len(a.Evidence), r.config.Evidence)] {
		ev = append(ev, fmt.Sprintf("%s(%d)", s.Name, s.Count))
	}
	return fmt.Sprintf("%s%s %s %s",
		name,
		r.styles.value.Render(fmt.Sprintf("%-12s", where)),
		r.styles.label.Render(fmt.Sprintf("score %-8.2f", a.Scores.Get(a.Role))),
		r.styles.evidence.Render(strings.Join(ev, " ")),
	)
}

func (r *TextRenderer) candidate(c probe.Candidate, chosen bool) string {
	variance := "-"
	if c.Variance != nil {
		variance = fmt.Sprintf("%.2f", *c.Variance)
	}
	line := fmt.Sprintf("  %-16s %2d cols  score %.3f  coverage %s  support %s  roles %s  tail %.2f  var %s",
		c.Strategy, c.Columns, c.Score, percent(c.Coverage), percent(c.SupportRatio),
		percent(c.RoleCoverage), c.Tailness, variance)
	if chosen {
		return r.styles.winner.Render(line)
	}
	return r.styles.value.Render(line)
}

func (r *TextRenderer) exceptions(e *probe.Exceptions) []string {
	lines := []string{"", r.styles.heading.Render(fmt.Sprintf("Exceptions (%d)", e.Total))}
	if e.Total == 0 {
		return append(lines, r.styles.unassigned.Render("  none detected"))
	}
	for _, tc := range e.ByType {
		lines = append(lines, fmt.Sprintf("  %s %s",
			r.styles.exception.Render(tc.Type), r.styles.label.Render(fmt.Sprintf("x%d", tc.Count))))
	}
	for _, s := range e.Examples {
		lines = append(lines, r.styles.evidence.Render(fmt.Sprintf("  lines %d-%d: %s", s.Start+1, s.End+1, s.Header)))
		if detail := spanDetail(s); detail != "" {
			lines = append(lines, r.styles.label.Render("    "+detail))
		}
	}
	return lines
}

func spanDetail(s stacktrace.Span) string {
	var parts []string
	if s.Frames > 0 {
		parts = append(parts, fmt.Sprintf("%d frames", s.Frames))
	}
	if len(s.Causes) > 0 {
		parts = append(parts, "caused by "+strings.Join(s.Causes, ", "))
	}
	if len(s.Suppressed) > 0 {
		parts = append(parts, "suppressed "+strings.Join(s.Suppressed, ", "))
	}
	return strings.Join(parts, "; ")
}

func (r *TextRenderer) truncate(lines []string) []string {
	if r.config.Width <= 0 {
		return lines
	}
	for i, l := range lines {
		if ansi.StringWidth(l) > r.config.Width {
			lines[i] = ansi.Truncate(l, r.config.Width, "…")
		}
	}
	return lines
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Summary is a one-line digest of a report, used by the watch command
// between full renders.
func Summary(rep *probe.Report) string {
	if rep.Status == probe.StatusInsufficient {
		return fmt.Sprintf("%s: insufficient sample (%d lines)", rep.Source, rep.Lines)
	}
	layout := rep.Format.String()
	switch {
	case rep.Delimited != nil && !rep.Delimited.Fallback:
		layout = fmt.Sprintf("%s/%s x%d", rep.Format, rep.Delimited.Strategy, rep.Delimited.Columns)
	case rep.Format == parser.FormatJSON && rep.JSON != nil:
		layout = fmt.Sprintf("%s x%d keys", rep.Format, rep.JSON.TypicalKeys)
	}
	assigned := 0
	for _, a := range rep.Roles {
		if a.Assigned {
			assigned++
		}
	}
	spans := 0
	if rep.Exceptions != nil {
		spans = rep.Exceptions.Total
	}
	return fmt.Sprintf("%s: %d lines, %s, %d/%d roles, %d exceptions",
		rep.Source, rep.Lines, layout, assigned, len(roles.All), spans)
}
