package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clarabennett2626/logprobe/internal/probe"
	"github.com/clarabennett2626/logprobe/internal/report"
	"github.com/clarabennett2626/logprobe/internal/source"
)

func plainRenderer() *report.TextRenderer {
	return report.NewTextRenderer(report.TextConfig{Theme: report.ThemePlain})
}

func setupModel(width, height int, lines int) Model {
	m := NewModel("app.log", plainRenderer())
	m.width = width
	m.height = height
	m.ready = true
	for i := 0; i < lines; i++ {
		m.lines = append(m.lines, fmt.Sprintf("line %d", i))
	}
	return m
}

func sampleReport(t *testing.T) *probe.Report {
	t.Helper()
	lines := make([]string, 20)
	for i := range lines {
		lines[i] = fmt.Sprintf("2025-10-22 00:03:%02d,241 INFO [com.foo.Bar] (main) request %d handled", i, i)
	}
	rep, err := probe.Run(context.Background(), source.Sample{Name: "app.log", Lines: lines}, probe.DefaultOptions())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	return rep
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGeometry(t *testing.T) {
	tests := []struct {
		height, lines     int
		wantView, wantMax int
	}{
		{24, 0, 21, 0},
		{24, 5, 21, 0},
		{24, 100, 21, 79},
		{10, 30, 7, 23},
		{2, 10, 1, 9},
	}
	for _, tt := range tests {
		m := setupModel(80, tt.height, tt.lines)
		if got := m.viewHeight(); got != tt.wantView {
			t.Errorf("height %d: viewHeight() = %d, want %d", tt.height, got, tt.wantView)
		}
		if got := m.maxOffset(); got != tt.wantMax {
			t.Errorf("height %d, %d lines: maxOffset() = %d, want %d", tt.height, tt.lines, got, tt.wantMax)
		}
	}
	if m := NewModel("app.log", plainRenderer()); m.follow || len(m.lines) != 0 {
		t.Error("a new model should start empty and not follow")
	}
}

func TestScrollKeys(t *testing.T) {
	tests := []struct {
		name  string
		start int
		msg   tea.KeyMsg
		want  int
	}{
		{"down", 0, key("j"), 1},
		{"up", 10, key("k"), 9},
		{"up clamps", 0, key("k"), 0},
		{"top", 50, key("g"), 0},
		{"bottom", 0, key("G"), 79},
		{"page down", 0, tea.KeyMsg{Type: tea.KeyPgDown}, 21},
		{"page up", 50, tea.KeyMsg{Type: tea.KeyPgUp}, 29},
		{"half down", 0, key("d"), 10},
		{"half up", 50, key("u"), 40},
		{"page down clamps", 70, tea.KeyMsg{Type: tea.KeyPgDown}, 79},
	}
	for _, tt := range tests {
		m := setupModel(80, 24, 100)
		m.offset = tt.start
		updated, _ := m.Update(tt.msg)
		if got := updated.(Model).offset; got != tt.want {
			t.Errorf("%s: offset = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestFollowReenablesAtBottom(t *testing.T) {
	m := setupModel(80, 24, 100)
	m.offset = m.maxOffset() - 1

	updated, _ := m.Update(key("j"))
	m = updated.(Model)
	if !m.follow {
		t.Error("follow should re-enable when scrolled to bottom")
	}

	updated, _ = m.Update(key("g"))
	if updated.(Model).follow {
		t.Error("follow should be off after scrolling to top")
	}
}

func TestQuit(t *testing.T) {
	m := setupModel(80, 24, 0)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestReportMsg(t *testing.T) {
	m := setupModel(80, 24, 0)
	rep := sampleReport(t)

	updated, _ := m.Update(ReportMsg{Report: rep})
	m = updated.(Model)
	if m.runs != 1 {
		t.Errorf("runs = %d, want 1", m.runs)
	}
	if len(m.lines) == 0 {
		t.Fatal("expected rendered report lines")
	}
	if !strings.Contains(strings.Join(m.lines, "\n"), "logback, 5 columns") {
		t.Errorf("report lines missing strategy: %q", m.lines)
	}

	updated, _ = m.Update(ReportMsg{})
	if updated.(Model).runs != 1 {
		t.Error("a nil report should be ignored")
	}
}

func TestReportMsgKeepsOffset(t *testing.T) {
	m := setupModel(80, 10, 0)
	rep := sampleReport(t)
	updated, _ := m.Update(ReportMsg{Report: rep})
	m = updated.(Model)
	m.offset = 2

	updated, _ = m.Update(ReportMsg{Report: rep})
	m = updated.(Model)
	if m.offset != 2 {
		t.Errorf("offset = %d, want 2 after a new report", m.offset)
	}
}

func TestReportMsgFollow(t *testing.T) {
	m := setupModel(80, 10, 0)
	m.follow = true
	updated, _ := m.Update(ReportMsg{Report: sampleReport(t)})
	m = updated.(Model)
	if m.offset != m.maxOffset() {
		t.Errorf("offset = %d, want %d when following", m.offset, m.maxOffset())
	}
}

func TestErrMsg(t *testing.T) {
	m := NewModelWithReport(sampleReport(t), plainRenderer())
	m.width, m.height, m.ready = 200, 40, true
	before := len(m.lines)

	updated, _ := m.Update(ErrMsg{Err: fmt.Errorf("file vanished")})
	m = updated.(Model)
	if len(m.lines) != before {
		t.Error("an error should not replace the report")
	}
	if !strings.Contains(m.View(), "file vanished") {
		t.Error("status bar should show the error")
	}

	updated, _ = m.Update(ReportMsg{Report: sampleReport(t)})
	if updated.(Model).lastErr != nil {
		t.Error("a new report should clear the error")
	}
}

func TestWindowResize(t *testing.T) {
	m := setupModel(80, 24, 100)
	m.follow = true

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	if m.width != 120 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 120x40", m.width, m.height)
	}
	if m.offset != m.maxOffset() {
		t.Errorf("offset = %d, want %d after resize while following", m.offset, m.maxOffset())
	}

	m = setupModel(80, 24, 100)
	m.offset = 10
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := updated.(Model).offset; got != 10 {
		t.Errorf("offset = %d, want 10 after resize", got)
	}
}

func TestViewNotReady(t *testing.T) {
	m := NewModel("app.log", plainRenderer())
	if v := m.View(); v != "Loading..." {
		t.Errorf("View() = %q before the first resize", v)
	}
}

func TestViewEmptyState(t *testing.T) {
	m := setupModel(80, 24, 0)
	if v := m.View(); !strings.Contains(v, "Waiting for the first report") {
		t.Errorf("View() = %q, want waiting message", v)
	}
}

func TestViewWithLines(t *testing.T) {
	m := setupModel(80, 24, 5)
	v := m.View()
	for i := 0; i < 5; i++ {
		if want := fmt.Sprintf("line %d", i); !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if !strings.Contains(v, "app.log") {
		t.Error("status bar should name the source")
	}
}

func TestViewOnlyVisibleSlice(t *testing.T) {
	m := setupModel(80, 24, 100)
	m.offset = 50
	v := m.View()
	if !strings.Contains(v, "line 50") || !strings.Contains(v, "line 70") {
		t.Error("expected lines 50..70 to be visible")
	}
	if strings.Contains(v, "line 49\n") || strings.Contains(v, "line 71\n") {
		t.Error("lines outside the viewport should not render")
	}
}
