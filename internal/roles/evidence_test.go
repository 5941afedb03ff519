package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidenceTop(t *testing.T) {
	var e Evidence
	e.Hit("A", "a")
	e.Hit("B", "b")
	e.Hit("C", "c")
	e.Hit("B", "b")
	e.Hit("C", "c")

	assert.Equal(t, 3, e.Len())
	assert.Equal(t, []Signal{
		{Name: "B", Pattern: "b", Count: 2},
		{Name: "C", Pattern: "c", Count: 2},
		{Name: "A", Pattern: "a", Count: 1},
	}, e.Top(MaxEvidence))
	assert.Len(t, e.Top(1), 1)
	assert.Empty(t, (&Evidence{}).Top(MaxEvidence))
}

func TestEvidenceTopIsCapped(t *testing.T) {
	var e Evidence
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		e.Hit(n, "")
	}
	assert.Len(t, e.Top(MaxEvidence), MaxEvidence)
}

func TestObserveSignals(t *testing.T) {
	tests := []struct {
		value string
		role  Role
		want  []string
	}{
		{"1705312200", Date, []string{"EPOCH_10S"}},
		{"1705312200123", Date, []string{"EPOCH_13MS"}},
		{"15/Jan/2024:10:30:03 +0000", Date, []string{"APACHE_CLF"}},
		{"Jan 15 10:30:02", Date, []string{"SYSLOG_TS"}},
		{"404", Status, []string{"HTTP_STATUS"}},
		{"FAILED", Status, []string{"GENERIC_STATUS"}},
		{"https://example.com/a", Location, []string{"URL"}},
		{"C:\\logs\\app.log", Location, []string{"WINDOWS_PATH"}},
		{"fe80::1", Location, []string{"IPV6"}},
		{"Thread #12", Thread, []string{"THREAD_TOKEN"}},
		{"at com.foo.Bar.run(Bar.java:10)", Message, []string{SignalStackLine}},
		{"   ", Message, nil},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var c Column
			c.Observe(tt.value)
			got := signalNames(c.Evidence(tt.role).Top(-1))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			if tt.want == nil {
				assert.Empty(t, got)
			}
		})
	}
}

func TestWhitespaceRuns(t *testing.T) {
	assert.Equal(t, 0, whitespaceRuns("abc"))
	assert.Equal(t, 1, whitespaceRuns("a   b"))
	assert.Equal(t, 3, whitespaceRuns("a b\t\tc d"))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "date", Date.String())
	assert.Equal(t, "message", Message.String())
	assert.Equal(t, "unknown", Role(42).String())

	s := Score{Date: 1, Status: 2, Location: 3, Thread: 4, Message: 5}
	for i, r := range All {
		assert.Equal(t, float64(i+1), s.Get(r))
	}
}
