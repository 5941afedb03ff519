package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarabennett2626/logprobe/internal/parser"
)

func logbackRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = parser.Tokenize("2025-10-22 00:03:35,241 INFO [com.foo.Bar] (main) started", parser.StrategyLogback)
	}
	return rows
}

func signalNames(sigs []Signal) []string {
	names := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
	}
	return names
}

func TestClassifyColumns_Logback(t *testing.T) {
	res := ClassifyColumns(logbackRows(10), 5, Options{Strategy: parser.StrategyLogback})

	want := map[Role]int{Date: 0, Status: 1, Location: 2, Thread: 3, Message: 4}
	for role, col := range want {
		a := res.Get(role)
		require.True(t, a.Assigned, role.String())
		assert.Equal(t, col, a.Column, role.String())
		assert.NotEmpty(t, a.Evidence, role.String())
	}
	assert.Equal(t, 1.0, res.Coverage())

	date := signalNames(res.Get(Date).Evidence)
	assert.Contains(t, date, "ISO_TS")
	assert.Contains(t, date, "LOG4J_TS")
	assert.Contains(t, date, SignalLogback)
	assert.Contains(t, signalNames(res.Get(Thread).Evidence), "JAVA_THREAD_NAME")
}

func TestClassifyColumns_IgnoresOtherWidths(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"only"}, {"x", "y", "z"}}
	res := ClassifyColumns(rows, 2, Options{Strategy: parser.StrategyComma})
	require.Len(t, res.Columns, 2)
	assert.Equal(t, 1.0, res.Columns[0].AvgLen())
}

func TestClassifyColumns_EmptyInput(t *testing.T) {
	res := ClassifyColumns(nil, 0, Options{})
	assert.Empty(t, res.Columns)
	require.Len(t, res.Assignments, len(All))
	for _, a := range res.Assignments {
		assert.False(t, a.Assigned)
		assert.Equal(t, -1, a.Column)
	}
	assert.Zero(t, res.Coverage())
}

func TestClassifyColumns_SingleColumnIsMessage(t *testing.T) {
	rows := [][]string{{"lorem"}, {"ipsum"}, {"dolor"}}
	res := ClassifyColumns(rows, 1, Options{Strategy: parser.StrategyWhitespace})
	msg := res.Get(Message)
	require.True(t, msg.Assigned)
	assert.Equal(t, 0, msg.Column)
	assert.Equal(t, []string{SignalLastColumn}, signalNames(msg.Evidence))
	assert.False(t, res.Get(Date).Assigned)
}

func TestClassifyColumns_MessagePrefersLongestColumn(t *testing.T) {
	rows := [][]string{{"zz", "alpha beta gamma delta", "x"}}
	res := ClassifyColumns(rows, 3, Options{Strategy: parser.StrategyComma})

	// The last column has the higher raw message score (1.5 against 1.0)
	// but the longest column clears the floor and wins.
	assert.Equal(t, 1.5, res.Columns[2].Score.Message)
	assert.Equal(t, 1.0, res.Columns[1].Score.Message)
	assert.Equal(t, 1, res.Get(Message).Column)
}

func TestClassifyColumns_MessageFallsBackToScore(t *testing.T) {
	rows := [][]string{{"aaaaaaaaaaaaaaaaaaaa", "b", "c"}}
	res := ClassifyColumns(rows, 3, Options{Strategy: parser.StrategyComma})
	assert.Equal(t, 2, res.Get(Message).Column)
}

func TestClassifyColumns_TraceNudge(t *testing.T) {
	rows := [][]string{{"a", "b"}}
	plain := ClassifyColumns(rows, 2, Options{Strategy: parser.StrategyComma})
	nudged := ClassifyColumns(rows, 2, Options{Strategy: parser.StrategyComma, TraceNudge: true})

	assert.InDelta(t, plain.Columns[0].Score.Message+0.2, nudged.Columns[0].Score.Message, 1e-9)
	assert.Contains(t, signalNames(nudged.Columns[0].Evidence(Message).Top(-1)), SignalTraceNudge)
}

func TestWhitespaceTailPriors(t *testing.T) {
	scores := func(typical int, rows [][]string) []Score {
		res := ClassifyColumns(rows, typical, Options{Strategy: parser.StrategyWhitespaceTail})
		out := make([]Score, len(res.Columns))
		for i, c := range res.Columns {
			out[i] = c.Score
		}
		return out
	}

	two := scores(2, [][]string{{"q", "w"}})
	assert.Equal(t, 0.8, two[0].Date)
	assert.InDelta(t, 1.8, two[1].Message, 1e-9)

	three := scores(3, [][]string{{"q", "w", "e"}})
	assert.Equal(t, 1.0, three[0].Date)
	assert.Equal(t, 0.8, three[1].Status)
	assert.InDelta(t, 2.3, three[2].Message, 1e-9)

	// Third column with no thread evidence leans to location.
	four := scores(4, [][]string{{"q", "w", "e", "r"}})
	assert.Equal(t, 0.6, four[2].Location)
	assert.Zero(t, four[2].Thread)

	// Third column already looking like a thread keeps leaning that way.
	fourThread := scores(4, [][]string{{"q", "w", "main", "r"}})
	assert.InDelta(t, 1.6, fourThread[2].Thread, 1e-9)
	assert.Zero(t, fourThread[2].Location)

	six := scores(6, [][]string{{"q", "w", "e", "r", "t", "y"}})
	assert.Equal(t, 1.0, six[0].Date)
	assert.Equal(t, 0.8, six[3].Thread)
	assert.InDelta(t, 1.1, six[4].Message, 1e-9)
}

func TestClassifyKeys(t *testing.T) {
	lines := []string{
		`{"@timestamp":"2024-01-15T10:30:00Z","Level":"info","msg":"Server started on port 8080","host":"10.0.0.1","thread":"main"}`,
		`{"@timestamp":"2024-01-15T10:30:01Z","Level":"error","msg":"Connection refused by peer","host":"10.0.0.2","thread":"pool-1-thread-2"}`,
	}
	objects := make([]*parser.Object, len(lines))
	for i, l := range lines {
		objects[i] = parser.ScanObject(l)
	}

	res := ClassifyKeys(objects, DefaultFloor)
	want := map[Role]string{Date: "@timestamp", Status: "Level", Location: "host", Thread: "thread", Message: "msg"}
	for role, key := range want {
		a := res.Get(role)
		require.True(t, a.Assigned, role.String())
		assert.Equal(t, key, a.Key, role.String())
		assert.Equal(t, -1, a.Column)
		assert.Contains(t, signalNames(a.Evidence), SignalKeyName)
	}
	assert.Equal(t, []string{"@timestamp", "Level", "msg", "host", "thread"}, func() []string {
		keys := make([]string, len(res.Columns))
		for i, c := range res.Columns {
			keys[i] = c.Key
		}
		return keys
	}())
}

func TestConfidenceFloorIsStrict(t *testing.T) {
	// A lone date-only value scores exactly 0.5 for date and nothing else.
	res := ClassifyKeys([]*parser.Object{parser.ScanObject(`{"foo":"2024-01-15"}`)}, DefaultFloor)
	require.Len(t, res.Columns, 1)
	assert.Equal(t, 0.5, res.Columns[0].Score.Date)
	for _, a := range res.Assignments {
		assert.False(t, a.Assigned, a.Role.String())
	}
}

func TestBestIndexTiesGoToFirstColumn(t *testing.T) {
	cols := []*Column{{Index: 0}, {Index: 1}}
	cols[0].Prior(Status, 1.0, "x")
	cols[1].Prior(Status, 1.0, "x")
	assert.Equal(t, 0, bestIndex(cols, Status, DefaultFloor))
	assert.Equal(t, -1, bestIndex(cols, Status, 1.0))
	assert.Equal(t, -1, bestIndex(nil, Status, DefaultFloor))
}

func TestCoverageIgnoresMessageOverride(t *testing.T) {
	col := &Column{Index: 0}
	col.Observe("some words here and there")
	col.Score = Score{}
	col.Prior(Message, DefaultFloor, "x")

	cols := []*Column{col}
	assert.Equal(t, 0, bestMessageIndex(cols, DefaultFloor), "override accepts a score at the floor")
	assert.Equal(t, -1, bestIndex(cols, Message, DefaultFloor))

	res := &Result{Columns: cols, floor: DefaultFloor}
	assert.Zero(t, res.Coverage())

	col.Prior(Message, 0.1, "x")
	assert.InDelta(t, 0.2, res.Coverage(), 1e-9)
}
