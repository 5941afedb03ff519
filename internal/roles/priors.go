package roles

import "strings"

// Prior signal names, reported as evidence next to catalogue rule names.
const (
	SignalLastColumn     = "PRIOR_LAST_COLUMN"
	SignalTailColumn     = "PRIOR_TAIL_COLUMN"
	SignalLogback        = "PRIOR_LOGBACK"
	SignalWhitespaceTail = "PRIOR_WHITESPACE_TAIL"
	SignalTraceNudge     = "STACKTRACE_NUDGE"
	SignalKeyName        = "KEY_NAME"
)

// applyGenericPriors pushes the last column, and the last few columns
// from index 2 on, toward message.
func applyGenericPriors(cols []*Column) {
	n := len(cols)
	for i, c := range cols {
		if i == n-1 {
			c.Prior(Message, 1.0, SignalLastColumn)
		}
		if i >= max(2, n-3) {
			c.Prior(Message, 0.5, SignalTailColumn)
		}
	}
}

func applyTraceNudge(cols []*Column) {
	for _, c := range cols {
		c.Prior(Message, 0.2, SignalTraceNudge)
	}
}

// applyLogbackPriors expects the five fields
// timestamp, level, component, context, message.
func applyLogbackPriors(cols []*Column) {
	if len(cols) != 5 {
		return
	}
	cols[0].Prior(Date, 1.5, SignalLogback)
	cols[1].Prior(Status, 1.5, SignalLogback)
	cols[2].Prior(Location, 1.2, SignalLogback)
	cols[3].Prior(Thread, 1.8, SignalLogback)
	cols[4].Prior(Message, 1.2, SignalLogback)
}

// applyWhitespaceTailPriors biases the leading tokens toward the usual
// date, level, component, context order and the tail toward message. How
// far the order is trusted depends on the typical column count.
func applyWhitespaceTailPriors(cols []*Column, typical int) {
	n := len(cols)
	if n == 0 {
		return
	}
	nudge := func(i int, r Role, w float64) {
		if i < n {
			cols[i].Prior(r, w, SignalWhitespaceTail)
		}
	}

	switch {
	case typical >= 5:
		nudge(0, Date, 1.0)
		nudge(1, Status, 0.8)
		nudge(2, Location, 0.8)
		nudge(3, Thread, 0.8)
		for i := 4; i < n; i++ {
			nudge(i, Message, 0.6)
		}
	case typical == 4:
		nudge(0, Date, 1.0)
		nudge(1, Status, 0.8)
		if n > 2 {
			c2 := cols[2].Score
			if c2.Thread < 0.1 && c2.Location >= c2.Thread {
				nudge(2, Location, 0.6)
			} else {
				nudge(2, Thread, 0.6)
			}
		}
		nudge(3, Message, 0.8)
	case typical == 3:
		nudge(0, Date, 1.0)
		nudge(1, Status, 0.8)
		nudge(2, Message, 0.8)
	case typical == 2:
		nudge(0, Date, 0.8)
		nudge(1, Message, 0.8)
	}
}

// keyVocabulary maps lower-cased JSON key names to the role they name.
var keyVocabulary = func() map[string][]Role {
	words := map[Role][]string{
		Date:     {"timestamp", "time", "@timestamp", "ts", "datetime", "date", "log_ts", "eventTime", "event_time"},
		Status:   {"level", "lvl", "severity", "status", "status_code", "http_status", "result", "outcome"},
		Location: {"ip", "client_ip", "remote_addr", "host", "hostname", "path", "url", "uri", "location", "source", "source_ip"},
		Message:  {"message", "msg", "log", "log_message", "event", "detail", "details", "description"},
		Thread:   {"thread", "thread_name", "thrd", "context", "log_thread"},
	}
	m := make(map[string][]Role)
	for _, r := range All {
		for _, w := range words[r] {
			k := strings.ToLower(w)
			m[k] = append(m[k], r)
		}
	}
	return m
}()

func applyKeyPriors(c *Column) {
	for _, r := range keyVocabulary[strings.ToLower(c.Key)] {
		c.Prior(r, 2.0, SignalKeyName)
	}
}
