// Package patterns holds the catalogue of named matching rules used to
// recognise timestamps, severities, locations, thread markers and stack
// trace shapes inside log values. The catalogue is built once at package
// initialisation and never changes afterwards.
package patterns

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Name identifies a rule in the catalogue.
type Name string

// Rule names. The string values are what reports print as evidence.
const (
	LogbackLine      Name = "LOGBACK_LINE"
	LeadingTimestamp Name = "LEADING_TIMESTAMP"
	LeadingLevel     Name = "LEADING_LEVEL"

	ISOTimestamp Name = "ISO_TS"
	ISODateOnly  Name = "ISO_DATE_ONLY"
	DMYSlash     Name = "DMY_SLASH"
	ApacheCLF    Name = "APACHE_CLF"
	SyslogTS     Name = "SYSLOG_TS"
	Epoch10S     Name = "EPOCH_10S"
	Epoch13MS    Name = "EPOCH_13MS"
	Log4jTS      Name = "LOG4J_TS"

	LogLevel      Name = "LOG_LEVEL"
	HTTPStatus    Name = "HTTP_STATUS"
	GenericStatus Name = "GENERIC_STATUS"

	IPv4          Name = "IPV4"
	IPv6          Name = "IPV6"
	URL           Name = "URL"
	UnixPath      Name = "UNIX_PATH"
	WindowsPath   Name = "WINDOWS_PATH"
	QualifiedName Name = "JAVA_FQN"

	ExceptionHeader Name = "EXCEPTION_HEADER"
	StackFrame      Name = "STACK_FRAME"
	CausedBy        Name = "CAUSED_BY"
	Suppressed      Name = "SUPPRESSED"

	ThreadToken    Name = "THREAD_TOKEN"
	ThreadName     Name = "JAVA_THREAD_NAME"
	CamelThread    Name = "CAMEL_THREAD"
	ExecutorThread Name = "EXECUTOR_THREAD"
	ParenContext   Name = "PAREN_CONTEXT"
	GenericURI     Name = "GENERIC_URI"
)

// ErrUnknownRule is returned by Lookup for names outside the catalogue.
var ErrUnknownRule = eris.New("patterns: unknown rule")

// Rule is one named matcher. Most rules are a single regular expression;
// a few add a validation step on the matched text.
type Rule struct {
	Name Name
	Expr string

	re    *regexp.Regexp
	valid func(string) bool
}

// Match reports whether the rule matches anywhere in s.
func (r *Rule) Match(s string) bool {
	if r.valid == nil {
		return r.re.MatchString(s)
	}
	for _, m := range r.re.FindAllStringSubmatch(s, -1) {
		if r.valid(m[len(m)-1]) {
			return true
		}
	}
	return false
}

// Submatch returns the leftmost match and its groups, or nil.
func (r *Rule) Submatch(s string) []string {
	return r.re.FindStringSubmatch(s)
}

func (r *Rule) String() string { return string(r.Name) + " " + r.Expr }

// typeName is a bare or dotted type name ending in Exception or Error.
const typeName = `(?:[A-Za-z_$][\w$]*\.)*[A-Za-z_$][\w$]*(?:Exception|Error)`

// Epoch values outside 2000-01-01 .. 2100-01-01 are ignored.
const (
	minEpochMillis = 946684800000
	maxEpochMillis = 4102444800000
)

var catalogue = []*Rule{
	// Fixed five-field layout: timestamp LEVEL [component] (context) message
	rule(LogbackLine, `^(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2},\d{3})\s+(TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\s+\[(.*?)\]\s+\((.*)\)\s+(.*)$`),
	rule(LeadingTimestamp, `^\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:[.,]\d{3})?`),
	rule(LeadingLevel, `(?i)^(?:\S+\s+){1,3}(?:TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\b`),

	rule(ISOTimestamp, `\b\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+\-]\d{2}:?\d{2})?\b`),
	rule(ISODateOnly, `\b\d{4}-\d{2}-\d{2}\b`),
	rule(DMYSlash, `\b\d{2}/\d{2}/\d{4}\b`),
	rule(ApacheCLF, `\b\d{2}/[A-Za-z]{3}/\d{4}:\d{2}:\d{2}:\d{2} [+\-]\d{4}\b`),
	rule(SyslogTS, `\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\b`),
	validated(Epoch10S, `\b(\d{10}(?:\.\d+)?)\b`, func(m string) bool {
		sec, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return false
		}
		ms := int64(sec) * 1000
		return ms >= minEpochMillis && ms <= maxEpochMillis
	}),
	validated(Epoch13MS, `\b(\d{13})\b`, func(m string) bool {
		ms, err := strconv.ParseInt(m, 10, 64)
		return err == nil && ms >= minEpochMillis && ms <= maxEpochMillis
	}),
	rule(Log4jTS, `\b\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2},\d{3}\b`),

	rule(LogLevel, `(?i)\b(?:TRACE|DEBUG|INFO|NOTICE|WARN|WARNING|ERROR|ERR|SEVERE|FATAL|CRITICAL)\b`),
	rule(HTTPStatus, `\b[1-5]\d\d\b`),
	rule(GenericStatus, `(?i)\b(?:SUCCESS|SUCCEEDED|OK|FAIL|FAILED|TIMEOUT|RETRY|DENIED|ALLOWED)\b`),

	rule(IPv4, `\b(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`),
	validated(IPv6, `(?:^|[^\w:.])([0-9A-Fa-f]{0,4}(?::[0-9A-Fa-f]{0,4}){2,7})(?:$|[^\w:.])`, func(m string) bool {
		if strings.Trim(m, ":") == "" {
			return false
		}
		addr, err := netip.ParseAddr(m)
		return err == nil && addr.Is6()
	}),
	rule(URL, `(?i)\bhttps?://[^\s]+\b`),
	rule(UnixPath, `(^/|\s/)[^\s]+`),
	rule(WindowsPath, `\b[A-Za-z]:\\[^\s]+`),
	rule(QualifiedName, `\b(?:[a-zA-Z_]\w*\.)+[A-Z][A-Za-z0-9_]*(?::\d+)?\b`),

	rule(ExceptionHeader, `\b(`+typeName+`)\b(?::\s.*)?`),
	rule(StackFrame, `^\s*at\s+[a-zA-Z_$][\w$]*(?:\.[a-zA-Z_$<][\w$<>]*)*\([^)]*\)(?:\s*~?\[[^\]]*\])?\s*$`),
	rule(CausedBy, `^\s*Caused by:\s+(`+typeName+`)\b(?::\s.*)?\s*$`),
	rule(Suppressed, `^\s*Suppressed:\s+(`+typeName+`)\b(?::\s.*)?\s*$`),

	rule(ThreadToken, `(?i)\bthread\b\s*#?\d+`),
	rule(ThreadName, `(?i)\b(?:main|ForkJoinPool-\d+(?:-worker-\d+)?|http[\- ]?nio-\d+-exec-\d+|OkHttp|Finalizer|Reference\s*Handler|Signal\s*Dispatcher|Timer-\d+|Batch\s*Thread\s*-\s*\d+)\b`),
	rule(CamelThread, `(?i)\bCamel\b\s*\(camel-\d+\)`),
	rule(ExecutorThread, `(?i)\b(?:pool-\d+-thread-\d+|executor-\d+|_POOL|ForkJoinPool)\b`),
	rule(ParenContext, `^\(.*\)$`),
	rule(GenericURI, `\b[a-zA-Z][a-zA-Z0-9+\-.]*://\S+\b`),
}

var registry = func() map[Name]*Rule {
	m := make(map[Name]*Rule, len(catalogue))
	for _, r := range catalogue {
		if _, dup := m[r.Name]; dup {
			panic("patterns: duplicate rule " + string(r.Name))
		}
		m[r.Name] = r
	}
	return m
}()

func rule(name Name, expr string) *Rule {
	return &Rule{Name: name, Expr: expr, re: regexp.MustCompile(expr)}
}

func validated(name Name, expr string, valid func(string) bool) *Rule {
	r := rule(name, expr)
	r.valid = valid
	return r
}

// Lookup returns the rule registered under name.
func Lookup(name Name) (*Rule, error) {
	r, ok := registry[name]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownRule, "%q", name)
	}
	return r, nil
}

// MustGet is Lookup for names known at compile time. An unknown name is a
// programming error and panics.
func MustGet(name Name) *Rule {
	r, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return r
}

// All returns every rule in catalogue order.
func All() []*Rule {
	out := make([]*Rule, len(catalogue))
	copy(out, catalogue)
	return out
}
