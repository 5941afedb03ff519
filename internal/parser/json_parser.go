package parser

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Field is one top-level key/value pair of a JSON object line.
type Field struct {
	Key   string
	Value string
}

// Object holds the top-level pairs of one JSON line in first-seen key order.
// A repeated key keeps its first position and takes the later value.
type Object struct {
	fields []Field
	index  map[string]int
}

// Len returns the number of distinct keys.
func (o *Object) Len() int { return len(o.fields) }

// Fields returns the pairs in key order.
func (o *Object) Fields() []Field { return o.fields }

// Get returns the value for key.
func (o *Object) Get(key string) (string, bool) {
	i, ok := o.index[key]
	if !ok {
		return "", false
	}
	return o.fields[i].Value, true
}

// Keys returns the keys in first-seen order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

func (o *Object) set(key, value string) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = value
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// ScanObject extracts the top-level pairs of a JSON object line. Nested
// objects and arrays are kept verbatim as their value. Malformed input stops
// the scan and returns whatever pairs were read before the fault; a line that
// does not start with '{' yields an empty object.
func ScanObject(line string) *Object {
	obj := &Object{}
	n := len(line)
	i := 0

	for i < n && isJSONSpace(line[i]) {
		i++
	}
	if i >= n || line[i] != '{' {
		return obj
	}
	i++

	for i < n {
		// skip whitespace and commas
		for i < n && (isJSONSpace(line[i]) || line[i] == ',') {
			i++
		}
		if i >= n || line[i] == '}' || line[i] != '"' {
			break
		}

		keyStart, keyEnd, next := readQuoted(line, i)
		if keyStart < 0 {
			break
		}
		key := unescape(line[keyStart:keyEnd])
		i = next

		for i < n && isJSONSpace(line[i]) {
			i++
		}
		if i >= n || line[i] != ':' {
			break
		}
		i++ // skip ':'
		for i < n && isJSONSpace(line[i]) {
			i++
		}

		var value string
		switch {
		case i < n && line[i] == '"':
			start, end, after := readQuoted(line, i)
			if start < 0 {
				return obj
			}
			value = unescape(line[start:end])
			i = after
		case i < n && (line[i] == '{' || line[i] == '['):
			end := skipBalanced(line, i)
			if end < 0 {
				return obj
			}
			value = line[i : end+1]
			i = end + 1
		default:
			start := i
			for i < n && line[i] != ',' && line[i] != '}' {
				i++
			}
			value = strings.TrimSpace(line[start:i])
		}
		obj.set(key, value)
	}
	return obj
}

// readQuoted scans the string starting at the quote at i and returns the
// content bounds and the index after the closing quote, or -1s when the
// string is unterminated.
func readQuoted(s string, i int) (start, end, next int) {
	if i >= len(s) || s[i] != '"' {
		return -1, -1, -1
	}
	start = i + 1
	esc := false
	for j := start; j < len(s); j++ {
		switch {
		case esc:
			esc = false
		case s[j] == '\\':
			esc = true
		case s[j] == '"':
			return start, j, j + 1
		}
	}
	return -1, -1, -1
}

// skipBalanced returns the index of the bracket closing the one at i,
// ignoring brackets inside quoted strings, or -1 if it never closes.
func skipBalanced(s string, i int) int {
	open := s[i]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}
	depth := 0
	inStr, esc := false, false
	for ; i < len(s); i++ {
		ch := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}
		switch ch {
		case '"':
			inStr = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// unescape resolves JSON string escapes. Escapes it cannot resolve are
// passed through literally.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i+1 >= len(s) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '/':
			b.WriteByte('/')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r, width := decodeUnicodeEscape(s, i+1)
			if width == 0 {
				b.WriteString(`\u`)
				continue
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeUnicodeEscape reads the hex digits after a \u at i, joining a
// following low surrogate escape when present. width is the number of bytes
// consumed after the 'u', 0 when the digits are malformed.
func decodeUnicodeEscape(s string, i int) (rune, int) {
	r1, ok := parseHex4(s, i)
	if !ok {
		return 0, 0
	}
	if !utf16.IsSurrogate(r1) {
		return r1, 4
	}
	if i+10 <= len(s) && s[i+4] == '\\' && s[i+5] == 'u' {
		if r2, ok := parseHex4(s, i+6); ok {
			if r := utf16.DecodeRune(r1, r2); r != unicode.ReplacementChar {
				return r, 10
			}
		}
	}
	return unicode.ReplacementChar, 4
}

func parseHex4(s string, i int) (rune, bool) {
	if i+4 > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i:i+4], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
