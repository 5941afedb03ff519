package source

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

const (
	// DefaultMaxLines caps a sample.
	DefaultMaxLines = 2000
	// DefaultMinLineLength drops lines shorter than this many characters.
	DefaultMinLineLength = 1
	// DefaultCharset is the input encoding when none is configured.
	DefaultCharset = "utf-8"

	maxLineBytes = 1024 * 1024
)

// Option configures a Sampler.
type Option func(*Sampler)

// WithMaxLines sets how many lines a sample keeps at most.
func WithMaxLines(n int) Option {
	return func(s *Sampler) { s.maxLines = n }
}

// WithMinLineLength sets the shortest line, in characters, that is kept.
func WithMinLineLength(n int) Option {
	return func(s *Sampler) { s.minLen = n }
}

// WithCharset sets the input encoding by its WHATWG label ("utf-8",
// "latin1", "windows-1252", "shift_jis", ...).
func WithCharset(label string) Option {
	return func(s *Sampler) { s.charset = label }
}

// WithStdin overrides the reader used by ReadStdin (useful for testing).
func WithStdin(r io.Reader) Option {
	return func(s *Sampler) { s.stdin = r }
}

// Sampler reads the leading lines of an input, skipping empty lines,
// comment lines starting with '#', and lines below the minimum length.
type Sampler struct {
	maxLines int
	minLen   int
	charset  string
	stdin    io.Reader
}

// NewSampler creates a Sampler with the given options.
func NewSampler(opts ...Option) *Sampler {
	s := &Sampler{
		maxLines: DefaultMaxLines,
		minLen:   DefaultMinLineLength,
		charset:  DefaultCharset,
		stdin:    os.Stdin,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CheckCharset reports whether label names a supported encoding.
func CheckCharset(label string) error {
	if _, err := htmlindex.Get(label); err != nil {
		return eris.Wrapf(err, "source: unsupported charset %q", label)
	}
	return nil
}

// Read samples r. A failure to decode or read is wrapped in ErrUnreadable
// and no partial sample is returned. Lines longer than the per-line limit
// are dropped and counted in Oversized.
func (s *Sampler) Read(name string, r io.Reader) (Sample, error) {
	enc, err := htmlindex.Get(s.charset)
	if err != nil {
		return Sample{}, eris.Wrapf(ErrUnreadable, "%s: unsupported charset %q", name, s.charset)
	}

	br := bufio.NewReaderSize(enc.NewDecoder().Reader(r), 64*1024)
	sample := Sample{Name: name, Lines: make([]string, 0, min(max(s.maxLines, 0), 4096))}
	for s.maxLines > 0 {
		line, oversized, err := readLine(br, maxLineBytes)
		if err == io.EOF && line == "" && !oversized {
			break
		}
		if err != nil && err != io.EOF {
			return Sample{}, eris.Wrapf(ErrUnreadable, "%s: %v", name, err)
		}
		sample.Read++
		switch {
		case oversized:
			sample.Oversized++
		case s.keep(line):
			sample.Lines = append(sample.Lines, line)
		}
		if len(sample.Lines) >= s.maxLines {
			sample.Capped = true
			break
		}
		if err == io.EOF {
			break
		}
	}
	return sample, nil
}

// readLine returns the next line without its terminator. A line longer
// than limit bytes is consumed up to its newline and reported as oversized
// with an empty text. err is io.EOF when the input ended on this line.
func readLine(br *bufio.Reader, limit int) (line string, oversized bool, err error) {
	var buf []byte
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !oversized {
			if len(buf)+len(chunk) > limit+2 {
				oversized, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch rerr {
		case bufio.ErrBufferFull:
			continue
		case nil:
		default:
			err = rerr
		}
		break
	}
	if oversized {
		return "", true, err
	}
	buf = bytes.TrimSuffix(buf, []byte("\n"))
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	if len(buf) > limit {
		return "", true, err
	}
	return string(buf), false, err
}

func (s *Sampler) keep(line string) bool {
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	return utf8.RuneCountInString(line) >= s.minLen
}

// ReadFile samples the file at path from its beginning.
func (s *Sampler) ReadFile(path string) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, eris.Wrapf(ErrUnreadable, "%s: %v", path, err)
	}
	defer f.Close()
	return s.Read(path, f)
}

// ReadFileTail samples the last lines of the file at path, for inputs that
// keep growing.
func (s *Sampler) ReadFileTail(path string) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, eris.Wrapf(ErrUnreadable, "%s: %v", path, err)
	}
	defer f.Close()
	if err := seekToLastN(f, s.maxLines); err != nil {
		return Sample{}, eris.Wrapf(ErrUnreadable, "%s: %v", path, err)
	}
	return s.Read(path, f)
}

// seekToLastN positions f to read approximately the last n lines by
// scanning backwards from the end for newlines.
func seekToLastN(f *os.File, n int) error {
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()
	if size == 0 || n <= 0 {
		return nil
	}

	const chunkSize = 8192
	newlines := 0
	offset := size
	found := false

	for offset > 0 && !found {
		readSize := min(int64(chunkSize), offset)
		offset -= readSize

		buf := make([]byte, readSize)
		if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
			return err
		}
		for i := len(buf) - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			newlines++
			if newlines > n {
				offset += int64(i) + 1
				found = true
				break
			}
		}
	}

	_, err = f.Seek(offset, io.SeekStart)
	return err
}
