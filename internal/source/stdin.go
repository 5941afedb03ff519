package source

import "os"

// StdinName is the sample name used for standard input.
const StdinName = "stdin"

// IsPipe reports whether stdin appears to be a pipe (not a terminal), as in
//
//	kubectl logs pod | logprobe
//	cat app.log | logprobe analyze
func IsPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

// ReadStdin samples standard input.
func (s *Sampler) ReadStdin() (Sample, error) {
	return s.Read(StdinName, s.stdin)
}
