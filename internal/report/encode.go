package report

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/clarabennett2626/logprobe/internal/probe"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// EncodeJSON writes rep as indented JSON.
func EncodeJSON(w io.Writer, rep *probe.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

// EncodeYAML writes rep as YAML.
func EncodeYAML(w io.Writer, rep *probe.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: encode yaml")
}

// Write encodes rep to w in format f, using text for the text format.
func Write(w io.Writer, rep *probe.Report, f Format, text *TextRenderer) error {
	switch f {
	case FormatJSON:
		return EncodeJSON(w, rep)
	case FormatYAML:
		return EncodeYAML(w, rep)
	case FormatText, "":
		if _, err := io.WriteString(w, text.Render(rep)); err != nil {
			return eris.Wrap(err, "report: write text")
		}
		return nil
	}
	return eris.Errorf("report: unknown format %q", f)
}
