package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/spare00/sospy/internal/model"
)

// JSONWriter outputs the full report in JSON format.
// This format is designed for tool integration and programmatic
// processing; it always carries every aggregation regardless of the
// section the invoking command rendered as text.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because it's sufficient for our needs and keeps the output
// behavior consistent across Go versions.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the full report as JSON.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	if w.indent {
		encoder.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := encoder.Encode(report); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
