package formatter

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsonedit/internal/models"
)

// DefaultIndent is used when a Formatter is created without options.
const DefaultIndent = "  "

// Formatter turns a document value into the JSON text that is written
// to disk or sent to the save endpoint.
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{indent: DefaultIndent}
}

// NewFormatterWithIndent creates a Formatter using indent per level. An
// empty indent produces compact single-line output.
func NewFormatterWithIndent(indent string) *Formatter {
	return &Formatter{indent: indent}
}

// Format renders v as JSON text with a trailing newline. Object members
// keep their document order.
func (f *Formatter) Format(v models.Value) (string, error) {
	data, err := models.MarshalIndent(v, "", f.indent)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// Compact renders v on a single line without a trailing newline.
func (f *Formatter) Compact(v models.Value) (string, error) {
	data, err := models.MarshalIndent(v, "", "")
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
