// Package formatter renders a parsed schema as a Dia diagram, compact text or
// markdown, to a single writer or split across files.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/sqldia/internal/schema"
)

// Output formats
const (
	FormatDia      = "dia"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// Formats lists the supported output formats
var Formats = []string{FormatDia, FormatText, FormatMarkdown}

// Formatter writes a schema in one output format
type Formatter interface {
	Format(s *schema.Schema) error
}

// New returns the formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatDia:
		return NewDiaFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be 'dia', 'text' or 'markdown')", format)
	}
}

// Extension returns the file extension used for format
func Extension(format string) string {
	switch format {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".dia"
	}
}
