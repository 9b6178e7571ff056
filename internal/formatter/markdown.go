package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/sqldia/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	var buf bytes.Buffer
	_, _ = fmt.Fprintln(&buf, "# Database Schema")
	_, _ = fmt.Fprintln(&buf)

	for _, table := range s.Tables {
		formatMarkdownTable(&buf, table)
	}

	_, err := f.writer.Write(buf.Bytes())
	return err
}

func formatMarkdownTable(w io.Writer, table schema.Table) {
	_, _ = fmt.Fprintf(w, "## %s\n\n", table.Name)

	_, _ = fmt.Fprintln(w, "### Columns")
	_, _ = fmt.Fprintln(w)

	for _, col := range table.Columns {
		if constraints := markdownConstraints(col); constraints != "" {
			_, _ = fmt.Fprintf(w, "- **%s:** %s, %s\n", col.Name, col.Type, constraints)
		} else {
			_, _ = fmt.Fprintf(w, "- **%s:** %s\n", col.Name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(w)
}

func markdownConstraints(col schema.Column) string {
	var constraints []string
	if col.IsPrimary {
		constraints = append(constraints, "PK")
	}
	if !col.IsNullable {
		constraints = append(constraints, "NOT NULL")
	}
	return strings.Join(constraints, ", ")
}
