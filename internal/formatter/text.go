package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/sqldia/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	var buf bytes.Buffer
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(&buf) // Blank line between tables
		}
		formatTextTable(&buf, table)
	}

	_, err := f.writer.Write(buf.Bytes())
	return err
}

func formatTextTable(w io.Writer, table schema.Table) {
	// Table header with primary key
	pkStr := ""
	if pk := table.PrimaryKey(); len(pk) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(w, "TABLE %s%s\n", table.Name, pkStr)

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(w, "  %s\n", formatTextColumn(col))
	}
}

func formatTextColumn(col schema.Column) string {
	parts := []string{col.Name + ":", col.Type}
	if !col.IsNullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}
