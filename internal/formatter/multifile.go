package formatter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tordrt/sqldia/internal/schema"
)

const maxConcurrentWrites = 4

// MultiFileFormatter writes schema to multiple files in a directory
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "dia", "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes an overview file plus one file per table
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if _, err := New(f.OutputFormat, io.Discard); err != nil {
		return err
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeOverview(s); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	names := f.tableFileNames(s.Tables)

	var g errgroup.Group
	g.SetLimit(maxConcurrentWrites)
	for i, table := range s.Tables {
		filename := names[i]
		g.Go(func() error {
			if err := f.writeTableFile(filename, table); err != nil {
				return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// tableFileNames assigns each table its own file. Repeated names get the
// first _N suffix not already taken, so no two tables share a file.
func (f *MultiFileFormatter) tableFileNames(tables []schema.Table) []string {
	ext := Extension(f.OutputFormat)
	taken := make(map[string]bool, len(tables))
	for _, table := range tables {
		taken[table.Name] = true
	}

	used := make(map[string]bool, len(tables))
	names := make([]string, len(tables))
	for i, table := range tables {
		base := table.Name
		if used[base] {
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", table.Name, n)
				if !taken[candidate] && !used[candidate] {
					base = candidate
					break
				}
			}
		}
		used[base] = true
		names[i] = filepath.Join(f.OutputDir, base+ext)
	}
	return names
}

func (f *MultiFileFormatter) writeOverview(s *schema.Schema) error {
	var buf bytes.Buffer

	switch f.OutputFormat {
	case FormatDia:
		// the overview of a diagram is the diagram of every table
		if err := NewDiaFormatter(&buf).Format(s); err != nil {
			return err
		}
	case FormatMarkdown:
		f.writeMarkdownOverview(&buf, s)
	default:
		f.writeTextOverview(&buf, s)
	}

	filename := filepath.Join(f.OutputDir, "_overview"+Extension(f.OutputFormat))
	return os.WriteFile(filename, buf.Bytes(), 0644)
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
	_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", Extension(f.OutputFormat))
	_, _ = fmt.Fprintf(w, "## Tables\n\n")

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "- **%s** (%s)\n", table.Name, overviewSummary(table))
	}
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, s *schema.Schema) {
	_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
	_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", Extension(f.OutputFormat))

	for _, table := range sortedTables(s) {
		_, _ = fmt.Fprintf(w, "%s (%s)\n", table.Name, overviewSummary(table))
	}
}

// writeTableFile writes a single table to its own file
func (f *MultiFileFormatter) writeTableFile(filename string, table schema.Table) error {
	var buf bytes.Buffer

	switch f.OutputFormat {
	case FormatDia:
		if err := NewDiaFormatter(&buf).Format(&schema.Schema{Tables: []schema.Table{table}}); err != nil {
			return err
		}
	case FormatMarkdown:
		formatMarkdownTable(&buf, table)
	default:
		formatTextTable(&buf, table)
	}

	return os.WriteFile(filename, buf.Bytes(), 0644)
}

func sortedTables(s *schema.Schema) []schema.Table {
	sorted := make([]schema.Table, len(s.Tables))
	copy(sorted, s.Tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func overviewSummary(table schema.Table) string {
	summary := fmt.Sprintf("%d columns", len(table.Columns))
	if pk := table.PrimaryKey(); len(pk) > 0 {
		summary += ", PK: " + strings.Join(pk, ", ")
	}
	return summary
}
