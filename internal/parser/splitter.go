package parser

import (
	"iter"
	"regexp"
	"strings"
)

// createTableRe matches one CREATE TABLE statement up to its terminating semicolon.
// The optional IF NOT EXISTS clause is consumed so the name group holds the table name.
var createTableRe = regexp.MustCompile(`(?is)CREATE\W+TABLE\W+(?:IF\W+NOT\W+EXISTS\W+)?(\w+)([^;]*);`)

// Statement is a single CREATE TABLE statement found in a schema
type Statement struct {
	Name string
	// Body is everything between the table name and the terminating semicolon,
	// including the parentheses around the column list.
	Body string
	// Line is the 1-based line on which the statement starts.
	Line int
}

// Statements yields the CREATE TABLE statements of text in order of appearance.
// Statements without a terminating semicolon never match and are skipped.
func Statements(text string) iter.Seq[Statement] {
	return func(yield func(Statement) bool) {
		pos, line, counted := 0, 1, 0
		for pos < len(text) {
			loc := createTableRe.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}

			start := pos + loc[0]
			line += strings.Count(text[counted:start], "\n")
			counted = start

			stmt := Statement{
				Name: text[pos+loc[2] : pos+loc[3]],
				Body: text[pos+loc[4] : pos+loc[5]],
				Line: line,
			}
			if !yield(stmt) {
				return
			}
			pos += loc[1]
		}
	}
}
