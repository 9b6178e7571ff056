// Package parser extracts tables and columns from the CREATE TABLE statements
// of a SQL schema using pattern matching.
//
// Parsing is best effort: definitions that cannot be read are left out of the
// result and reported as Issues, so callers can decide whether to warn, fail or
// ignore them.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/sqldia/internal/schema"
)

// ErrStrict is returned by CheckIssues when a parse produced any issue.
var ErrStrict = errors.New("schema has definitions that could not be parsed")

// Issue describes a part of a statement that was skipped
type Issue struct {
	Table      string
	Line       int
	Definition string
	Reason     string
}

func (i Issue) String() string {
	if i.Definition == "" {
		return fmt.Sprintf("line %d: table %s: %s", i.Line, i.Table, i.Reason)
	}
	return fmt.Sprintf("line %d: table %s: %s: %q", i.Line, i.Table, i.Reason, i.Definition)
}

// TableResult is the outcome of parsing a single statement
type TableResult struct {
	Table  schema.Table
	Issues []Issue
}

// Parser reads CREATE TABLE statements into the schema model
type Parser struct {
	skip map[string]bool
}

// NewParser creates a parser. skipDirectives lists extra definition names that
// are dropped like KEY (e.g. "unique", "index"); matching is case-insensitive.
func NewParser(skipDirectives []string) *Parser {
	skip := make(map[string]bool, len(skipDirectives))
	for _, d := range skipDirectives {
		if d = strings.TrimSpace(d); d != "" {
			skip[strings.ToLower(d)] = true
		}
	}
	return &Parser{skip: skip}
}

// Parse reads every CREATE TABLE statement of text. Tables come back in source
// order; issues from all statements are collected in order too.
func (p *Parser) Parse(text string) (*schema.Schema, []Issue) {
	s := &schema.Schema{Tables: []schema.Table{}}
	var issues []Issue

	for stmt := range Statements(text) {
		res := p.ParseStatement(stmt)
		s.Tables = append(s.Tables, res.Table)
		issues = append(issues, res.Issues...)
	}

	return s, issues
}

// ParseStatement extracts the columns of one statement. Directives are collected
// in a first pass and columns resolved against them in a second.
func (p *Parser) ParseStatement(stmt Statement) TableResult {
	primaryKeys, defs, issues := p.splitDefinitions(stmt.Body)
	columns, colIssues := buildColumns(defs, primaryKeys)
	issues = append(issues, colIssues...)

	for i := range issues {
		issues[i].Table = stmt.Name
		issues[i].Line = stmt.Line
	}

	return TableResult{
		Table:  schema.Table{Name: stmt.Name, Columns: columns},
		Issues: issues,
	}
}

// CheckIssues returns an error wrapping ErrStrict when issues is not empty.
func CheckIssues(issues []Issue) error {
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d issue(s), first at %s", ErrStrict, len(issues), issues[0])
}
