package parser

import (
	"regexp"
	"strings"

	"github.com/tordrt/sqldia/internal/schema"
)

var (
	// definitionRe matches one comma-terminated definition: a leading identifier
	// followed by its parameters, which may hold one parenthesized group.
	definitionRe = regexp.MustCompile(`(\w+)\W+([^(,]+(?:[(][^)]*[^,]+)?),`)
	keyListRe    = regexp.MustCompile(`[(]([^)]*)[)]`)
	identRe      = regexp.MustCompile(`\w+`)
	notNullRe    = regexp.MustCompile(`(?i)NOT\W+NULL`)
	typeRe       = regexp.MustCompile(`\w+(?:[(][^)]*[)])?`)
)

// rawColumnDef is a column definition split into its name and unparsed parameters
type rawColumnDef struct {
	name   string
	params string
}

// terminateDefinitions inserts a comma in front of the last closing parenthesis
// so the final definition is comma-terminated like every other one.
func terminateDefinitions(body string) (string, bool) {
	last := strings.LastIndexByte(body, ')')
	if last < 0 {
		return body, false
	}
	return body[:last] + "," + body[last:], true
}

// splitDefinitions separates the key directives of a table body from its column
// definitions. The primary key set comes from the last PRIMARY KEY directive.
func (p *Parser) splitDefinitions(body string) ([]string, []rawColumnDef, []Issue) {
	text, ok := terminateDefinitions(body)
	if !ok {
		return nil, nil, []Issue{{Reason: "missing column list"}}
	}

	var primaryKeys []string
	var defs []rawColumnDef
	var issues []Issue

	for _, m := range definitionRe.FindAllStringSubmatch(text, -1) {
		name, params := m[1], m[2]

		switch {
		case strings.EqualFold(name, "primary"):
			keys := keyListRe.FindStringSubmatch(params)
			if keys == nil {
				issues = append(issues, Issue{
					Definition: name + " " + strings.TrimSpace(params),
					Reason:     "primary key directive has no column list",
				})
				continue
			}
			primaryKeys = identRe.FindAllString(keys[1], -1)
		case strings.EqualFold(name, "key"), p.skip[strings.ToLower(name)]:
			// secondary indexes are not drawn
		default:
			defs = append(defs, rawColumnDef{name: name, params: params})
		}
	}

	return primaryKeys, defs, issues
}

// buildColumns turns raw definitions into columns. It runs after every directive
// of the table has been seen so the primary key position does not matter.
func buildColumns(defs []rawColumnDef, primaryKeys []string) ([]schema.Column, []Issue) {
	pkSet := make(map[string]bool, len(primaryKeys))
	for _, pk := range primaryKeys {
		pkSet[pk] = true
	}

	columns := make([]schema.Column, 0, len(defs))
	var issues []Issue

	for _, def := range defs {
		colType := typeRe.FindString(def.params)
		if colType == "" {
			issues = append(issues, Issue{
				Definition: def.name + " " + strings.TrimSpace(def.params),
				Reason:     "column has no type",
			})
			continue
		}

		columns = append(columns, schema.Column{
			Name:       def.name,
			Type:       colType,
			IsPrimary:  pkSet[def.name],
			IsNullable: !notNullRe.MatchString(def.params),
		})
	}

	return columns, issues
}
