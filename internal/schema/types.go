package schema

// Schema represents every table found in a SQL schema or database
type Schema struct {
	Tables []Table
}

// Table represents a database table as drawn in the diagram
type Table struct {
	Name    string
	Columns []Column
}

// Column represents a table column
type Column struct {
	Name       string
	Type       string
	IsPrimary  bool
	IsNullable bool
}

// PrimaryKey returns the names of the primary key columns in column order
func (t Table) PrimaryKey() []string {
	var pk []string
	for _, col := range t.Columns {
		if col.IsPrimary {
			pk = append(pk, col.Name)
		}
	}
	return pk
}
