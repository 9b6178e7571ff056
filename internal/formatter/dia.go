package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/tordrt/sqldia/internal/schema"
)

const diaHeader = `<?xml version="1.0" encoding="UTF-8"?>
<dia:diagram xmlns:dia="http://www.lysator.liu.se/~alla/dia/">
  <dia:layer name="Background" visible="true" active="true">
`

const diaFooter = `
  </dia:layer>
</dia:diagram>
`

const diaTableOpen = `    <dia:object type="Database - Table" version="0" id="O%d">
      <dia:attribute name="name">
        <dia:string>%s</dia:string>
      </dia:attribute>
      <dia:attribute name="attributes">
`

const diaTableClose = `
      </dia:attribute>
    </dia:object>`

const diaColumn = `        <dia:composite type="table_attribute">
          <dia:attribute name="name">
            <dia:string>%s</dia:string>
          </dia:attribute>
          <dia:attribute name="type">
            <dia:string>%s</dia:string>
          </dia:attribute>
          <dia:attribute name="primary_key">
            <dia:boolean val="%s"/>
          </dia:attribute>
          <dia:attribute name="nullable">
            <dia:boolean val="%s"/>
          </dia:attribute>
        </dia:composite>`

// DiaFormatter formats schema as a Dia database diagram
type DiaFormatter struct {
	writer io.Writer
}

// NewDiaFormatter creates a new Dia formatter
func NewDiaFormatter(w io.Writer) *DiaFormatter {
	return &DiaFormatter{writer: w}
}

// Format writes the whole diagram in one write
func (f *DiaFormatter) Format(s *schema.Schema) error {
	var buf bytes.Buffer
	buf.WriteString(diaHeader)
	// table and column blocks are concatenated without separators
	for i, table := range s.Tables {
		writeDiaTable(&buf, i, table)
	}
	buf.WriteString(diaFooter)

	_, err := f.writer.Write(buf.Bytes())
	return err
}

// writeDiaTable writes one table object; id keeps object ids unique within a layer
func writeDiaTable(buf *bytes.Buffer, id int, table schema.Table) {
	_, _ = fmt.Fprintf(buf, diaTableOpen, id, diaString(table.Name))
	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(buf, diaColumn,
			diaString(col.Name),
			diaString(col.Type),
			strconv.FormatBool(col.IsPrimary),
			strconv.FormatBool(col.IsNullable))
	}
	buf.WriteString(diaTableClose)
}

// diaString wraps a value in the delimiters Dia expects inside dia:string
func diaString(v string) string {
	return "#" + v + "#"
}
