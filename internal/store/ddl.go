package store

import (
	"fmt"
	"strings"

	"github.com/roach88/auditsink/internal/columns"
)

// quoteIdent quotes a SQLite identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualifiedName(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

// sqlType returns the declared type of col. SQLite ignores lengths, but the
// declaration keeps them visible to anyone reading the schema.
func sqlType(col columns.Column) string {
	switch col.DataType {
	case columns.Text:
		if col.DataLength > 0 {
			return fmt.Sprintf("VARCHAR(%d)", col.DataLength)
		}
		return "TEXT"
	case columns.Integer:
		return "INTEGER"
	case columns.Real:
		return "REAL"
	case columns.Numeric:
		return "NUMERIC"
	case columns.Blob:
		return "BLOB"
	case columns.Boolean:
		return "BOOLEAN"
	case columns.DateTime:
		return "DATETIME"
	}
	return "TEXT"
}

func columnDef(col columns.Column) string {
	var b strings.Builder
	b.WriteString(quoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(sqlType(col))
	switch {
	case col.AutoIncrement:
		// SQLite only accepts AUTOINCREMENT on an INTEGER PRIMARY KEY.
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	case col.PrimaryKey:
		b.WriteString(" NOT NULL PRIMARY KEY")
	case col.NotNull:
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// CreateTableSQL returns the CREATE TABLE statement for cols.
func CreateTableSQL(schema, table string, cols []columns.Column) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(qualifiedName(schema, table))
	b.WriteString(" (\n")
	for i, col := range cols {
		b.WriteString("    ")
		b.WriteString(columnDef(col))
		if i < len(cols)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(");\n")
	return b.String()
}

// InsertSQL returns the parameterized INSERT for cols, in order.
func InsertSQL(schema, table string, cols []columns.Column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		names[i] = quoteIdent(col.Name)
		marks[i] = "?"
	}
	if len(cols) == 0 {
		return "INSERT INTO " + qualifiedName(schema, table) + " DEFAULT VALUES"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualifiedName(schema, table),
		strings.Join(names, ", "),
		strings.Join(marks, ", "),
	)
}
