package store

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auditsink/internal/columns"
)

func resolvedColumns(t *testing.T, mutate func(*columns.Options)) []columns.Column {
	t.Helper()
	opts := columns.New()
	if mutate != nil {
		mutate(opts)
	}
	require.NoError(t, opts.Finalize())
	return opts.Resolved().Columns()
}

func customColumns(o *columns.Options) {
	o.Store = []columns.StandardColumn{
		columns.ID, columns.TimeStamp, columns.Level, columns.Message, columns.LogEvent, columns.TraceID,
	}
	o.ID.ColumnName = "EventId"
	o.ID.DataType = columns.Text
	o.Level.StoreAsEnum = true
	o.Message.DataLength = 200
	o.AdditionalColumns = []columns.SQLColumn{
		{ColumnName: "UserName", DataType: columns.Text, NotNull: true, DataLength: 64},
		{ColumnName: "Amount", DataType: columns.Real},
	}
}

func TestCreateTableSQL_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "create_table_default", []byte(CreateTableSQL("main", "Logs", resolvedColumns(t, nil))))
	g.Assert(t, "create_table_custom", []byte(CreateTableSQL("audit", `Audit"Log`, resolvedColumns(t, customColumns))))
}

func TestCreateTableSQL_Executes(t *testing.T) {
	s := createTestStore(t)

	for name, mutate := range map[string]func(*columns.Options){
		"Default": nil,
		"Custom":  customColumns,
	} {
		_, err := s.db.Exec(CreateTableSQL("main", name, resolvedColumns(t, mutate)))
		require.NoError(t, err, name)
	}
}

func TestInsertSQL(t *testing.T) {
	cols := []columns.Column{{Name: "Message"}, {Name: `We"ird`}}
	assert.Equal(t,
		`INSERT INTO "main"."Logs" ("Message", "We""ird") VALUES (?, ?)`,
		InsertSQL("main", "Logs", cols))

	assert.Equal(t, `INSERT INTO "main"."Logs" DEFAULT VALUES`, InsertSQL("main", "Logs", nil))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"Logs"`, quoteIdent("Logs"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, `"main"."Logs"`, qualifiedName("main", "Logs"))
}
