package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSQLStatements(t *testing.T) {
	in := `-- header comment
CREATE TABLE a (id INT);

  -- indented comment
CREATE TABLE b (
    id INT
);
;`

	got := splitSQLStatements(in)

	assert.Equal(t, []string{
		"CREATE TABLE a (id INT)",
		"CREATE TABLE b (\n    id INT\n)",
	}, got)
}

func TestSchemaFilesPerDriver(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverSQLite} {
		raw, err := schemaFS.ReadFile("schema/" + driver + ".sql")
		assert.NoError(t, err, driver)
		assert.Len(t, splitSQLStatements(string(raw)), countTables(driver), driver)
	}
}

func countTables(driver string) int {
	// 11 tables, plus two standalone indexes on sqlite
	if driver == DriverSQLite {
		return 13
	}
	return 11
}
