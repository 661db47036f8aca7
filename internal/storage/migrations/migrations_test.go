package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	input := `
-- header comment
CREATE TABLE a (id String);

CREATE TABLE b (
    id String -- trailing
);
`
	stmts := splitStatements(input)

	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id String)", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE TABLE b"))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'it''s fine'; SELECT 1;"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b';"))
}

func TestEmbeddedScripts(t *testing.T) {
	for name, load := range map[string]func() ([]Script, error){
		"postgres":   Postgres,
		"clickhouse": Clickhouse,
		"sqlite":     SQLite,
	} {
		t.Run(name, func(t *testing.T) {
			scripts, err := load()
			require.NoError(t, err)
			require.NotEmpty(t, scripts)

			for i := 1; i < len(scripts); i++ {
				assert.Less(t, scripts[i-1].Name, scripts[i].Name)
			}
			for _, s := range scripts {
				stmts, err := s.Statements()
				require.NoError(t, err, s.Name)
				assert.NotEmpty(t, stmts, s.Name)
			}
		})
	}
}
