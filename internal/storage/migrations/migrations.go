// Package migrations embeds the schema of every storage backend and splits it
// into executable scripts. Backends apply them through their own Migrate.
package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Script is one migration file.
type Script struct {
	Name string
	SQL  string
}

// Postgres returns the PostgreSQL migrations in lexical order.
func Postgres() ([]Script, error) {
	return load(PostgresFS, "postgres")
}

// Clickhouse returns the ClickHouse migrations in lexical order.
func Clickhouse() ([]Script, error) {
	return load(ClickhouseFS, "clickhouse")
}

// SQLite returns the SQLite migrations in lexical order.
func SQLite() ([]Script, error) {
	return load(SQLiteFS, "sqlite")
}

// load reads every .sql file of dir, sorted by name (001_, 002_, ...).
// Blank files are skipped.
func load(fsys fs.FS, dir string) ([]Script, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	scripts := make([]Script, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		scripts = append(scripts, Script{Name: file, SQL: string(data)})
	}
	return scripts, nil
}

// Statements splits a script for drivers that reject multi-statement Exec.
// Returns an error if a semicolon appears inside a string literal.
func (s Script) Statements() ([]string, error) {
	if err := validateNoSemicolonInStrings(s.SQL); err != nil {
		return nil, fmt.Errorf("validate migration %s: %w", s.Name, err)
	}
	return splitStatements(s.SQL), nil
}

// splitStatements splits SQL content into individual statements by semicolon.
//
// The splitter does NOT handle:
//   - Semicolons inside string literals (e.g., 'foo;bar')
//   - Semicolons inside inline comments (e.g., /* foo; bar */)
//   - Dollar-quoted strings
//
// Migrations must use -- comments only and keep semicolons out of literals.
// validateNoSemicolonInStrings enforces the literal rule.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings checks that SQL doesn't contain semicolons inside
// single-quoted strings, which would break the statement splitter.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			// Escaped quote ''
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		} else if ch == ';' && inString {
			return fmt.Errorf("semicolon found inside string literal")
		}
	}
	return nil
}
