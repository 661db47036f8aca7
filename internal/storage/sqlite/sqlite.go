// Package sqlite stores the whole journal in one local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"trade-journal-lab/internal/storage"
	"trade-journal-lab/internal/storage/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a database/sql handle on the modernc driver.
type DB struct {
	sql *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path != MemoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; also keeps an in-memory database on a single connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	db := &DB{sql: sqlDB}
	if err := db.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.sql.Close()
}

// Migrate applies the embedded SQLite migrations. They are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	scripts, err := migrations.SQLite()
	if err != nil {
		return err
	}
	for _, s := range scripts {
		stmts, err := s.Statements()
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", s.Name, err)
			}
		}
	}
	return nil
}

// Stores returns every journal store backed by db.
func (db *DB) Stores() *storage.Stores {
	return &storage.Stores{
		Executions:        NewExecutionStore(db),
		CashTransactions:  NewCashTransactionStore(db),
		ClosedTrades:      NewClosedTradeStore(db),
		OpenPositions:     NewOpenPositionStore(db),
		StrategySummaries: NewStrategySummaryStore(db),
		CampaignSummaries: NewCampaignSummaryStore(db),
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isDuplicateKeyError checks if error is a UNIQUE or PRIMARY KEY violation.
func isDuplicateKeyError(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// replaceAll clears table and runs insert for every row inside one
// transaction. A duplicate key rolls back and returns ErrDuplicateKey.
func (db *DB) replaceAll(ctx context.Context, table string, n int, insert func(tx *sql.Tx, i int) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
