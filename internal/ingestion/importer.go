package ingestion

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/logging"
	"trade-journal-lab/internal/matching"
	"trade-journal-lab/internal/storage"
)

// ImportResult counts what one import did.
type ImportResult struct {
	ExecutionsRead       int
	ExecutionsInserted   int
	CashTransactionsRead int
	CashInserted         int
	Skipped              int
	Filtered             int
}

// Importer merges parsed statements into the raw stores.
// Rows already stored (same id) are ignored, so re-importing an overlapping
// statement is safe.
type Importer struct {
	executions storage.ExecutionStore
	cash       storage.CashTransactionStore
	parser     *Parser
	logger     logrus.FieldLogger
}

// ImporterOptions contains configuration for creating an Importer.
type ImporterOptions struct {
	Executions       storage.ExecutionStore
	CashTransactions storage.CashTransactionStore
	Parser           *Parser // nil uses NewParser()
	Logger           logrus.FieldLogger
}

// NewImporter creates a new statement importer.
func NewImporter(opts ImporterOptions) *Importer {
	parser := opts.Parser
	if parser == nil {
		parser = NewParser(WithParserLogger(opts.Logger))
	}
	return &Importer{
		executions: opts.Executions,
		cash:       opts.CashTransactions,
		parser:     parser,
		logger:     logging.OrDiscard(opts.Logger),
	}
}

// Import stores the statement's executions in trade-time order, then its
// cash transactions.
func (i *Importer) Import(ctx context.Context, stmt *Statement) (*ImportResult, error) {
	res := &ImportResult{
		ExecutionsRead:       len(stmt.Executions),
		CashTransactionsRead: len(stmt.CashTransactions),
		Skipped:              len(stmt.Skipped),
		Filtered:             stmt.Filtered,
	}

	execs := stmt.Executions
	matching.SortExecutions(execs)

	if i.executions != nil && len(execs) > 0 {
		n, err := i.executions.Merge(ctx, execs)
		if err != nil {
			return nil, fmt.Errorf("merge executions: %w", err)
		}
		res.ExecutionsInserted = n
	}

	if i.cash != nil && len(stmt.CashTransactions) > 0 {
		n, err := i.cash.Merge(ctx, stmt.CashTransactions)
		if err != nil {
			return nil, fmt.Errorf("merge cash transactions: %w", err)
		}
		res.CashInserted = n
	}

	i.logger.WithFields(logrus.Fields{
		"executions_read":     res.ExecutionsRead,
		"executions_inserted": res.ExecutionsInserted,
		"cash_read":           res.CashTransactionsRead,
		"cash_inserted":       res.CashInserted,
		"skipped":             res.Skipped,
		"filtered":            res.Filtered,
	}).Info("imported statement")

	return res, nil
}

// ImportFile parses the statement at path and imports it.
func (i *Importer) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement: %w", err)
	}
	defer f.Close()

	stmt, err := i.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return i.Import(ctx, stmt)
}
