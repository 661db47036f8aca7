package matching

import (
	"errors"
	"sort"

	"trade-journal-lab/internal/domain"
)

// ErrInvalidOrdering is returned when executions are not in trade-time order.
var ErrInvalidOrdering = errors.New("executions are not in trade time order")

// SortExecutions orders executions by trade_time ASC. The sort is stable, so
// executions sharing a timestamp keep their arrival order.
func SortExecutions(execs []*domain.Execution) {
	sort.SliceStable(execs, func(i, j int) bool {
		return execs[i].TradeTime < execs[j].TradeTime
	})
}

// ValidateExecutionOrdering checks that executions are in non-decreasing
// trade time. Returns ErrInvalidOrdering if not.
func ValidateExecutionOrdering(execs []*domain.Execution) error {
	for i := 1; i < len(execs); i++ {
		if execs[i].TradeTime < execs[i-1].TradeTime {
			return ErrInvalidOrdering
		}
	}
	return nil
}
