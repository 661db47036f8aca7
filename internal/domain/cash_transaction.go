package domain

import "strings"

// CashTransaction represents a non-trade cash movement (dividend, tax, fee).
// Corresponds to cash_transactions table.
type CashTransaction struct {
	TransactionID string
	Type          string // broker type, e.g. "Dividends", "Withholding Tax"
	AssetClass    AssetClass
	Symbol        string
	Amount        float64 // signed cash amount
	Date          int64   // Unix timestamp in milliseconds
	Description   string
	Currency      string
}

// IncomeReason maps the transaction type onto a close reason when the
// transaction is dividend income or its withholding. ok is false otherwise.
func (c *CashTransaction) IncomeReason() (CloseReason, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(c.Type), " ", "")
	switch CloseReason(normalized) {
	case CloseReasonDividends, CloseReasonPaymentInLieu, CloseReasonWithholdingTax:
		return CloseReason(normalized), true
	}
	return "", false
}
