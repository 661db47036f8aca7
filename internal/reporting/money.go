package reporting

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a report does not name a known currency.
const DefaultCurrency = money.USD

// formatMoney renders v in currency with symbol and grouping, e.g. $1,234.56.
func formatMoney(v float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}

	amount := decimal.NewFromFloat(v).Round(int32(cur.Fraction))
	minor := amount.Shift(int32(cur.Fraction)).IntPart()
	return money.New(minor, cur.Code).Display()
}

// formatAmount renders v with two decimals and no symbol, for CSV.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatQuantity renders a quantity without trailing zeros.
func formatQuantity(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}

func formatPct(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// formatRate renders a 0..1 fraction as a percentage.
func formatRate(v float64) string {
	return formatPct(v * 100)
}

func formatDate(ms int64, loc *time.Location) string {
	if ms == 0 {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format("2006-01-02")
}

func formatDateTime(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format("2006-01-02 15:04:05")
}

// escapeCell keeps pipes inside a markdown table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
