// Package ingestion reads broker statements and merges their rows into the
// raw journal stores.
package ingestion

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
	"trade-journal-lab/internal/logging"
)

// ErrInvalidStatement is returned when a statement is not well-formed XML.
var ErrInvalidStatement = errors.New("invalid flex statement")

// Flex dateTime layouts, most specific first.
var flexTimeLayouts = []string{
	"20060102;150405",
	"20060102 150405",
	"2006-01-02;15:04:05",
	"2006-01-02 15:04:05",
	"20060102",
	"2006-01-02",
}

// Skip reasons for statement rows.
const (
	SkipMissingID       = "missing id"
	SkipMissingDateTime = "missing dateTime"
	SkipBadDateTime     = "unparseable dateTime"
	SkipBadNumber       = "unparseable number"
)

// SkippedRow records a statement row that could not be converted.
type SkippedRow struct {
	Element string // "Trade" or "CashTransaction"
	ID      string
	Reason  string
	Detail  string
}

// Statement is the content of one Flex query statement.
type Statement struct {
	Executions       []*domain.Execution
	CashTransactions []*domain.CashTransaction
	Skipped          []SkippedRow
	Filtered         int // cash-class and dotted-symbol trades

	derived map[string]int // content key -> rows seen without a tradeID
}

// flexTrade mirrors the attributes of a <Trade> row.
type flexTrade struct {
	TradeID            string `xml:"tradeID,attr"`
	Symbol             string `xml:"symbol,attr"`
	UnderlyingSymbol   string `xml:"underlyingSymbol,attr"`
	Description        string `xml:"description,attr"`
	AssetCategory      string `xml:"assetCategory,attr"`
	DateTime           string `xml:"dateTime,attr"`
	Quantity           string `xml:"quantity,attr"`
	TradePrice         string `xml:"tradePrice,attr"`
	IBCommission       string `xml:"ibCommission,attr"`
	BuySell            string `xml:"buySell,attr"`
	OpenCloseIndicator string `xml:"openCloseIndicator,attr"`
	Strike             string `xml:"strike,attr"`
	Expiry             string `xml:"expiry,attr"`
	PutCall            string `xml:"putCall,attr"`
	Multiplier         string `xml:"multiplier,attr"`
	Notes              string `xml:"notes,attr"`
	Currency           string `xml:"currency,attr"`
}

// flexCashTransaction mirrors the attributes of a <CashTransaction> row.
type flexCashTransaction struct {
	TransactionID string `xml:"transactionID,attr"`
	Type          string `xml:"type,attr"`
	AssetCategory string `xml:"assetCategory,attr"`
	Symbol        string `xml:"symbol,attr"`
	Amount        string `xml:"amount,attr"`
	DateTime      string `xml:"dateTime,attr"`
	ReportDate    string `xml:"reportDate,attr"`
	Description   string `xml:"description,attr"`
	Currency      string `xml:"currency,attr"`
}

// Parser converts Flex XML into domain rows.
type Parser struct {
	loc    *time.Location
	logger logrus.FieldLogger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLocation sets the zone statement timestamps are read in. Default UTC.
func WithLocation(loc *time.Location) ParserOption {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithParserLogger sets the logger for skipped rows.
func WithParserLogger(logger logrus.FieldLogger) ParserOption {
	return func(p *Parser) {
		p.logger = logging.OrDiscard(logger)
	}
}

// NewParser creates a Flex statement parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{loc: time.UTC, logger: logging.Discard()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFlexStatement parses r with a default Parser.
func ParseFlexStatement(r io.Reader) (*Statement, error) {
	return NewParser().Parse(r)
}

// Parse reads every <Trade> and <CashTransaction> element of r, at any depth.
// Rows that cannot be converted are skipped and reported; trades on the
// CASH asset class or with a dotted symbol are dropped and counted.
// Returns ErrInvalidStatement if r is not well-formed XML.
func (p *Parser) Parse(r io.Reader) (*Statement, error) {
	stmt := &Statement{}
	dec := xml.NewDecoder(r)
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStatement, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true

		switch start.Name.Local {
		case "Trade":
			var row flexTrade
			if err := dec.DecodeElement(&row, &start); err != nil {
				return nil, fmt.Errorf("%w: decode Trade: %v", ErrInvalidStatement, err)
			}
			p.addTrade(stmt, &row)
		case "CashTransaction":
			var row flexCashTransaction
			if err := dec.DecodeElement(&row, &start); err != nil {
				return nil, fmt.Errorf("%w: decode CashTransaction: %v", ErrInvalidStatement, err)
			}
			p.addCashTransaction(stmt, &row)
		}
	}

	if !sawElement {
		return nil, fmt.Errorf("%w: no elements", ErrInvalidStatement)
	}

	p.logger.WithFields(logrus.Fields{
		"executions":        len(stmt.Executions),
		"cash_transactions": len(stmt.CashTransactions),
		"skipped":           len(stmt.Skipped),
		"filtered":          stmt.Filtered,
	}).Info("parsed flex statement")

	return stmt, nil
}

func (p *Parser) addTrade(stmt *Statement, row *flexTrade) {
	if strings.EqualFold(strings.TrimSpace(row.AssetCategory), string(domain.AssetClassCash)) ||
		strings.Contains(row.Symbol, ".") {
		stmt.Filtered++
		return
	}

	id := strings.TrimSpace(row.TradeID)
	if id == "" {
		id = stmt.deriveTradeID(row)
	}
	skip := func(reason, detail string) {
		p.skip(stmt, SkippedRow{Element: "Trade", ID: id, Reason: reason, Detail: detail})
	}
	tradeTime, reason := p.parseTime(row.DateTime)
	if reason != "" {
		skip(reason, row.DateTime)
		return
	}

	var nums [5]float64
	for i, raw := range []string{row.Quantity, row.TradePrice, row.IBCommission, row.Strike, row.Multiplier} {
		v, err := parseNumber(raw)
		if err != nil {
			skip(SkipBadNumber, raw)
			return
		}
		nums[i] = v
	}

	stmt.Executions = append(stmt.Executions, &domain.Execution{
		ExecutionID: id,
		Symbol:      strings.TrimSpace(row.Symbol),
		Underlying:  strings.TrimSpace(row.UnderlyingSymbol),
		AssetClass:  domain.AssetClass(strings.ToUpper(strings.TrimSpace(row.AssetCategory))),
		Strike:      nums[3],
		Expiry:      strings.TrimSpace(row.Expiry),
		Right:       strings.ToUpper(strings.TrimSpace(row.PutCall)),
		Side:        strings.ToUpper(strings.TrimSpace(row.BuySell)),
		OpenClose:   strings.TrimSpace(row.OpenCloseIndicator),
		Quantity:    nums[0],
		Price:       nums[1],
		Commission:  nums[2],
		Multiplier:  nums[4],
		TradeTime:   tradeTime,
		Codes:       strings.TrimSpace(row.Notes),
		Currency:    strings.TrimSpace(row.Currency),
		Description: row.Description,
	})
}

// deriveTradeID hashes the row content for trades without a tradeID, such
// as some book-trade expirations, so re-imports still deduplicate.
func (stmt *Statement) deriveTradeID(row *flexTrade) string {
	attrs := []string{
		row.Symbol, row.UnderlyingSymbol, row.AssetCategory, row.DateTime, row.Quantity, row.TradePrice,
		row.BuySell, row.Strike, row.Expiry, row.PutCall, row.Notes,
	}
	for i := range attrs {
		attrs[i] = strings.TrimSpace(attrs[i])
	}
	key := strings.Join(attrs, "|")

	if stmt.derived == nil {
		stmt.derived = make(map[string]int)
	}
	occurrence := stmt.derived[key]
	stmt.derived[key]++
	return idhash.ComputeExecutionID(attrs, occurrence)
}

func (p *Parser) addCashTransaction(stmt *Statement, row *flexCashTransaction) {
	skip := func(reason, detail string) {
		p.skip(stmt, SkippedRow{Element: "CashTransaction", ID: row.TransactionID, Reason: reason, Detail: detail})
	}

	if strings.TrimSpace(row.TransactionID) == "" {
		skip(SkipMissingID, "")
		return
	}
	raw := row.DateTime
	if strings.TrimSpace(raw) == "" {
		raw = row.ReportDate
	}
	date, reason := p.parseTime(raw)
	if reason != "" {
		skip(reason, raw)
		return
	}
	amount, err := parseNumber(row.Amount)
	if err != nil {
		skip(SkipBadNumber, row.Amount)
		return
	}

	stmt.CashTransactions = append(stmt.CashTransactions, &domain.CashTransaction{
		TransactionID: strings.TrimSpace(row.TransactionID),
		Type:          strings.TrimSpace(row.Type),
		AssetClass:    domain.AssetClass(strings.ToUpper(strings.TrimSpace(row.AssetCategory))),
		Symbol:        strings.TrimSpace(row.Symbol),
		Amount:        amount,
		Date:          date,
		Description:   row.Description,
		Currency:      strings.TrimSpace(row.Currency),
	})
}

func (p *Parser) skip(stmt *Statement, row SkippedRow) {
	stmt.Skipped = append(stmt.Skipped, row)
	p.logger.WithFields(logrus.Fields{
		"element": row.Element,
		"id":      row.ID,
		"reason":  row.Reason,
		"value":   row.Detail,
	}).Warn("skipping statement row")
}

// parseTime returns Unix ms for a Flex timestamp, or a skip reason.
func (p *Parser) parseTime(raw string) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, SkipMissingDateTime
	}
	for _, layout := range flexTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.loc); err == nil {
			return t.UnixMilli(), ""
		}
	}
	return 0, SkipBadDateTime
}

// parseNumber reads a Flex numeric attribute. Empty means 0; thousands
// separators are tolerated.
func parseNumber(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}
