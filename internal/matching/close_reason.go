package matching

import (
	"strings"

	"trade-journal-lab/internal/domain"
)

// closeCodes maps broker close codes (upper-cased) to close reasons.
// Tokens must match exactly; "EX" never matches inside an unrelated code.
var closeCodes = map[string]domain.CloseReason{
	"A":  domain.CloseReasonAssigned,
	"EX": domain.CloseReasonExercised,
	"EP": domain.CloseReasonExpired,
}

// ResolveCloseReason picks the close reason of a closing execution.
// Priority: assigned > exercised > expired code > option closed at price 0
// (inferred expiration) > ordinary trade.
func ResolveCloseReason(codes string, class domain.AssetClass, exitPrice float64) domain.CloseReason {
	found := parseCloseCodes(codes)

	for _, reason := range []domain.CloseReason{
		domain.CloseReasonAssigned,
		domain.CloseReasonExercised,
		domain.CloseReasonExpired,
	} {
		if found[reason] {
			return reason
		}
	}

	if class.IsOption() && exitPrice == 0 {
		return domain.CloseReasonExpired
	}
	return domain.CloseReasonTrade
}

// parseCloseCodes splits a code field such as "C;Ep" or "A, O" into tokens
// and returns the close reasons present.
func parseCloseCodes(codes string) map[domain.CloseReason]bool {
	found := make(map[domain.CloseReason]bool)
	tokens := strings.FieldsFunc(codes, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\t'
	})
	for _, tok := range tokens {
		if reason, ok := closeCodes[strings.ToUpper(tok)]; ok {
			found[reason] = true
		}
	}
	return found
}
