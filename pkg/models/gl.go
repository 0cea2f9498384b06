// Package models defines the canonical general-ledger data model shared by
// every ingestion adapter and engine in the normalizer.
package models

import (
	"fmt"
	"math"
	"strings"
)

// Canonical column names produced by every ingestion adapter.
// The engines treat any adapter emitting this schema as interchangeable.
const (
	ColAccountCode = "Account_Code"
	ColAccountName = "Account_Name"
	ColAmount      = "Amount"
	ColEntity      = "Entity"
	ColPeriod      = "Period"
	ColDate        = "Date"
)

// GLRecord is a single general-ledger line in the canonical schema.
// Amount follows the debit-normal sign convention: positive amounts are
// debit-side increases; revenue is a signed amount whose magnitude is the
// GAAP revenue figure (negative entries are returns).
type GLRecord struct {
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	Amount      float64 `json:"amount"`
	Entity      string  `json:"entity,omitempty"`
	Period      string  `json:"period,omitempty"`
	Date        string  `json:"date,omitempty"`
}

// RequireColumns verifies that every required canonical column is present in
// the given header set. The error names all missing columns at once so the
// caller can fix the input in one pass.
func RequireColumns(headers []string, required ...string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}

	var missing []string
	for _, col := range required {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// BalanceTolerance is the maximum accepted difference between total debits
// and total credits before a trial balance is flagged as out of balance.
const BalanceTolerance = 0.01

// BalanceCheck is the result of a debit/credit balance validation.
// An imbalance is a warning, never a fatal condition.
type BalanceCheck struct {
	TotalDebits  float64 `json:"total_debits"`
	TotalCredits float64 `json:"total_credits"`
	Difference   float64 `json:"difference"`
	Balanced     bool    `json:"balanced"`
}

// CheckBalance compares total debits against total credits within
// BalanceTolerance.
func CheckBalance(totalDebits, totalCredits float64) BalanceCheck {
	diff := totalDebits - totalCredits
	return BalanceCheck{
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		Difference:   diff,
		Balanced:     math.Abs(diff) <= BalanceTolerance,
	}
}

// Entities returns the distinct entity names present in the records, in
// first-seen order. Records without an entity are ignored.
func Entities(records []GLRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if r.Entity == "" || seen[r.Entity] {
			continue
		}
		seen[r.Entity] = true
		names = append(names, r.Entity)
	}
	return names
}

// HasMultipleEntities reports whether the batch spans more than one entity,
// which is the precondition for consolidation.
func HasMultipleEntities(records []GLRecord) bool {
	return len(Entities(records)) > 1
}
