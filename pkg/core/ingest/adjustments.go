package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"financial_normalizer/pkg/core/calc"
	"financial_normalizer/pkg/models"

	hjson "github.com/hjson/hjson-go/v4"
)

// Adjustment CSV column aliases, lower-cased. Amount falls back across
// Amount → Debit → Credit → 0.
var adjustmentAliases = map[string][]string{
	"id":           {"adjustment_id", "journal_entry_id", "id"},
	"name":         {"adjustment_name", "description", "name"},
	"category":     {"category", "adjustment_type", "adjustment_category"},
	"account_code": {"account_code", "account code", "code"},
	"account_name": {"account_name", "account name", "account"},
	"amount":       {"amount"},
	"debit":        {"debit", "dr"},
	"credit":       {"credit", "cr"},
	"reason":       {"reason"},
	"is_recurring": {"is_recurring", "recurring"},
	"currency":     {"currency"},
	"date":         {"effective_date", "date"},
}

// ParseAdjustmentsCSV reads an adjustments CSV into adjustment details.
// Missing optional fields take documented defaults: category defaults to
// add_back, is_recurring to true. Rows with a present-but-unknown category
// or no parsable amount source are skipped with a warning, never fatal.
func ParseAdjustmentsCSV(r io.Reader) ([]calc.AdjustmentDetail, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("adjustments: read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		for canonical, aliases := range adjustmentAliases {
			if _, taken := cols[canonical]; taken {
				continue
			}
			for _, alias := range aliases {
				if key == alias {
					cols[canonical] = i
					break
				}
			}
		}
	}

	var adjustments []calc.AdjustmentDetail
	for i, row := range rows[1:] {
		get := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		adj, err := buildAdjustment(
			get("id"), get("name"), get("category"),
			get("account_code"), get("account_name"),
			get("amount"), get("debit"), get("credit"),
			get("reason"), get("is_recurring"), get("currency"), get("date"),
		)
		if err != nil {
			log.Printf("[Adjustments] skipping row %d: %v", i+2, err)
			continue
		}
		adjustments = append(adjustments, adj)
	}

	log.Printf("[Adjustments] loaded %d adjustment entries", len(adjustments))
	return adjustments, nil
}

func buildAdjustment(id, name, category, accountCode, accountName, amountStr, debitStr, creditStr, reason, recurringStr, currency, date string) (calc.AdjustmentDetail, error) {
	// Amount fallback chain: Amount → Debit → Credit → 0.
	amount := 0.0
	for _, s := range []string{amountStr, debitStr, creditStr} {
		if s == "" {
			continue
		}
		v, err := parseAmount(s)
		if err != nil {
			return calc.AdjustmentDetail{}, err
		}
		if v != 0 {
			amount = v
			break
		}
	}

	// A missing category defaults to add_back; a present but unrecognized
	// one fails the row.
	cat := models.AdjustmentAddBack
	if category != "" {
		parsed, err := models.ParseAdjustmentCategory(strings.ToLower(category))
		if err != nil {
			return calc.AdjustmentDetail{}, err
		}
		cat = parsed
	}

	recurring := true
	switch strings.ToLower(recurringStr) {
	case "false", "no", "0", "n":
		recurring = false
	}

	if name == "" {
		name = "Adjustment"
	}

	return calc.AdjustmentDetail{
		ID:            id,
		Name:          name,
		Category:      cat,
		AccountCode:   accountCode,
		AccountName:   accountName,
		Amount:        amount,
		Currency:      currency,
		IsRecurring:   recurring,
		Reason:        reason,
		EffectiveDate: date,
	}, nil
}

// adjustmentFile is the HJSON adjustment document schema.
type adjustmentFile struct {
	Adjustments []adjustmentEntry `json:"adjustments"`
}

type adjustmentEntry struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	AccountCode   string  `json:"account_code"`
	AccountName   string  `json:"account_name"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	IsRecurring   *bool   `json:"is_recurring"`
	Reason        string  `json:"reason"`
	EffectiveDate string  `json:"effective_date"`
}

// ParseAdjustmentsHJSON reads a human-edited adjustment document (HJSON:
// comments, unquoted keys, optional commas). Same defaulting rules as the
// CSV loader.
func ParseAdjustmentsHJSON(data []byte) ([]calc.AdjustmentDetail, error) {
	var file adjustmentFile
	if err := hjson.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("adjustments: parse hjson: %w", err)
	}

	var adjustments []calc.AdjustmentDetail
	for i, entry := range file.Adjustments {
		cat := models.AdjustmentAddBack
		if entry.Category != "" {
			parsed, err := models.ParseAdjustmentCategory(strings.ToLower(entry.Category))
			if err != nil {
				log.Printf("[Adjustments] skipping entry %d: %v", i, err)
				continue
			}
			cat = parsed
		}

		recurring := true
		if entry.IsRecurring != nil {
			recurring = *entry.IsRecurring
		}

		name := entry.Name
		if name == "" {
			name = "Adjustment"
		}

		adjustments = append(adjustments, calc.AdjustmentDetail{
			ID:            entry.ID,
			Name:          name,
			Category:      cat,
			AccountCode:   entry.AccountCode,
			AccountName:   entry.AccountName,
			Amount:        entry.Amount,
			Currency:      entry.Currency,
			IsRecurring:   recurring,
			Reason:        entry.Reason,
			EffectiveDate: entry.EffectiveDate,
		})
	}

	log.Printf("[Adjustments] loaded %d adjustment entries", len(adjustments))
	return adjustments, nil
}
