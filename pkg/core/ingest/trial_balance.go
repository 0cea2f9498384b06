package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"financial_normalizer/pkg/models"
)

// Column aliases accepted by the trial balance parser, lower-cased.
var trialBalanceAliases = map[string][]string{
	"account_code": {"account_code", "account code", "acct code", "code", "account number", "acct"},
	"account_name": {"account_name", "account name", "account", "description", "name"},
	"amount":       {"amount", "balance", "net", "net amount"},
	"debit":        {"debit", "dr", "debits"},
	"credit":       {"credit", "cr", "credits"},
	"entity":       {"entity", "company", "subsidiary"},
	"period":       {"period", "fiscal period"},
	"date":         {"date", "posting date", "transaction date"},
}

// TrialBalanceParser reads trial balance CSVs with flexible headers.
// Amounts come from an Amount column when present, otherwise Debit - Credit.
// Rows with unparsable amounts are skipped with a warning; missing required
// columns are a fatal schema error naming every missing column.
type TrialBalanceParser struct {
	// LastBalance holds the debit/credit balance check from the most recent
	// Parse call, when the input carried both columns.
	LastBalance *models.BalanceCheck
}

// NewTrialBalanceParser returns a ready parser.
func NewTrialBalanceParser() *TrialBalanceParser {
	return &TrialBalanceParser{}
}

// Parse implements Parser.
func (p *TrialBalanceParser) Parse(r io.Reader) ([]models.GLRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("trial balance: read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trial balance: empty input")
	}

	cols := resolveColumns(rows[0])

	var missing []string
	if _, ok := cols["account_code"]; !ok {
		missing = append(missing, models.ColAccountCode)
	}
	if _, ok := cols["account_name"]; !ok {
		missing = append(missing, models.ColAccountName)
	}
	_, hasAmount := cols["amount"]
	_, hasDebit := cols["debit"]
	_, hasCredit := cols["credit"]
	if !hasAmount && !(hasDebit && hasCredit) {
		missing = append(missing, models.ColAmount)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("trial balance: missing required columns: %s", strings.Join(missing, ", "))
	}

	var records []models.GLRecord
	var totalDebits, totalCredits float64

	for i, row := range rows[1:] {
		get := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		var amount float64
		var parseErr error
		if hasAmount {
			amount, parseErr = parseAmount(get("amount"))
		} else {
			var debit, credit float64
			debit, parseErr = parseAmount(get("debit"))
			if parseErr == nil {
				credit, parseErr = parseAmount(get("credit"))
			}
			if parseErr == nil {
				amount = debit - credit
				totalDebits += debit
				totalCredits += credit
			}
		}
		if parseErr != nil {
			log.Printf("[TrialBalance] skipping row %d: %v", i+2, parseErr)
			continue
		}

		records = append(records, models.GLRecord{
			AccountCode: get("account_code"),
			AccountName: get("account_name"),
			Amount:      amount,
			Entity:      get("entity"),
			Period:      get("period"),
			Date:        get("date"),
		})
	}

	p.LastBalance = nil
	if hasDebit && hasCredit && !hasAmount {
		check := models.CheckBalance(totalDebits, totalCredits)
		p.LastBalance = &check
		if !check.Balanced {
			log.Printf("[TrialBalance] warning: debits (%.2f) and credits (%.2f) do not balance",
				check.TotalDebits, check.TotalCredits)
		}
	}

	log.Printf("[TrialBalance] parsed %d GL records", len(records))
	return records, nil
}

func resolveColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		for canonical, aliases := range trialBalanceAliases {
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
	return cols
}

// parseAmount accepts plain numbers plus common accounting notation:
// currency symbols, thousands separators and parenthesized negatives.
// An empty string parses as zero.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable amount %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}
