package ingest

import (
	"strings"
	"testing"
)

func TestParseTrialBalanceWithAmountColumn(t *testing.T) {
	input := `Account Code,Account Name,Amount,Entity,Period
4000,Product Revenue,"1,000,000",Acme Corp,2024-FY
5000,Cost of Goods Sold,$400000,Acme Corp,2024-FY
6000,Salaries,(200000),Acme Corp,2024-FY
`
	parser := NewTrialBalanceParser()
	records, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].Amount != 1000000 {
		t.Errorf("Expected thousands separators handled, got %f", records[0].Amount)
	}
	if records[1].Amount != 400000 {
		t.Errorf("Expected currency symbol stripped, got %f", records[1].Amount)
	}
	if records[2].Amount != -200000 {
		t.Errorf("Expected parenthesized negative, got %f", records[2].Amount)
	}
	if records[0].Entity != "Acme Corp" || records[0].Period != "2024-FY" {
		t.Errorf("Expected entity/period captured, got %+v", records[0])
	}
	if parser.LastBalance != nil {
		t.Error("Expected no balance check with an Amount column")
	}
}

func TestParseTrialBalanceDebitCredit(t *testing.T) {
	input := `Code,Description,Debit,Credit
1000,Cash,150000,0
4000,Revenue,0,150000
`
	parser := NewTrialBalanceParser()
	records, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	// Amount = debit - credit
	if records[0].Amount != 150000 {
		t.Errorf("Expected 150000, got %f", records[0].Amount)
	}
	if records[1].Amount != -150000 {
		t.Errorf("Expected -150000, got %f", records[1].Amount)
	}

	if parser.LastBalance == nil {
		t.Fatal("Expected a balance check")
	}
	if !parser.LastBalance.Balanced {
		t.Errorf("Expected balanced trial balance, difference %f", parser.LastBalance.Difference)
	}
}

func TestParseTrialBalanceImbalanceIsWarning(t *testing.T) {
	input := `Code,Description,Debit,Credit
1000,Cash,150000,0
4000,Revenue,0,140000
`
	parser := NewTrialBalanceParser()
	records, err := parser.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Imbalance must not be fatal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if parser.LastBalance.Balanced {
		t.Error("Expected imbalance to be reported")
	}
}

func TestParseTrialBalanceMissingColumns(t *testing.T) {
	input := `Account Code,Entity
4000,Acme Corp
`
	_, err := NewTrialBalanceParser().Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected schema error")
	}
	// Error names every missing canonical column.
	if !strings.Contains(err.Error(), "Account_Name") || !strings.Contains(err.Error(), "Amount") {
		t.Errorf("Expected missing columns named, got %q", err.Error())
	}
}

func TestParseTrialBalanceSkipsBadRows(t *testing.T) {
	input := `Account Code,Account Name,Amount
4000,Product Revenue,1000000
5000,Cost of Goods Sold,not-a-number
6000,Salaries,200000
`
	records, err := NewTrialBalanceParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Bad rows must not be fatal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected bad row skipped, got %d records", len(records))
	}
	if records[1].AccountCode != "6000" {
		t.Errorf("Expected row after bad one kept, got %+v", records[1])
	}
}

func TestParseAmountNotation(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"", 0},
		{"1234.56", 1234.56},
		{"$1,234.56", 1234.56},
		{"(500)", -500},
		{"($1,000)", -1000},
		{"-42", -42},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.input)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("%q: expected %f, got %f", tc.input, tc.expected, got)
		}
	}

	if _, err := parseAmount("abc"); err == nil {
		t.Error("Expected error for non-numeric amount")
	}
}
