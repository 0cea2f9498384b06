package classify

import (
	"math"
	"testing"

	"financial_normalizer/pkg/core/rules"
	"financial_normalizer/pkg/models"
)

func TestNegativeRevenueFlag(t *testing.T) {
	engine := newTestEngine(t)

	// Revenue nets to 1,000,500 with -60,000 of negative entries:
	// ratio = 60,000 / 1,000,500 = 6.0% > 5%. 1,060,500 is not a 10k
	// multiple, so the round-amount scan stays quiet.
	records := []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 1060500},
		{AccountCode: "4090", AccountName: "Revenue Reversals", Amount: -60000},
	}

	flags := engine.DetectSuspiciousPatterns(records)
	if len(flags) != 1 {
		t.Fatalf("Expected exactly 1 flag, got %d", len(flags))
	}
	flag := flags[0]
	if flag.Pattern != PatternNegativeRevenue {
		t.Errorf("Expected %s, got %s", PatternNegativeRevenue, flag.Pattern)
	}
	if flag.RiskLevel != RiskMedium {
		t.Errorf("Expected medium risk, got %s", flag.RiskLevel)
	}
	expected := 60000.0 / 1000500.0
	if math.Abs(flag.ThresholdExceeded-expected) > 0.0001 {
		t.Errorf("Expected ratio %f, got %f", expected, flag.ThresholdExceeded)
	}
	if math.Abs(flag.ThresholdExceeded-0.06) > 0.001 {
		t.Errorf("Expected ratio near 0.06, got %f", flag.ThresholdExceeded)
	}
}

func TestNegativeRevenueBelowThresholdNoFlag(t *testing.T) {
	engine := newTestEngine(t)

	// 30,000 / 969,500 = 3.1% < 5%.
	records := []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 999500},
		{AccountCode: "4090", AccountName: "Revenue Reversals", Amount: -30000},
	}

	if flags := engine.DetectSuspiciousPatterns(records); len(flags) != 0 {
		t.Errorf("Expected no flags, got %+v", flags)
	}
}

func TestLargeRoundAmountsFlag(t *testing.T) {
	engine := newTestEngine(t)

	// 3 amounts above the 100,000 floor, 2 exact multiples of 10,000.
	// Share = 2/3 = 66.7% > 30%. Low risk.
	records := []models.GLRecord{
		{AccountCode: "6100", AccountName: "Consulting Fees", Amount: 150000},
		{AccountCode: "6110", AccountName: "Equipment Purchase", Amount: 230000},
		{AccountCode: "6120", AccountName: "Contract Services", Amount: 123456.78},
		{AccountCode: "6130", AccountName: "Supplies", Amount: 50000}, // under floor
	}

	flags := engine.DetectSuspiciousPatterns(records)
	if len(flags) != 1 {
		t.Fatalf("Expected exactly 1 flag, got %d", len(flags))
	}
	flag := flags[0]
	if flag.Pattern != PatternLargeRoundAmount {
		t.Errorf("Expected %s, got %s", PatternLargeRoundAmount, flag.Pattern)
	}
	if flag.RiskLevel != RiskLow {
		t.Errorf("Expected low risk, got %s", flag.RiskLevel)
	}
	expected := 2.0 / 3.0
	if math.Abs(flag.ThresholdExceeded-expected) > 0.0001 {
		t.Errorf("Expected share %f, got %f", expected, flag.ThresholdExceeded)
	}
}

func TestRelatedPartyFlagHasNoThreshold(t *testing.T) {
	engine := newTestEngine(t)

	// A single related-party entry is enough.
	records := []models.GLRecord{
		{AccountCode: "6500", AccountName: "Related Party Rent", Amount: 12000},
	}

	flags := engine.DetectSuspiciousPatterns(records)
	if len(flags) != 1 {
		t.Fatalf("Expected exactly 1 flag, got %d", len(flags))
	}
	flag := flags[0]
	if flag.Pattern != PatternRelatedParty {
		t.Errorf("Expected %s, got %s", PatternRelatedParty, flag.Pattern)
	}
	if flag.RiskLevel != RiskMedium {
		t.Errorf("Expected medium risk, got %s", flag.RiskLevel)
	}
	if flag.Reason != "Found 1 related party entries totaling 12000.00" {
		t.Errorf("Unexpected reason %q", flag.Reason)
	}
}

func TestCustomThresholds(t *testing.T) {
	cfg := rules.Default()
	cfg.Suspicious = rules.SuspiciousThresholds{
		NegativeRevenueRatio: 0.50,
		LargeAmountFloor:     1000000,
		RoundAmountUnit:      10000,
		RoundShare:           0.99,
		RelatedPartyKeywords: []string{"sister company"},
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	records := []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 1000000},
		{AccountCode: "4090", AccountName: "Revenue Reversals", Amount: -60000},
		{AccountCode: "6500", AccountName: "Related Party Rent", Amount: 12000},
	}

	// Loosened thresholds and replaced keywords: nothing fires.
	if flags := engine.DetectSuspiciousPatterns(records); len(flags) != 0 {
		t.Errorf("Expected no flags under loose thresholds, got %+v", flags)
	}
}

func TestEmptyBatchNoFlags(t *testing.T) {
	engine := newTestEngine(t)
	if flags := engine.DetectSuspiciousPatterns(nil); len(flags) != 0 {
		t.Errorf("Expected no flags for empty batch, got %d", len(flags))
	}
}
