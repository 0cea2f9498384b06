package calc

import (
	"math"
	"testing"

	"financial_normalizer/pkg/models"
)

func sampleRecords() []models.GLRecord {
	return []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 1000000},
		{AccountCode: "5000", AccountName: "Cost of Goods Sold", Amount: 400000},
		{AccountCode: "6000", AccountName: "Salaries", Amount: 200000},
	}
}

func TestCategorizeAccount(t *testing.T) {
	cases := []struct {
		name     string
		expected string
	}{
		{"Product Revenue", ComponentRevenue},
		{"Cost of Goods Sold", ComponentCOGS},
		{"Salaries", ComponentOpex},
		{"Office Rent", ComponentOpex},
		{"Depreciation Expense", ComponentDA},
		{"Interest on Loan", ComponentInterest},
		{"Tax Expense", ComponentTaxes},
		{"Goodwill", ""},
	}
	for _, tc := range cases {
		if got := CategorizeAccount(tc.name); got != tc.expected {
			t.Errorf("%q: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestReportedEBITDA(t *testing.T) {
	calc := NewAdjustmentCalculator(sampleRecords())
	result := calc.CalculateReportedEBITDA()

	// revenue 1,000,000; cogs 400,000; opex 200,000
	// gross_profit = 600,000; ebit = 400,000; da = 0; ebitda = 400,000
	if result.Revenue != 1000000 {
		t.Errorf("Expected revenue 1000000, got %f", result.Revenue)
	}
	if result.COGS != 400000 {
		t.Errorf("Expected cogs 400000, got %f", result.COGS)
	}
	if result.GrossProfit != 600000 {
		t.Errorf("Expected gross profit 600000, got %f", result.GrossProfit)
	}
	if result.Opex != 200000 {
		t.Errorf("Expected opex 200000, got %f", result.Opex)
	}
	if result.EBIT != 400000 {
		t.Errorf("Expected EBIT 400000, got %f", result.EBIT)
	}
	if result.DepreciationAmortization != 0 {
		t.Errorf("Expected da 0, got %f", result.DepreciationAmortization)
	}
	if result.EBITDA != 400000 {
		t.Errorf("Expected EBITDA 400000, got %f", result.EBITDA)
	}
	if math.Abs(result.GrossMarginPct-60.0) > 0.0001 {
		t.Errorf("Expected gross margin 60%%, got %f", result.GrossMarginPct)
	}
	if result.MetricType != MetricReportedEBITDA {
		t.Errorf("Expected metric type %s, got %s", MetricReportedEBITDA, result.MetricType)
	}
}

func TestEBITDAFormulaIdentity(t *testing.T) {
	records := append(sampleRecords(),
		models.GLRecord{AccountCode: "6900", AccountName: "Depreciation Expense", Amount: 75000},
		models.GLRecord{AccountCode: "7000", AccountName: "Interest Expense", Amount: 30000},
	)
	calc := NewAdjustmentCalculator(records)
	result := calc.CalculateReportedEBITDA()

	// ebitda == (revenue - cogs - opex) + da, interest never subtracted
	expected := (result.Revenue - result.COGS - result.Opex) + result.DepreciationAmortization
	if math.Abs(result.EBITDA-expected) > 0.0001 {
		t.Errorf("Expected EBITDA %f from identity, got %f", expected, result.EBITDA)
	}
	if result.InterestAndTaxes != 30000 {
		t.Errorf("Expected interest captured as 30000, got %f", result.InterestAndTaxes)
	}
}

func TestZeroAdjustmentsLeaveEBITDAUnchanged(t *testing.T) {
	calc := NewAdjustmentCalculator(sampleRecords())
	reported := calc.CalculateReportedEBITDA()
	adjusted := calc.ApplyAdjustments(reported, []models.AdjustmentCategory{
		models.AdjustmentAddBack, models.AdjustmentEliminate,
	})

	if adjusted.EBITDA != reported.EBITDA {
		t.Errorf("Expected adjusted == reported (%f), got %f", reported.EBITDA, adjusted.EBITDA)
	}
}

func TestAddBackRaisesEBITDAByAmount(t *testing.T) {
	calc := NewAdjustmentCalculator(sampleRecords())
	calc.AddAdjustment(AdjustmentDetail{
		Name:        "owner_compensation",
		Category:    models.AdjustmentAddBack,
		AccountCode: "6000",
		AccountName: "Salaries",
		Amount:      50000,
	})

	metrics := calc.CalculateAllMetrics()
	reported := metrics[MetricReportedEBITDA]
	adjusted := metrics[MetricAdjustedEBITDA]

	// 400,000 reported + 50,000 add-back = 450,000
	if adjusted.EBITDA != reported.EBITDA+50000 {
		t.Errorf("Expected adjusted EBITDA %f, got %f", reported.EBITDA+50000, adjusted.EBITDA)
	}
	if adjusted.Opex != 150000 {
		t.Errorf("Expected adjusted opex 150000, got %f", adjusted.Opex)
	}
	if adjusted.MetricType != MetricAdjustedEBITDA {
		t.Errorf("Expected metric type %s, got %s", MetricAdjustedEBITDA, adjusted.MetricType)
	}

	impacts := calc.AdjustmentImpactAnalysis()
	if len(impacts) != 1 {
		t.Fatalf("Expected 1 impact row, got %d", len(impacts))
	}
	if impacts[0].EBITDAImpact != 50000 {
		t.Errorf("Expected EBITDA impact 50000, got %f", impacts[0].EBITDAImpact)
	}
}

func TestEliminateReducesRevenue(t *testing.T) {
	records := append(sampleRecords(),
		models.GLRecord{AccountCode: "4900", AccountName: "Intercompany Sales", Amount: 100000},
	)
	calc := NewAdjustmentCalculator(records)
	calc.AddAdjustment(AdjustmentDetail{
		Name:        "intercompany_activity",
		Category:    models.AdjustmentEliminate,
		AccountCode: "4900",
		AccountName: "Intercompany Sales",
		Amount:      100000,
	})

	reported := calc.CalculateReportedEBITDA()
	adjusted := calc.ApplyAdjustments(reported, nil)

	if adjusted.Revenue != reported.Revenue-100000 {
		t.Errorf("Expected revenue %f, got %f", reported.Revenue-100000, adjusted.Revenue)
	}

	impacts := calc.AdjustmentImpactAnalysis()
	if impacts[0].EBITDAImpact != -100000 {
		t.Errorf("Expected eliminate impact -100000, got %f", impacts[0].EBITDAImpact)
	}
}

func TestNormalizeSwitchesMetricType(t *testing.T) {
	calc := NewAdjustmentCalculator(sampleRecords())
	calc.AddAdjustment(AdjustmentDetail{
		Name:        "related_party_rent",
		Category:    models.AdjustmentNormalize,
		AccountCode: "6500",
		AccountName: "Rent Expense",
		Amount:      20000,
	})

	metrics := calc.CalculateAllMetrics()

	// Adjusted view filters normalize out: unchanged from reported.
	if metrics[MetricAdjustedEBITDA].EBITDA != metrics[MetricReportedEBITDA].EBITDA {
		t.Errorf("Expected adjusted unchanged, got %f", metrics[MetricAdjustedEBITDA].EBITDA)
	}

	normalized := metrics[MetricNormalizedEBITDA]
	if normalized.MetricType != MetricNormalizedEBITDA {
		t.Errorf("Expected normalized metric type, got %s", normalized.MetricType)
	}
	// normalize on opex: opex += 20,000 -> EBITDA drops by 20,000
	if normalized.EBITDA != metrics[MetricReportedEBITDA].EBITDA-20000 {
		t.Errorf("Expected normalized EBITDA %f, got %f",
			metrics[MetricReportedEBITDA].EBITDA-20000, normalized.EBITDA)
	}
}

func TestUnmappedAdjustmentHasNoComponentEffect(t *testing.T) {
	calc := NewAdjustmentCalculator(sampleRecords())
	calc.AddAdjustment(AdjustmentDetail{
		Name:        "goodwill_writeoff",
		Category:    models.AdjustmentAddBack,
		AccountCode: "1900",
		AccountName: "Goodwill", // maps to no component
		Amount:      500000,
	})

	reported := calc.CalculateReportedEBITDA()
	adjusted := calc.ApplyAdjustments(reported, nil)
	if adjusted.EBITDA != reported.EBITDA {
		t.Errorf("Expected no effect from unmapped account, got %f vs %f", adjusted.EBITDA, reported.EBITDA)
	}
	// Still recorded in the detail map.
	if adjusted.AdjustmentsDetail["goodwill_writeoff"] != 500000 {
		t.Errorf("Expected detail entry 500000, got %f", adjusted.AdjustmentsDetail["goodwill_writeoff"])
	}
}

func TestAddAdjustmentDefaults(t *testing.T) {
	calc := NewAdjustmentCalculator(nil)
	calc.AddAdjustment(AdjustmentDetail{
		Name:     "test",
		Category: models.AdjustmentAddBack,
		Amount:   100,
	})

	adjs := calc.Adjustments()
	if len(adjs) != 1 {
		t.Fatalf("Expected 1 adjustment, got %d", len(adjs))
	}
	if adjs[0].ID == "" {
		t.Error("Expected generated ID for blank ID")
	}
	if adjs[0].Currency != "USD" {
		t.Errorf("Expected USD currency default, got %q", adjs[0].Currency)
	}
}
