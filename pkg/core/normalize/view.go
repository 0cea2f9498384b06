// Package normalize orchestrates the full pipeline: consolidation,
// classification, adjustment application, and assembly of the before/after
// financial view.
package normalize

import (
	"financial_normalizer/pkg/core/calc"
	"financial_normalizer/pkg/core/classify"
	"financial_normalizer/pkg/models"
)

// Income statement line items, in fixed presentation order.
const (
	LineRevenue     = "Revenue"
	LineCOGS        = "COGS"
	LineGrossProfit = "Gross Profit"
	LineOpex        = "Operating Expenses"
	LineEBIT        = "EBIT"
	LineDA          = "Depreciation & Amortization"
	LineEBITDA      = "EBITDA"
)

// IncomeStatementLine is one row of the 7-line income statement.
type IncomeStatementLine struct {
	LineItem         string  `json:"line_item"`
	Amount           float64 `json:"amount"`
	PercentOfRevenue float64 `json:"percent_of_revenue"`
}

// BeforeAfterComparison compares one account's balance before and after
// adjustments.
type BeforeAfterComparison struct {
	AccountCode      string             `json:"account_code"`
	AccountName      string             `json:"account_name"`
	AccountType      models.AccountType `json:"account_type"`
	BeforeAmount     float64            `json:"before_amount"`
	AfterAmount      float64            `json:"after_amount"`
	AdjustmentAmount float64            `json:"adjustment_amount"`
	AdjustmentReason string             `json:"adjustment_reason,omitempty"`
	IsRecurring      bool               `json:"is_recurring"`
}

// PctChange is the percent change from before to after, defined as 0 when
// the before amount is zero.
func (c BeforeAfterComparison) PctChange() float64 {
	if c.BeforeAmount == 0 {
		return 0
	}
	return (c.AfterAmount - c.BeforeAmount) / abs(c.BeforeAmount) * 100
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// NormalizedFinancialView is the engine's terminal artifact. It is built
// once per GenerateView call and read-only afterwards.
type NormalizedFinancialView struct {
	Period        string `json:"period"`
	PeriodEndDate string `json:"period_end_date"`
	Entity        string `json:"entity"`

	RawGL []models.GLRecord `json:"raw_gl"`

	// Classifications is keyed by account name for downstream consumers;
	// distinct codes sharing a name collapse to the first-seen code here,
	// but BeforeAfterDetails carries the code per row.
	Classifications map[string]classify.AccountClassification `json:"classifications"`

	Adjustments []calc.AdjustmentDetail `json:"adjustments"`

	ReportedIncomeStatement   []IncomeStatementLine `json:"reported_income_statement"`
	NormalizedIncomeStatement []IncomeStatementLine `json:"normalized_income_statement"`

	ReportedEBITDA   float64 `json:"reported_ebitda"`
	AdjustedEBITDA   float64 `json:"adjusted_ebitda"`
	NormalizedEBITDA float64 `json:"normalized_ebitda"`

	BeforeAfterDetails       []BeforeAfterComparison          `json:"before_after_details"`
	AdjustmentImpactAnalysis []calc.AdjustmentImpact          `json:"adjustment_impact_analysis"`
	SuspiciousPatterns       []classify.SuspiciousPatternFlag `json:"suspicious_patterns"`
	Eliminations             []calc.EliminationEntry          `json:"eliminations"`
}
