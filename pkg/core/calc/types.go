// Package calc provides the deterministic adjustment and EBITDA math:
// categorizing GL amounts into components, rolling up reported EBITDA,
// applying adjustments, and consolidating multi-entity ledgers.
package calc

import "financial_normalizer/pkg/models"

// EBITDAMetric identifies which view of EBITDA a calculation represents.
type EBITDAMetric string

const (
	MetricReportedEBITDA   EBITDAMetric = "reported_ebitda"
	MetricAdjustedEBITDA   EBITDAMetric = "adjusted_ebitda"
	MetricNormalizedEBITDA EBITDAMetric = "normalized_ebitda"
)

// EBITDA component identifiers used by CategorizeAccount.
const (
	ComponentRevenue  = "revenue"
	ComponentCOGS     = "cogs"
	ComponentOpex     = "opex"
	ComponentDA       = "da"
	ComponentInterest = "interest"
	ComponentTaxes    = "taxes"
)

// AdjustmentDetail is one normalization adjustment. Amount is the
// adjustment's face value; the category decides its EBITDA sign effect.
// Details are immutable after construction.
type AdjustmentDetail struct {
	ID            string                    `json:"adjustment_id"`
	Name          string                    `json:"adjustment_name"`
	Category      models.AdjustmentCategory `json:"adjustment_category"`
	AccountCode   string                    `json:"account_code"`
	AccountName   string                    `json:"account_name"`
	Amount        float64                   `json:"amount"`
	Currency      string                    `json:"currency"`
	IsRecurring   bool                      `json:"is_recurring"`
	Reason        string                    `json:"reason"`
	EffectiveDate string                    `json:"effective_date,omitempty"`
}

// EBITDACalculation is a snapshot of one EBITDA roll-up. It is a pure value
// object: recomputed on demand, never incrementally updated.
type EBITDACalculation struct {
	MetricType               EBITDAMetric       `json:"metric_type"`
	Revenue                  float64            `json:"revenue"`
	COGS                     float64            `json:"cogs"`
	GrossProfit              float64            `json:"gross_profit"`
	GrossMarginPct           float64            `json:"gross_margin_pct"`
	Opex                     float64            `json:"opex"`
	EBIT                     float64            `json:"ebit"`
	DepreciationAmortization float64            `json:"depreciation_amortization"`
	EBITDA                   float64            `json:"ebitda"`
	InterestAndTaxes         float64            `json:"interest_and_taxes"`
	AdjustmentsDetail        map[string]float64 `json:"adjustments_detail,omitempty"`
}

// AdjustmentImpact is one row of the adjustment impact analysis: the raw
// EBITDA-dollar effect of a single adjustment.
type AdjustmentImpact struct {
	AdjustmentID   string                    `json:"adjustment_id"`
	AdjustmentName string                    `json:"adjustment_name"`
	Category       models.AdjustmentCategory `json:"category"`
	Amount         float64                   `json:"amount"`
	EBITDAImpact   float64                   `json:"ebitda_impact"`
	IsRecurring    bool                      `json:"is_recurring"`
	Reason         string                    `json:"reason"`
}

// EliminationEntry records one intercompany elimination made during
// consolidation.
type EliminationEntry struct {
	EntryType         string  `json:"entry_type"`
	AccountEliminated string  `json:"account_eliminated"`
	AmountEliminated  float64 `json:"amount_eliminated"`
	Reason            string  `json:"reason"`
}
