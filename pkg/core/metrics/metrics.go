// Package metrics computes financial ratios from a finished normalized
// view: profitability margins, leverage and coverage ratios, and EV
// multiples. Every metric returns ok=false when the underlying data is
// unavailable rather than guessing.
package metrics

import (
	"math"
	"strings"

	"financial_normalizer/pkg/core/normalize"
)

// Engine calculates metrics over one normalized view. Enterprise value must
// be supplied by the caller; it cannot be derived from the statements.
type Engine struct {
	view            *normalize.NormalizedFinancialView
	enterpriseValue float64
	hasEV           bool
}

// NewEngine builds a metrics engine without valuation inputs.
func NewEngine(view *normalize.NormalizedFinancialView) *Engine {
	return &Engine{view: view}
}

// NewEngineWithEV builds a metrics engine with an enterprise value for the
// EV multiples.
func NewEngineWithEV(view *normalize.NormalizedFinancialView, enterpriseValue float64) *Engine {
	return &Engine{view: view, enterpriseValue: enterpriseValue, hasEV: true}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// statementLine finds a line item in the normalized income statement.
func (e *Engine) statementLine(lineItem string) (float64, bool) {
	for _, line := range e.view.NormalizedIncomeStatement {
		if line.LineItem == lineItem {
			return line.Amount, true
		}
	}
	return 0, false
}

func (e *Engine) revenue() (float64, bool) {
	revenue, ok := e.statementLine(normalize.LineRevenue)
	if !ok || revenue <= 0 {
		return 0, false
	}
	return revenue, true
}

// sumMatching sums GL amounts whose lower-cased account name contains any
// of the keywords.
func (e *Engine) sumMatching(keywords ...string) (float64, bool) {
	total := 0.0
	matched := false
	for _, r := range e.view.RawGL {
		nameLower := strings.ToLower(r.AccountName)
		for _, kw := range keywords {
			if strings.Contains(nameLower, kw) {
				total += r.Amount
				matched = true
				break
			}
		}
	}
	return total, matched
}

// GrossMargin is (gross profit / revenue) * 100.
func (e *Engine) GrossMargin() (float64, bool) {
	revenue, ok := e.revenue()
	if !ok {
		return 0, false
	}
	grossProfit, ok := e.statementLine(normalize.LineGrossProfit)
	if !ok {
		return 0, false
	}
	return round2(grossProfit / revenue * 100), true
}

// EBITDAMargin is (normalized EBITDA / revenue) * 100.
func (e *Engine) EBITDAMargin() (float64, bool) {
	revenue, ok := e.revenue()
	if !ok {
		return 0, false
	}
	return round2(e.view.NormalizedEBITDA / revenue * 100), true
}

// OperatingMargin is (EBIT / revenue) * 100.
func (e *Engine) OperatingMargin() (float64, bool) {
	revenue, ok := e.revenue()
	if !ok {
		return 0, false
	}
	ebit, ok := e.statementLine(normalize.LineEBIT)
	if !ok {
		return 0, false
	}
	return round2(ebit / revenue * 100), true
}

// NetMargin is (net income / revenue) * 100, with net income approximated
// as EBITDA - D&A - interest - taxes when no explicit line exists.
func (e *Engine) NetMargin() (float64, bool) {
	revenue, ok := e.revenue()
	if !ok {
		return 0, false
	}
	netIncome, ok := e.netIncome()
	if !ok {
		return 0, false
	}
	return round2(netIncome / revenue * 100), true
}

func (e *Engine) netIncome() (float64, bool) {
	if len(e.view.RawGL) == 0 {
		return 0, false
	}

	taxes := 0.0
	if total, ok := e.sumMatching("tax"); ok {
		taxes = math.Abs(total)
	}

	da := 0.0
	if line, ok := e.statementLine(normalize.LineDA); ok {
		da = math.Abs(line)
	}

	interest := 0.0
	if v, ok := e.interestExpense(); ok {
		interest = v
	}

	return e.view.NormalizedEBITDA - da - interest - taxes, true
}

// CurrentRatio is current assets / current liabilities.
func (e *Engine) CurrentRatio() (float64, bool) {
	assets, ok := e.sumMatching("cash", "receivable", "inventory", "prepaid", "current asset")
	if !ok || assets <= 0 {
		return 0, false
	}
	liabilitiesRaw, ok := e.sumMatching("payable", "accrued", "current liability", "short term")
	liabilities := math.Abs(liabilitiesRaw)
	if !ok || liabilities <= 0 {
		return 0, false
	}
	return round2(assets / liabilities), true
}

// DebtToEBITDA is total debt / normalized EBITDA.
func (e *Engine) DebtToEBITDA() (float64, bool) {
	debtRaw, ok := e.sumMatching("debt", "loan", "bond", "notes payable", "term loan")
	debt := math.Abs(debtRaw)
	if !ok || debt <= 0 {
		return 0, false
	}
	if e.view.NormalizedEBITDA <= 0 {
		return 0, false
	}
	return round2(debt / e.view.NormalizedEBITDA), true
}

// InterestCoverage is EBITDA / interest expense.
func (e *Engine) InterestCoverage() (float64, bool) {
	interest, ok := e.interestExpense()
	if !ok || interest <= 0 {
		return 0, false
	}
	return round2(e.view.NormalizedEBITDA / interest), true
}

func (e *Engine) interestExpense() (float64, bool) {
	total, ok := e.sumMatching("interest", "financing")
	if !ok {
		return 0, false
	}
	v := math.Abs(total)
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// EVToEBITDA is enterprise value / normalized EBITDA.
func (e *Engine) EVToEBITDA() (float64, bool) {
	if !e.hasEV || e.view.NormalizedEBITDA <= 0 {
		return 0, false
	}
	return round2(e.enterpriseValue / e.view.NormalizedEBITDA), true
}

// EVToRevenue is enterprise value / revenue.
func (e *Engine) EVToRevenue() (float64, bool) {
	if !e.hasEV {
		return 0, false
	}
	revenue, ok := e.revenue()
	if !ok {
		return 0, false
	}
	return round2(e.enterpriseValue / revenue), true
}

// Metric is one named metric value; Available is false when the underlying
// data was missing.
type Metric struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// Report groups all metrics by category.
type Report struct {
	Profitability map[string]Metric `json:"profitability"`
	Health        map[string]Metric `json:"health"`
	Valuation     map[string]Metric `json:"valuation"`
}

// FullReport computes every metric.
func (e *Engine) FullReport() Report {
	metric := func(f func() (float64, bool)) Metric {
		v, ok := f()
		return Metric{Value: v, Available: ok}
	}

	return Report{
		Profitability: map[string]Metric{
			"gross_margin_pct":     metric(e.GrossMargin),
			"ebitda_margin_pct":    metric(e.EBITDAMargin),
			"operating_margin_pct": metric(e.OperatingMargin),
			"net_margin_pct":       metric(e.NetMargin),
		},
		Health: map[string]Metric{
			"current_ratio":           metric(e.CurrentRatio),
			"debt_to_ebitda":          metric(e.DebtToEBITDA),
			"interest_coverage_ratio": metric(e.InterestCoverage),
		},
		Valuation: map[string]Metric{
			"ev_to_ebitda":  metric(e.EVToEBITDA),
			"ev_to_revenue": metric(e.EVToRevenue),
		},
	}
}
