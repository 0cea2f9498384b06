package calc

import (
	"log"
	"strings"

	"financial_normalizer/pkg/models"

	"github.com/google/uuid"
)

// AdjustmentCalculator rolls GL amounts into EBITDA components and applies
// normalization adjustments. A calculator instance owns its adjustment list;
// callers must not mutate it from multiple goroutines.
type AdjustmentCalculator struct {
	records     []models.GLRecord
	adjustments []AdjustmentDetail
}

// NewAdjustmentCalculator builds a calculator over a GL batch.
func NewAdjustmentCalculator(records []models.GLRecord) *AdjustmentCalculator {
	return &AdjustmentCalculator{records: records}
}

// SetRecords replaces the GL batch the calculator operates on.
func (c *AdjustmentCalculator) SetRecords(records []models.GLRecord) {
	c.records = records
}

// Adjustments returns the tracked adjustment list.
func (c *AdjustmentCalculator) Adjustments() []AdjustmentDetail {
	return c.adjustments
}

// AddAdjustment appends an adjustment to the tracked list. A blank ID gets a
// generated UUID and a blank currency defaults to USD.
func (c *AdjustmentCalculator) AddAdjustment(adj AdjustmentDetail) {
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	if adj.Currency == "" {
		adj.Currency = "USD"
	}
	c.adjustments = append(c.adjustments, adj)
	log.Printf("[Calculator] added adjustment %s: %s (%.2f)", adj.ID, adj.Name, adj.Amount)
}

// AddAdjustments appends a batch of adjustments.
func (c *AdjustmentCalculator) AddAdjustments(adjs []AdjustmentDetail) {
	for _, adj := range adjs {
		c.AddAdjustment(adj)
	}
}

// Component keyword sets, tested in priority order.
var componentKeywords = []struct {
	component string
	keywords  []string
}{
	{ComponentRevenue, []string{"revenue", "sales", "income"}},
	{ComponentCOGS, []string{"cogs", "cost of"}},
	{ComponentOpex, []string{"salary", "salaries", "wage", "rent", "utilities", "marketing", "administrative", "office"}},
	{ComponentDA, []string{"depreciation", "amortization"}},
	{ComponentInterest, []string{"interest", "financing"}},
	{ComponentTaxes, []string{"income tax", "tax expense"}},
}

// CategorizeAccount maps an account name onto an EBITDA component, or ""
// when nothing matches. Unmatched accounts are deliberately excluded from
// all EBITDA math so they cannot distort the roll-up.
func CategorizeAccount(accountName string) string {
	nameLower := strings.ToLower(accountName)
	for _, set := range componentKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(nameLower, kw) {
				return set.component
			}
		}
	}
	return ""
}

// componentTotals sums GL amounts per EBITDA component.
func (c *AdjustmentCalculator) componentTotals() map[string]float64 {
	totals := map[string]float64{
		ComponentRevenue:  0,
		ComponentCOGS:     0,
		ComponentOpex:     0,
		ComponentDA:       0,
		ComponentInterest: 0,
		ComponentTaxes:    0,
	}
	for _, r := range c.records {
		if component := CategorizeAccount(r.AccountName); component != "" {
			totals[component] += r.Amount
		}
	}
	return totals
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// CalculateReportedEBITDA rolls up the raw GL with no adjustments. Component
// sums are taken as absolute values: source sign direction is not
// load-bearing for this roll-up. Interest is captured but never subtracted;
// EBITDA is pre-interest by definition.
func (c *AdjustmentCalculator) CalculateReportedEBITDA() EBITDACalculation {
	totals := c.componentTotals()

	revenue := abs(totals[ComponentRevenue])
	cogs := abs(totals[ComponentCOGS])
	opex := abs(totals[ComponentOpex])
	da := abs(totals[ComponentDA])
	interest := abs(totals[ComponentInterest])

	grossProfit := revenue - cogs
	grossMargin := 0.0
	if revenue > 0 {
		grossMargin = grossProfit / revenue * 100
	}
	ebit := grossProfit - opex
	ebitda := ebit + da

	return EBITDACalculation{
		MetricType:               MetricReportedEBITDA,
		Revenue:                  revenue,
		COGS:                     cogs,
		GrossProfit:              grossProfit,
		GrossMarginPct:           grossMargin,
		Opex:                     opex,
		EBIT:                     ebit,
		DepreciationAmortization: da,
		EBITDA:                   ebitda,
		InterestAndTaxes:         interest,
	}
}

// ApplyAdjustments derives a new calculation from base by applying the
// tracked adjustments, optionally restricted to the given categories (nil
// means all). The sign rules per category:
//
//	add_back  → expense component reduced (opex/cogs -= amount, da += amount),
//	            so every add-back raises EBITDA by its amount
//	eliminate → revenue/cogs/opex component: -= amount
//	normalize → opex/revenue component: += amount
//
// Any other category, or an adjustment whose account maps to no component
// (or a component outside the rule's set), has no effect. The asymmetry
// between eliminate and normalize is intentional: D&A eliminations are
// modeled as add-backs.
func (c *AdjustmentCalculator) ApplyAdjustments(base EBITDACalculation, categories []models.AdjustmentCategory) EBITDACalculation {
	active := c.adjustments
	if categories != nil {
		allowed := make(map[models.AdjustmentCategory]bool, len(categories))
		for _, cat := range categories {
			allowed[cat] = true
		}
		active = nil
		for _, adj := range c.adjustments {
			if allowed[adj.Category] {
				active = append(active, adj)
			}
		}
	}

	var adjRevenue, adjCOGS, adjOpex, adjDA float64
	detail := make(map[string]float64, len(active))
	hasNormalize := false

	for _, adj := range active {
		component := CategorizeAccount(adj.AccountName)

		switch adj.Category {
		case models.AdjustmentAddBack:
			switch component {
			case ComponentDA:
				adjDA += adj.Amount
			case ComponentOpex:
				adjOpex -= adj.Amount
			case ComponentCOGS:
				adjCOGS -= adj.Amount
			}
		case models.AdjustmentEliminate:
			switch component {
			case ComponentRevenue:
				adjRevenue -= adj.Amount
			case ComponentCOGS:
				adjCOGS -= adj.Amount
			case ComponentOpex:
				adjOpex -= adj.Amount
			}
		case models.AdjustmentNormalize:
			hasNormalize = true
			switch component {
			case ComponentOpex:
				adjOpex += adj.Amount
			case ComponentRevenue:
				adjRevenue += adj.Amount
			}
		}

		detail[adj.Name] = adj.Amount
	}

	revenue := base.Revenue + adjRevenue
	cogs := base.COGS + adjCOGS
	opex := base.Opex + adjOpex
	da := base.DepreciationAmortization + adjDA

	grossProfit := revenue - cogs
	grossMargin := 0.0
	if revenue > 0 {
		grossMargin = grossProfit / revenue * 100
	}
	ebit := grossProfit - opex
	ebitda := ebit + da

	metricType := MetricAdjustedEBITDA
	if hasNormalize {
		metricType = MetricNormalizedEBITDA
	}

	return EBITDACalculation{
		MetricType:               metricType,
		Revenue:                  revenue,
		COGS:                     cogs,
		GrossProfit:              grossProfit,
		GrossMarginPct:           grossMargin,
		Opex:                     opex,
		EBIT:                     ebit,
		DepreciationAmortization: da,
		EBITDA:                   ebitda,
		InterestAndTaxes:         base.InterestAndTaxes,
		AdjustmentsDetail:        detail,
	}
}

// CalculateAllMetrics computes the three EBITDA views. Adjusted and
// normalized are both derived from the same reported base, never chained.
func (c *AdjustmentCalculator) CalculateAllMetrics() map[EBITDAMetric]EBITDACalculation {
	reported := c.CalculateReportedEBITDA()

	adjusted := c.ApplyAdjustments(reported, []models.AdjustmentCategory{
		models.AdjustmentAddBack, models.AdjustmentEliminate,
	})

	normalized := c.ApplyAdjustments(reported, nil)

	return map[EBITDAMetric]EBITDACalculation{
		MetricReportedEBITDA:   reported,
		MetricAdjustedEBITDA:   adjusted,
		MetricNormalizedEBITDA: normalized,
	}
}

// AdjustmentImpactAnalysis reports each adjustment's raw EBITDA-dollar
// effect: +amount for add_back and normalize, -amount for eliminate, zero
// for everything else.
func (c *AdjustmentCalculator) AdjustmentImpactAnalysis() []AdjustmentImpact {
	rows := make([]AdjustmentImpact, 0, len(c.adjustments))
	for _, adj := range c.adjustments {
		impact := 0.0
		switch adj.Category {
		case models.AdjustmentAddBack, models.AdjustmentNormalize:
			impact = adj.Amount
		case models.AdjustmentEliminate:
			impact = -adj.Amount
		}

		rows = append(rows, AdjustmentImpact{
			AdjustmentID:   adj.ID,
			AdjustmentName: adj.Name,
			Category:       adj.Category,
			Amount:         adj.Amount,
			EBITDAImpact:   impact,
			IsRecurring:    adj.IsRecurring,
			Reason:         adj.Reason,
		})
	}
	return rows
}
