package normalize

import (
	"fmt"
	"log"

	"financial_normalizer/pkg/core/calc"
	"financial_normalizer/pkg/core/classify"
	"financial_normalizer/pkg/core/rules"
	"financial_normalizer/pkg/models"
)

// Config controls view generation.
type Config struct {
	Industry               string
	ConsolidateMultiEntity bool
	BaseCurrency           string
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		ConsolidateMultiEntity: true,
		BaseCurrency:           "USD",
	}
}

// ViewEngine generates normalized financial views. It holds only immutable
// configuration; every GenerateView call is independent.
type ViewEngine struct {
	cfg        Config
	classifier *classify.Engine
}

// NewViewEngine builds a view engine over the given rule set.
func NewViewEngine(cfg Config, ruleSet *rules.Config) (*ViewEngine, error) {
	classifier, err := classify.NewEngine(ruleSet)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "USD"
	}
	return &ViewEngine{cfg: cfg, classifier: classifier}, nil
}

// GenerateView runs the full pipeline over a GL batch. It never fails on
// well-formed input: absent data yields empty sub-tables, not errors.
func (e *ViewEngine) GenerateView(records []models.GLRecord, adjustments []calc.AdjustmentDetail, entityName, periodEndDate string) (*NormalizedFinancialView, error) {
	log.Printf("[ViewEngine] generating normalized view for %q (%d GL entries)", entityName, len(records))

	// 1. Multi-entity consolidation.
	var eliminations []calc.EliminationEntry
	if e.cfg.ConsolidateMultiEntity && models.HasMultipleEntities(records) {
		var err error
		records, eliminations, err = e.consolidateEntities(records)
		if err != nil {
			return nil, err
		}
	}

	// 2. Classify every distinct account.
	classifications := e.classifyAccounts(records)

	// 3+4. EBITDA metrics over the (possibly consolidated) batch.
	calculator := calc.NewAdjustmentCalculator(records)
	calculator.AddAdjustments(adjustments)
	metrics := calculator.CalculateAllMetrics()

	// 5. Reported income statement.
	reportedIS := buildIncomeStatement(records)

	// 6. Normalized statement: only the EBITDA line is restated, by the sum
	// of add_back adjustment amounts. Other lines are left as reported.
	normalizedIS := reportedIS
	if len(calculator.Adjustments()) > 0 {
		normalizedIS = buildNormalizedIncomeStatement(reportedIS, calculator.Adjustments())
	}

	// 7. Before/after comparison per distinct account name.
	beforeAfter := buildBeforeAfter(records, classifications, calculator.Adjustments())

	// 8. Suspicious-pattern scan.
	suspicious := e.classifier.DetectSuspiciousPatterns(records)

	// 9. Assemble.
	view := &NormalizedFinancialView{
		Period:                    firstPeriod(records, periodEndDate),
		PeriodEndDate:             periodEndDate,
		Entity:                    entityName,
		RawGL:                     records,
		Classifications:           classifications,
		Adjustments:               calculator.Adjustments(),
		ReportedIncomeStatement:   reportedIS,
		NormalizedIncomeStatement: normalizedIS,
		ReportedEBITDA:            metrics[calc.MetricReportedEBITDA].EBITDA,
		AdjustedEBITDA:            metrics[calc.MetricAdjustedEBITDA].EBITDA,
		NormalizedEBITDA:          metrics[calc.MetricNormalizedEBITDA].EBITDA,
		BeforeAfterDetails:        beforeAfter,
		AdjustmentImpactAnalysis:  calculator.AdjustmentImpactAnalysis(),
		SuspiciousPatterns:        suspicious,
		Eliminations:              eliminations,
	}

	log.Printf("[ViewEngine] reported EBITDA %.2f, adjusted %.2f, normalized %.2f",
		view.ReportedEBITDA, view.AdjustedEBITDA, view.NormalizedEBITDA)

	return view, nil
}

func (e *ViewEngine) consolidateEntities(records []models.GLRecord) ([]models.GLRecord, []calc.EliminationEntry, error) {
	engine := calc.NewConsolidationEngine()

	byEntity := make(map[string][]models.GLRecord)
	entities := models.Entities(records)
	for _, r := range records {
		byEntity[r.Entity] = append(byEntity[r.Entity], r)
	}
	for _, name := range entities {
		engine.AddEntity(name, byEntity[name])
	}

	consolidated, eliminations, err := engine.Consolidate(calc.ConsolidateFull)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[ViewEngine] consolidated %d entities, %d elimination entries",
		len(entities), len(eliminations))
	return consolidated, eliminations, nil
}

// classifyAccounts classifies each distinct (code, name) pair and stores the
// result under the account name. When distinct codes share a name, the
// first-seen pair keeps the key.
func (e *ViewEngine) classifyAccounts(records []models.GLRecord) map[string]classify.AccountClassification {
	classifications := make(map[string]classify.AccountClassification)
	for _, r := range records {
		if r.AccountCode == "" || r.AccountName == "" {
			continue
		}
		if _, ok := classifications[r.AccountName]; ok {
			continue
		}
		classifications[r.AccountName] = e.classifier.ClassifyAccount(r.AccountCode, r.AccountName, e.cfg.Industry)
	}
	log.Printf("[ViewEngine] classified %d unique accounts", len(classifications))
	return classifications
}

// buildIncomeStatement produces the fixed 7-line statement with
// percent-of-revenue per line. Expense lines carry negative amounts.
func buildIncomeStatement(records []models.GLRecord) []IncomeStatementLine {
	var revenue, cogs, opex, da float64
	for _, r := range records {
		switch calc.CategorizeAccount(r.AccountName) {
		case calc.ComponentRevenue:
			revenue += r.Amount
		case calc.ComponentCOGS:
			cogs += r.Amount
		case calc.ComponentOpex:
			opex += r.Amount
		case calc.ComponentDA:
			da += r.Amount
		}
	}
	revenue = abs(revenue)
	cogs = abs(cogs)
	opex = abs(opex)
	da = abs(da)

	grossProfit := revenue - cogs
	ebit := grossProfit - opex
	ebitda := ebit + da

	pct := func(amount float64) float64 {
		if revenue > 0 {
			return amount / revenue * 100
		}
		return 0
	}

	return []IncomeStatementLine{
		{LineItem: LineRevenue, Amount: revenue, PercentOfRevenue: pct(revenue)},
		{LineItem: LineCOGS, Amount: -cogs, PercentOfRevenue: pct(-cogs)},
		{LineItem: LineGrossProfit, Amount: grossProfit, PercentOfRevenue: pct(grossProfit)},
		{LineItem: LineOpex, Amount: -opex, PercentOfRevenue: pct(-opex)},
		{LineItem: LineEBIT, Amount: ebit, PercentOfRevenue: pct(ebit)},
		{LineItem: LineDA, Amount: -da, PercentOfRevenue: pct(-da)},
		{LineItem: LineEBITDA, Amount: ebitda, PercentOfRevenue: pct(ebitda)},
	}
}

func buildNormalizedIncomeStatement(reported []IncomeStatementLine, adjustments []calc.AdjustmentDetail) []IncomeStatementLine {
	totalAddBacks := 0.0
	for _, adj := range adjustments {
		if adj.Category == models.AdjustmentAddBack {
			totalAddBacks += adj.Amount
		}
	}

	normalized := make([]IncomeStatementLine, len(reported))
	copy(normalized, reported)
	for i := range normalized {
		if normalized[i].LineItem == LineEBITDA {
			normalized[i].Amount += totalAddBacks
		}
	}
	return normalized
}

// buildBeforeAfter sums raw amounts per distinct account name, applies the
// matching adjustment deltas, and annotates each row with its
// classification.
func buildBeforeAfter(records []models.GLRecord, classifications map[string]classify.AccountClassification, adjustments []calc.AdjustmentDetail) []BeforeAfterComparison {
	before := make(map[string]float64)
	var order []string
	for _, r := range records {
		if _, ok := before[r.AccountName]; !ok {
			order = append(order, r.AccountName)
		}
		before[r.AccountName] += r.Amount
	}

	type adjInfo struct {
		amount float64
		reason string
	}
	adjByAccount := make(map[string]adjInfo)
	for _, adj := range adjustments {
		info := adjByAccount[adj.AccountName]
		info.amount += adj.Amount
		info.reason = adj.Reason
		adjByAccount[adj.AccountName] = info
	}

	rows := make([]BeforeAfterComparison, 0, len(order))
	for _, name := range order {
		beforeAmount := before[name]
		info := adjByAccount[name]

		row := BeforeAfterComparison{
			AccountName:      name,
			BeforeAmount:     beforeAmount,
			AfterAmount:      beforeAmount + info.amount,
			AdjustmentAmount: info.amount,
			AdjustmentReason: info.reason,
			IsRecurring:      true,
		}
		if cls, ok := classifications[name]; ok {
			row.AccountCode = cls.AccountCode
			row.AccountType = cls.AccountType
		}
		rows = append(rows, row)
	}
	return rows
}

func firstPeriod(records []models.GLRecord, fallback string) string {
	for _, r := range records {
		if r.Period != "" {
			return r.Period
		}
	}
	return fallback
}
