// Package classify maps GL accounts to standard financial categories and
// flags suspicious accounting patterns. The engine is stateless: its only
// state is the immutable rule configuration it was constructed with.
package classify

import (
	"fmt"
	"strings"

	"financial_normalizer/pkg/core/rules"
	"financial_normalizer/pkg/models"
)

// AccountClassification is the result of classifying one account. It is
// created fresh per query and never cached or mutated afterwards.
type AccountClassification struct {
	AccountCode      string                    `json:"account_code"`
	AccountName      string                    `json:"account_name"`
	AccountType      models.AccountType        `json:"account_type"`
	AdjustmentType   models.AdjustmentCategory `json:"adjustment_type,omitempty"`
	AdjustmentName   string                    `json:"adjustment_name,omitempty"`
	AdjustmentReason string                    `json:"adjustment_reason,omitempty"`
	IsRecurring      bool                      `json:"is_recurring,omitempty"`
	Industry         string                    `json:"industry,omitempty"`
	Metrics          []string                  `json:"metrics,omitempty"`
}

// HasAdjustment reports whether an adjustment rule matched the account.
func (c AccountClassification) HasAdjustment() bool {
	return c.AdjustmentName != ""
}

// Engine is the rule-based account classifier.
type Engine struct {
	cfg *rules.Config
}

// NewEngine builds a classifier over the given rule configuration.
func NewEngine(cfg *rules.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("classify: rule configuration is required")
	}
	return &Engine{cfg: cfg}, nil
}

// Generic keyword sets, tested in priority order against the lower-cased
// account name. First matching set wins.
var (
	revenueKeywords = []string{"revenue", "sales", "income", "subscription"}
	returnsKeywords = []string{"return", "allowance", "rebate", "refund"}
	cogsKeywords    = []string{"cogs", "cost of goods", "cost of sales", "cost of revenue"}
	opexKeywords    = []string{"salary", "salaries", "wage", "rent", "utilities", "marketing",
		"advertising", "depreciation", "expense", "administrative"}
	daKeywords        = []string{"depreciation", "amortization"}
	interestKeywords  = []string{"interest", "financing", "loan"}
	otherExpKeywords  = []string{"gain", "loss", "other income", "other expense", "fx"}
	assetKeywords     = []string{"cash", "receivable", "inventory", "prepaid", "property", "equipment", "asset"}
	liabilityKeywords = []string{"payable", "liability", "debt", "accrued"}
	equityKeywords    = []string{"stock", "equity", "retained earnings", "capital"}
)

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ClassifyAccount classifies a single (code, name, industry) triple. It never
// fails on well-formed strings; unmatched accounts come back as
// models.AccountUnknown with no adjustment attached.
func (e *Engine) ClassifyAccount(accountCode, accountName, industry string) AccountClassification {
	nameLower := strings.ToLower(accountName)

	classification := AccountClassification{
		AccountCode: accountCode,
		AccountName: accountName,
		AccountType: models.AccountUnknown,
		Industry:    industry,
	}

	// 1. Industry-specific mappings take precedence over everything else.
	if industry != "" {
		if industryRules, ok := e.cfg.Industry(industry); ok {
			if e.classifyByIndustry(&classification, industryRules) {
				return classification
			}
		}
	}

	// 2. Generic keyword classification.
	classification.AccountType = classifyByKeywords(nameLower)

	// 3. Adjustment detection runs regardless of the account type.
	e.attachAdjustment(&classification, nameLower)

	return classification
}

// classifyByIndustry checks the industry account maps in priority order:
// revenue, then COGS (with the depreciation diversion), then opex. A rule
// matches on exact code equality or code-as-substring of the account name.
func (e *Engine) classifyByIndustry(c *AccountClassification, industry rules.IndustryRules) bool {
	nameLower := strings.ToLower(c.AccountName)

	match := func(rule rules.AccountRule) bool {
		return c.AccountCode == rule.Code || strings.Contains(nameLower, rule.Code)
	}

	for _, rule := range industry.RevenueAccounts {
		if match(rule) {
			c.AccountType = models.AccountRevenue
			c.Metrics = rule.Metrics
			return true
		}
	}

	for _, rule := range industry.COGSAccounts {
		if match(rule) {
			if rule.IsDepreciation {
				c.AccountType = models.AccountDepreciation
			} else {
				c.AccountType = models.AccountCOGS
				if rule.Sublevel != "" {
					c.Metrics = []string{rule.Sublevel}
				}
			}
			return true
		}
	}

	for _, rule := range industry.OperatingExpenses {
		if match(rule) {
			c.AccountType = models.AccountOpex
			return true
		}
	}

	return false
}

func classifyByKeywords(nameLower string) models.AccountType {
	switch {
	case containsAny(nameLower, revenueKeywords):
		return models.AccountRevenue
	case containsAny(nameLower, returnsKeywords):
		return models.AccountReturns
	case containsAny(nameLower, cogsKeywords):
		return models.AccountCOGS
	case containsAny(nameLower, opexKeywords):
		// Depreciation/amortization hides inside the opex keyword set and
		// diverts to its own category.
		if containsAny(nameLower, daKeywords) {
			return models.AccountDepreciation
		}
		return models.AccountOpex
	case containsAny(nameLower, interestKeywords):
		return models.AccountInterest
	case containsAny(nameLower, otherExpKeywords):
		return models.AccountOtherExpense
	case containsAny(nameLower, assetKeywords):
		return models.AccountAsset
	case containsAny(nameLower, liabilityKeywords):
		return models.AccountLiability
	case containsAny(nameLower, equityKeywords):
		return models.AccountEquity
	}
	return models.AccountUnknown
}

// attachAdjustment finds the adjustment rule with the strictly highest
// keyword hit count. Ties keep the earlier rule in document order.
func (e *Engine) attachAdjustment(c *AccountClassification, nameLower string) {
	best := -1
	maxHits := 0

	for i, rule := range e.cfg.Adjustments {
		hits := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(nameLower, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > maxHits {
			maxHits = hits
			best = i
		}
	}

	if best < 0 {
		return
	}

	rule := e.cfg.Adjustments[best]
	c.AdjustmentType = rule.Type
	c.AdjustmentName = rule.Name
	c.AdjustmentReason = rule.Reason
	c.IsRecurring = rule.IsRecurring
}

// ClassifiedRecord joins a GL record with its account classification.
type ClassifiedRecord struct {
	models.GLRecord
	Classification AccountClassification
}

// ClassifyRecords classifies every row in a batch, skipping rows with a
// blank code or name. Classification is cached per (code, name) pair within
// the batch; repeated pairs share one result.
func (e *Engine) ClassifyRecords(records []models.GLRecord, industry string) []ClassifiedRecord {
	type key struct{ code, name string }
	cache := make(map[key]AccountClassification)

	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if r.AccountCode == "" || r.AccountName == "" {
			continue
		}
		k := key{r.AccountCode, r.AccountName}
		cls, ok := cache[k]
		if !ok {
			cls = e.ClassifyAccount(r.AccountCode, r.AccountName, industry)
			cache[k] = cls
		}
		out = append(out, ClassifiedRecord{GLRecord: r, Classification: cls})
	}
	return out
}
