// Package rules holds the classification rule configuration: per-industry
// account maps, adjustment keyword rules and suspicious-pattern thresholds.
// The configuration is loaded once, validated, and read-only afterwards.
package rules

import (
	"fmt"
	"os"

	"financial_normalizer/pkg/models"

	"gopkg.in/yaml.v2"
)

// AccountRule is one industry-specific account mapping. The Code doubles as
// a match target: an account matches if its code equals Code exactly or its
// lower-cased name contains Code as a substring.
type AccountRule struct {
	Code           string
	Metrics        []string
	IsDepreciation bool
	Sublevel       string
}

// IndustryRules maps account codes/keywords to financial categories for one
// industry. The slices preserve document order so matching is deterministic.
type IndustryRules struct {
	RevenueAccounts   []AccountRule
	COGSAccounts      []AccountRule
	OperatingExpenses []AccountRule
}

// AdjustmentRule describes one candidate normalization adjustment and the
// account-name keywords that trigger it.
type AdjustmentRule struct {
	Name        string
	Keywords    []string
	Type        models.AdjustmentCategory
	Reason      string
	IsRecurring bool
}

// SuspiciousThresholds parameterizes the fixed pattern heuristics in the
// classification engine.
type SuspiciousThresholds struct {
	// Negative revenue: flag when |sum(negative)| / |sum(all)| among
	// revenue-matched rows exceeds this ratio.
	NegativeRevenueRatio float64
	// Round amounts: among rows with |amount| > LargeAmountFloor, flag when
	// the share that is an exact multiple of RoundAmountUnit exceeds
	// RoundShare.
	LargeAmountFloor float64
	RoundAmountUnit  float64
	RoundShare       float64
	// Related party: any account name containing one of these keywords
	// produces a flag, with no threshold.
	RelatedPartyKeywords []string
}

// Config is the full rule set. Industries preserves no order (lookup is by
// name); Adjustments preserves document order, which breaks keyword-count
// ties during detection.
type Config struct {
	Industries  map[string]IndustryRules
	Adjustments []AdjustmentRule
	Suspicious  SuspiciousThresholds
}

// Industry returns the rule set for the named industry, if configured.
func (c *Config) Industry(name string) (IndustryRules, bool) {
	ind, ok := c.Industries[name]
	return ind, ok
}

// Load reads and parses a YAML rule document from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a rule document. Top-level keys are either industry names,
// "adjustments", or "suspicious_patterns". Unknown adjustment types fail
// the whole load: the engine cannot run on rules it does not understand.
func Parse(data []byte) (*Config, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed rule document: %w", err)
	}

	cfg := &Config{
		Industries: make(map[string]IndustryRules),
		Suspicious: DefaultSuspiciousThresholds(),
	}

	for _, item := range doc {
		key := fmt.Sprintf("%v", item.Key)
		switch key {
		case "adjustments":
			adjustments, err := parseAdjustments(item.Value)
			if err != nil {
				return nil, err
			}
			cfg.Adjustments = adjustments
		case "suspicious_patterns":
			if err := parseSuspicious(item.Value, &cfg.Suspicious); err != nil {
				return nil, err
			}
		default:
			industry, err := parseIndustry(item.Value)
			if err != nil {
				return nil, fmt.Errorf("industry %q: %w", key, err)
			}
			cfg.Industries[key] = industry
		}
	}

	return cfg, nil
}

// decode round-trips a yaml node into a typed struct.
func decode(node interface{}, out interface{}) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}

type accountRuleBody struct {
	Metrics        []string `yaml:"metrics"`
	IsDepreciation bool     `yaml:"is_depreciation"`
	Sublevel       string   `yaml:"sublevel"`
}

func parseAccountMap(node interface{}) ([]AccountRule, error) {
	if node == nil {
		return nil, nil
	}
	var entries yaml.MapSlice
	if err := decode(node, &entries); err != nil {
		return nil, fmt.Errorf("account map: %w", err)
	}

	rules := make([]AccountRule, 0, len(entries))
	for _, entry := range entries {
		var body accountRuleBody
		if entry.Value != nil {
			if err := decode(entry.Value, &body); err != nil {
				return nil, fmt.Errorf("account %v: %w", entry.Key, err)
			}
		}
		rules = append(rules, AccountRule{
			Code:           fmt.Sprintf("%v", entry.Key),
			Metrics:        body.Metrics,
			IsDepreciation: body.IsDepreciation,
			Sublevel:       body.Sublevel,
		})
	}
	return rules, nil
}

func parseIndustry(node interface{}) (IndustryRules, error) {
	var sections yaml.MapSlice
	if err := decode(node, &sections); err != nil {
		return IndustryRules{}, err
	}

	var industry IndustryRules
	for _, section := range sections {
		accounts, err := parseAccountMap(section.Value)
		if err != nil {
			return IndustryRules{}, err
		}
		switch fmt.Sprintf("%v", section.Key) {
		case "revenue_accounts":
			industry.RevenueAccounts = accounts
		case "cogs_accounts":
			industry.COGSAccounts = accounts
		case "operating_expenses":
			industry.OperatingExpenses = accounts
		}
	}
	return industry, nil
}

type adjustmentRuleBody struct {
	Keywords       []string `yaml:"keywords"`
	AdjustmentType string   `yaml:"adjustment_type"`
	Reason         string   `yaml:"reason"`
	IsRecurring    *bool    `yaml:"is_recurring"`
}

func parseAdjustments(node interface{}) ([]AdjustmentRule, error) {
	var entries yaml.MapSlice
	if err := decode(node, &entries); err != nil {
		return nil, fmt.Errorf("adjustments: %w", err)
	}

	rules := make([]AdjustmentRule, 0, len(entries))
	for _, entry := range entries {
		name := fmt.Sprintf("%v", entry.Key)
		var body adjustmentRuleBody
		if err := decode(entry.Value, &body); err != nil {
			return nil, fmt.Errorf("adjustment %q: %w", name, err)
		}

		category, err := models.ParseAdjustmentCategory(body.AdjustmentType)
		if err != nil {
			return nil, fmt.Errorf("adjustment %q: %w", name, err)
		}

		recurring := true
		if body.IsRecurring != nil {
			recurring = *body.IsRecurring
		}

		rules = append(rules, AdjustmentRule{
			Name:        name,
			Keywords:    body.Keywords,
			Type:        category,
			Reason:      body.Reason,
			IsRecurring: recurring,
		})
	}
	return rules, nil
}

type suspiciousBody struct {
	NegativeRevenue struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"negative_revenue"`
	LargeRoundAmounts struct {
		Floor float64 `yaml:"floor"`
		Unit  float64 `yaml:"unit"`
		Share float64 `yaml:"share"`
	} `yaml:"large_round_amounts"`
	RelatedParty struct {
		Keywords []string `yaml:"keywords"`
	} `yaml:"related_party"`
}

func parseSuspicious(node interface{}, out *SuspiciousThresholds) error {
	var body suspiciousBody
	if err := decode(node, &body); err != nil {
		return fmt.Errorf("suspicious_patterns: %w", err)
	}

	if body.NegativeRevenue.Threshold > 0 {
		out.NegativeRevenueRatio = body.NegativeRevenue.Threshold
	}
	if body.LargeRoundAmounts.Floor > 0 {
		out.LargeAmountFloor = body.LargeRoundAmounts.Floor
	}
	if body.LargeRoundAmounts.Unit > 0 {
		out.RoundAmountUnit = body.LargeRoundAmounts.Unit
	}
	if body.LargeRoundAmounts.Share > 0 {
		out.RoundShare = body.LargeRoundAmounts.Share
	}
	if len(body.RelatedParty.Keywords) > 0 {
		out.RelatedPartyKeywords = body.RelatedParty.Keywords
	}
	return nil
}

// DefaultSuspiciousThresholds returns the stock heuristic parameters.
func DefaultSuspiciousThresholds() SuspiciousThresholds {
	return SuspiciousThresholds{
		NegativeRevenueRatio: 0.05,
		LargeAmountFloor:     100000,
		RoundAmountUnit:      10000,
		RoundShare:           0.30,
		RelatedPartyKeywords: []string{"related", "affiliate", "intercompany", "parent", "subsidiary"},
	}
}
