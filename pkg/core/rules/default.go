package rules

import "financial_normalizer/pkg/models"

// Default returns the built-in rule set, mirroring config/categories.yaml.
// It lets the engines run when no rule document is supplied.
func Default() *Config {
	return &Config{
		Industries: map[string]IndustryRules{
			"saas_tech": {
				RevenueAccounts: []AccountRule{
					{Code: "4000", Metrics: []string{"arr", "mrr"}},
					{Code: "subscription revenue", Metrics: []string{"arr", "mrr"}},
					{Code: "professional services", Metrics: []string{"services_revenue"}},
				},
				COGSAccounts: []AccountRule{
					{Code: "5000", Sublevel: "hosting"},
					{Code: "hosting", Sublevel: "hosting"},
					{Code: "customer support", Sublevel: "support"},
				},
				OperatingExpenses: []AccountRule{
					{Code: "6000"},
					{Code: "research and development"},
					{Code: "sales and marketing"},
				},
			},
			"manufacturing": {
				RevenueAccounts: []AccountRule{
					{Code: "4000", Metrics: []string{"unit_sales"}},
					{Code: "product sales", Metrics: []string{"unit_sales"}},
				},
				COGSAccounts: []AccountRule{
					{Code: "5000", Sublevel: "materials"},
					{Code: "raw materials", Sublevel: "materials"},
					{Code: "direct labor", Sublevel: "labor"},
					{Code: "factory depreciation", IsDepreciation: true},
				},
				OperatingExpenses: []AccountRule{
					{Code: "6000"},
					{Code: "plant overhead"},
				},
			},
		},
		Adjustments: []AdjustmentRule{
			{
				Name:        "owner_compensation",
				Keywords:    []string{"owner", "officer salary", "shareholder salary", "management fee"},
				Type:        models.AdjustmentAddBack,
				Reason:      "Owner compensation above market rate",
				IsRecurring: false,
			},
			{
				Name:        "stock_based_compensation",
				Keywords:    []string{"stock compensation", "stock-based", "share-based", "option expense"},
				Type:        models.AdjustmentAddBack,
				Reason:      "Non-cash compensation expense",
				IsRecurring: true,
			},
			{
				Name:        "one_time_legal",
				Keywords:    []string{"legal settlement", "litigation", "lawsuit"},
				Type:        models.AdjustmentAddBack,
				Reason:      "Non-recurring legal costs",
				IsRecurring: false,
			},
			{
				Name:        "restructuring",
				Keywords:    []string{"restructuring", "severance", "impairment"},
				Type:        models.AdjustmentAddBack,
				Reason:      "One-time restructuring charges",
				IsRecurring: false,
			},
			{
				Name:        "related_party_rent",
				Keywords:    []string{"related party rent", "affiliate rent", "intercompany rent"},
				Type:        models.AdjustmentNormalize,
				Reason:      "Adjust related-party rent to market rate",
				IsRecurring: true,
			},
			{
				Name:        "intercompany_activity",
				Keywords:    []string{"intercompany sale", "intercompany purchase", "intercompany fee"},
				Type:        models.AdjustmentEliminate,
				Reason:      "Eliminate intercompany transactions on consolidation",
				IsRecurring: true,
			},
		},
		Suspicious: DefaultSuspiciousThresholds(),
	}
}
