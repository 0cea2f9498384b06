package classify

import (
	"fmt"
	"math"
	"strings"

	"financial_normalizer/pkg/models"
)

// Risk levels carried by suspicious-pattern flags.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Pattern identifiers.
const (
	PatternNegativeRevenue  = "negative_revenue"
	PatternLargeRoundAmount = "large_round_amount"
	PatternRelatedParty     = "related_party_spike"
)

// SuspiciousPatternFlag marks an accounting pattern worth human review.
type SuspiciousPatternFlag struct {
	AccountName       string  `json:"account_name"`
	Pattern           string  `json:"pattern"`
	RiskLevel         string  `json:"risk_level"`
	Reason            string  `json:"reason"`
	ThresholdExceeded float64 `json:"threshold_exceeded,omitempty"`
	RecommendedAction string  `json:"recommended_action"`
}

// DetectSuspiciousPatterns scans a whole batch for three independent
// heuristics: negative revenue concentration, large round amounts, and
// related-party activity. Zero to three flags may come back.
func (e *Engine) DetectSuspiciousPatterns(records []models.GLRecord) []SuspiciousPatternFlag {
	var flags []SuspiciousPatternFlag

	if flag, ok := e.detectNegativeRevenue(records); ok {
		flags = append(flags, flag)
	}
	if flag, ok := e.detectLargeRoundAmounts(records); ok {
		flags = append(flags, flag)
	}
	if flag, ok := e.detectRelatedParty(records); ok {
		flags = append(flags, flag)
	}

	return flags
}

func (e *Engine) detectNegativeRevenue(records []models.GLRecord) (SuspiciousPatternFlag, bool) {
	totalRevenue := 0.0
	totalNegative := 0.0
	matched := false

	for _, r := range records {
		nameLower := strings.ToLower(r.AccountName)
		if !strings.Contains(nameLower, "revenue") && !strings.Contains(nameLower, "sales") {
			continue
		}
		matched = true
		totalRevenue += r.Amount
		if r.Amount < 0 {
			totalNegative += r.Amount
		}
	}

	if !matched || totalNegative == 0 || math.Abs(totalRevenue) == 0 {
		return SuspiciousPatternFlag{}, false
	}

	ratio := math.Abs(totalNegative / totalRevenue)
	if ratio <= e.cfg.Suspicious.NegativeRevenueRatio {
		return SuspiciousPatternFlag{}, false
	}

	return SuspiciousPatternFlag{
		AccountName: "Revenue",
		Pattern:     PatternNegativeRevenue,
		RiskLevel:   RiskMedium,
		Reason: fmt.Sprintf("Negative revenue %.2f is %.1f%% of total",
			totalNegative, ratio*100),
		ThresholdExceeded: ratio,
		RecommendedAction: "Review returns and allowances",
	}, true
}

func (e *Engine) detectLargeRoundAmounts(records []models.GLRecord) (SuspiciousPatternFlag, bool) {
	large := 0
	round := 0

	for _, r := range records {
		if math.Abs(r.Amount) <= e.cfg.Suspicious.LargeAmountFloor {
			continue
		}
		large++
		if math.Mod(math.Abs(r.Amount), e.cfg.Suspicious.RoundAmountUnit) == 0 {
			round++
		}
	}

	if large == 0 {
		return SuspiciousPatternFlag{}, false
	}

	share := float64(round) / float64(large)
	if share <= e.cfg.Suspicious.RoundShare {
		return SuspiciousPatternFlag{}, false
	}

	return SuspiciousPatternFlag{
		AccountName: "Various",
		Pattern:     PatternLargeRoundAmount,
		RiskLevel:   RiskLow,
		Reason: fmt.Sprintf("%d out of %d large amounts are round numbers",
			round, large),
		ThresholdExceeded: share,
		RecommendedAction: "Verify round amounts are not estimates",
	}, true
}

func (e *Engine) detectRelatedParty(records []models.GLRecord) (SuspiciousPatternFlag, bool) {
	count := 0
	totalAbs := 0.0

	for _, r := range records {
		nameLower := strings.ToLower(r.AccountName)
		if containsAny(nameLower, e.cfg.Suspicious.RelatedPartyKeywords) {
			count++
			totalAbs += math.Abs(r.Amount)
		}
	}

	// No threshold: any related-party entry produces the flag.
	if count == 0 {
		return SuspiciousPatternFlag{}, false
	}

	return SuspiciousPatternFlag{
		AccountName: "Related Party Transactions",
		Pattern:     PatternRelatedParty,
		RiskLevel:   RiskMedium,
		Reason: fmt.Sprintf("Found %d related party entries totaling %.2f",
			count, totalAbs),
		RecommendedAction: "Review related party transactions for arm's length pricing",
	}, true
}
