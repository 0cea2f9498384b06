// Package report renders the adjustment memorandum from a normalized view.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"financial_normalizer/pkg/core/normalize"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Memo renders the adjustment memorandum as Markdown: executive summary,
// detailed adjustments, and any suspicious-pattern flags.
func Memo(view *normalize.NormalizedFinancialView) string {
	var b strings.Builder

	b.WriteString("# Adjustment Memorandum\n\n")
	fmt.Fprintf(&b, "**Entity:** %s\n\n", view.Entity)
	if view.PeriodEndDate != "" {
		fmt.Fprintf(&b, "**Period End:** %s\n\n", view.PeriodEndDate)
	}

	b.WriteString("## Executive Summary\n\n")
	b.WriteString("| Metric | Amount |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Reported EBITDA | %.2f |\n", view.ReportedEBITDA)
	fmt.Fprintf(&b, "| Adjustments | %.2f |\n", view.AdjustedEBITDA-view.ReportedEBITDA)
	fmt.Fprintf(&b, "| Adjusted EBITDA | %.2f |\n", view.AdjustedEBITDA)
	fmt.Fprintf(&b, "| Normalizations | %.2f |\n", view.NormalizedEBITDA-view.AdjustedEBITDA)
	fmt.Fprintf(&b, "| Normalized EBITDA | %.2f |\n\n", view.NormalizedEBITDA)

	if len(view.Adjustments) > 0 {
		b.WriteString("## Detailed Adjustments\n\n")
		for i, adj := range view.Adjustments {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, adj.Name)
			fmt.Fprintf(&b, "- Category: %s\n", adj.Category)
			fmt.Fprintf(&b, "- Amount: %.2f\n", adj.Amount)
			if adj.AccountName != "" {
				fmt.Fprintf(&b, "- Account: %s %s\n", adj.AccountCode, adj.AccountName)
			}
			if adj.Reason != "" {
				fmt.Fprintf(&b, "- Reason: %s\n", adj.Reason)
			}
			fmt.Fprintf(&b, "- Recurring: %v\n\n", adj.IsRecurring)
		}
	}

	if len(view.SuspiciousPatterns) > 0 {
		b.WriteString("## Suspicious Patterns\n\n")
		for _, flag := range view.SuspiciousPatterns {
			fmt.Fprintf(&b, "### %s (%s risk)\n\n", flag.Pattern, flag.RiskLevel)
			fmt.Fprintf(&b, "- Reason: %s\n", flag.Reason)
			fmt.Fprintf(&b, "- Action: %s\n\n", flag.RecommendedAction)
		}
	}

	if len(view.Eliminations) > 0 {
		b.WriteString("## Intercompany Eliminations\n\n")
		for _, elim := range view.Eliminations {
			fmt.Fprintf(&b, "- %s: %.2f (%s)\n", elim.AccountEliminated, elim.AmountEliminated, elim.Reason)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// MemoHTML renders the memo to HTML.
func MemoHTML(view *normalize.NormalizedFinancialView) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	if err := md.Convert([]byte(Memo(view)), &buf); err != nil {
		return "", fmt.Errorf("report: render memo: %w", err)
	}
	return buf.String(), nil
}
