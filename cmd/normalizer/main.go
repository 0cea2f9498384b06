// normalizer turns a raw general-ledger extract into a normalized income
// statement and EBITDA metrics.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"financial_normalizer/pkg/core/calc"
	"financial_normalizer/pkg/core/classify"
	"financial_normalizer/pkg/core/ingest"
	"financial_normalizer/pkg/core/metrics"
	"financial_normalizer/pkg/core/normalize"
	"financial_normalizer/pkg/core/report"
	"financial_normalizer/pkg/core/rules"
	"financial_normalizer/pkg/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagRules       string
	flagIndustry    string
	flagEntity      string
	flagAdjustments string
	flagPeriodEnd   string
	flagMemoOut     string
	flagEV          float64
)

var rootCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "GL classification and EBITDA normalization engine",
	Long:  "Classifies general-ledger accounts, detects adjustment candidates and suspicious patterns, and produces reported/adjusted/normalized EBITDA views.",
}

var viewCmd = &cobra.Command{
	Use:   "view <gl.csv>",
	Short: "Generate the full normalized financial view from a GL extract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleSet, err := loadRules()
		if err != nil {
			return err
		}

		records, err := parseGL(args[0])
		if err != nil {
			return err
		}

		var adjustments []calc.AdjustmentDetail
		if flagAdjustments != "" {
			adjustments, err = loadAdjustments(flagAdjustments)
			if err != nil {
				return err
			}
		}

		cfg := normalize.DefaultConfig()
		cfg.Industry = flagIndustry
		engine, err := normalize.NewViewEngine(cfg, ruleSet)
		if err != nil {
			return err
		}

		view, err := engine.GenerateView(records, adjustments, flagEntity, flagPeriodEnd)
		if err != nil {
			return err
		}

		printView(view)

		if flagEV > 0 {
			printMetrics(metrics.NewEngineWithEV(view, flagEV))
		} else {
			printMetrics(metrics.NewEngine(view))
		}

		if flagMemoOut != "" {
			if err := writeMemo(view, flagMemoOut); err != nil {
				return err
			}
			fmt.Printf("Memo written to %s\n", flagMemoOut)
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <gl.csv>",
	Short: "Classify every account and report suspicious patterns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleSet, err := loadRules()
		if err != nil {
			return err
		}
		engine, err := classify.NewEngine(ruleSet)
		if err != nil {
			return err
		}

		records, err := parseGL(args[0])
		if err != nil {
			return err
		}

		for _, row := range engine.ClassifyRecords(records, flagIndustry) {
			cls := row.Classification
			line := fmt.Sprintf("%-10s %-35s %-14s", cls.AccountCode, cls.AccountName, cls.AccountType)
			if cls.HasAdjustment() {
				line += fmt.Sprintf(" adjustment=%s (%s)", cls.AdjustmentName, cls.AdjustmentType)
			}
			fmt.Println(line)
		}

		for _, flag := range engine.DetectSuspiciousPatterns(records) {
			fmt.Printf("! %s [%s]: %s -> %s\n", flag.Pattern, flag.RiskLevel, flag.Reason, flag.RecommendedAction)
		}
		return nil
	},
}

func loadRules() (*rules.Config, error) {
	if flagRules == "" {
		return rules.Default(), nil
	}
	return rules.Load(flagRules)
}

func parseGL(path string) ([]models.GLRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ingest.NewTrialBalanceParser().Parse(f)
}

func loadAdjustments(path string) ([]calc.AdjustmentDetail, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".hjson" || ext == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return ingest.ParseAdjustmentsHJSON(data)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ingest.ParseAdjustmentsCSV(f)
}

func printView(view *normalize.NormalizedFinancialView) {
	fmt.Printf("\nEntity: %s  Period: %s\n\n", view.Entity, view.Period)

	fmt.Println("Normalized Income Statement")
	for _, line := range view.NormalizedIncomeStatement {
		fmt.Printf("  %-30s %15.2f  %6.1f%%\n", line.LineItem, line.Amount, line.PercentOfRevenue)
	}

	fmt.Printf("\nReported EBITDA:   %15.2f\n", view.ReportedEBITDA)
	fmt.Printf("Adjusted EBITDA:   %15.2f\n", view.AdjustedEBITDA)
	fmt.Printf("Normalized EBITDA: %15.2f\n", view.NormalizedEBITDA)

	if len(view.AdjustmentImpactAnalysis) > 0 {
		fmt.Println("\nAdjustment Impact")
		for _, impact := range view.AdjustmentImpactAnalysis {
			fmt.Printf("  %-35s %-12s %12.2f -> EBITDA %+.2f\n",
				impact.AdjustmentName, impact.Category, impact.Amount, impact.EBITDAImpact)
		}
	}

	for _, flag := range view.SuspiciousPatterns {
		fmt.Printf("\n! %s [%s]: %s\n", flag.Pattern, flag.RiskLevel, flag.Reason)
	}
}

func printMetrics(engine *metrics.Engine) {
	rep := engine.FullReport()
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return
	}
	fmt.Printf("\nMetrics:\n%s\n", out)
}

func writeMemo(view *normalize.NormalizedFinancialView, path string) error {
	content := report.Memo(view)
	if strings.HasSuffix(path, ".html") {
		html, err := report.MemoHTML(view)
		if err != nil {
			return err
		}
		content = html
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "Path to classification rules YAML (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&flagIndustry, "industry", "", "Industry for classification context (e.g. saas_tech)")

	viewCmd.Flags().StringVar(&flagEntity, "entity", "Company", "Entity name for the view")
	viewCmd.Flags().StringVar(&flagAdjustments, "adjustments", "", "Adjustments file (csv or hjson)")
	viewCmd.Flags().StringVar(&flagPeriodEnd, "period-end", "", "Period end date")
	viewCmd.Flags().StringVar(&flagMemoOut, "memo", "", "Write adjustment memo to this path (.md or .html)")
	viewCmd.Flags().Float64Var(&flagEV, "enterprise-value", 0, "Enterprise value for EV multiples")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(classifyCmd)
}

func main() {
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
