package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/claude/healthlens/internal/analysis"
	"github.com/claude/healthlens/internal/config"
	"github.com/claude/healthlens/internal/ingest/csvfile"
	"github.com/claude/healthlens/internal/insights"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv|->",
	Short: "Analyze a CSV export locally",
	Long: `Run the analysis pipeline on a CSV export without a server.

Both long format (user_id,date,metric,value) and wide format
(date,heart_rate,steps,...) are accepted. Use "-" to read stdin.

Examples:
  healthlens-cli analyze export.csv
  healthlens-cli analyze --json export.csv | jq .report.health_score`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	analyzer, err := analysis.New(cfg.Analysis)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	table, err := csvfile.Parse(io.LimitReader(in, csvfile.MaxSize))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	res, err := analyzer.Analyze(table)
	if err != nil {
		return err
	}
	report := insights.NewEngine().Generate(res)

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Analysis *analysis.Result `json:"analysis"`
			Report   insights.Report  `json:"report"`
		}{res, report})
	}
	printReport(out, res, report)
	return nil
}

func printReport(w io.Writer, res *analysis.Result, report insights.Report) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s\n\n", cyan("=== HealthLens Report ==="))
	fmt.Fprintf(w, "  Records analyzed: %d (dropped %d)\n", res.Stats.RecordsAnalyzed, res.Stats.RecordsDropped)
	fmt.Fprintf(w, "  Health score:     %s\n", scoreColor(report.HealthScore)(fmt.Sprintf("%.0f", report.HealthScore)))

	fmt.Fprintf(w, "\n%s\n", yellow("Summary (recent averages):"))
	if len(res.Summary) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("no data"))
	}
	keys := make([]string, 0, len(res.Summary))
	for k := range res.Summary {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-18s %.2f\n", k, res.Summary[k])
	}

	fmt.Fprintf(w, "\n%s\n", yellow("Trends:"))
	if len(res.Trends) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("not enough data"))
	}
	for _, t := range res.Trends {
		arrow := gray("→")
		switch t.Direction {
		case analysis.DirectionUp:
			arrow = green("↑")
		case analysis.DirectionDown:
			arrow = red("↓")
		}
		fmt.Fprintf(w, "  %s %-18s %+.1f%%\n", arrow, t.Metric, t.ChangePercent)
	}

	fmt.Fprintf(w, "\n%s\n", yellow("Anomalies:"))
	if len(res.Anomalies) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("none"))
	}
	for _, a := range res.Anomalies {
		fmt.Fprintf(w, "  %s %s %s=%.2f %s\n", red("!"), a.Date, a.Metric, a.Value, gray(a.Reason))
	}

	fmt.Fprintf(w, "\n%s\n", yellow("Insights:"))
	for _, in := range report.Insights {
		sev := green(string(in.Severity))
		if in.Severity.Attention() {
			sev = red(string(in.Severity))
		}
		fmt.Fprintf(w, "  [%s] %s\n      %s\n", sev, in.Title, in.Message)
	}

	if len(report.Recommendations) > 0 {
		fmt.Fprintf(w, "\n%s\n", yellow("Recommendations:"))
		for _, r := range report.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	fmt.Fprintln(w)
}

func scoreColor(score float64) func(a ...any) string {
	switch {
	case score >= 80:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	case score >= 60:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return color.New(color.FgRed, color.Bold).SprintFunc()
}
