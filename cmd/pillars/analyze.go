package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pillars/internal/advisor"
	"pillars/internal/chart"
	"pillars/internal/reaction"
	"pillars/internal/report"
	"pillars/internal/symbol"
)

var (
	ganzhi       [4]string
	outputFormat string
	showAll      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [chart.json]",
	Short: "Detect and resolve the relationships in one chart",
	Long: `Reads a chart from a JSON file ("-" for stdin) or from the --year,
--month, --day and --hour flags, and prints the resolved reactions.

Example:
  pillars analyze --year 甲子 --month 己丑 --day 丙寅 --hour 辛卯`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadChart(cmd, args)
		if err != nil {
			return err
		}
		r, err := newAnalyzer().Analyze(c)
		if err != nil {
			return err
		}
		logger.Debug("Analysed chart", zap.String("chart", c.Key()), zap.Int("reactions", len(r.Reactions)))
		return render(cmd.OutOrStdout(), c, r)
	},
}

var adviseCmd = &cobra.Command{
	Use:   "advise [chart.json]",
	Short: "Analyse a chart and ask the configured LLM for a reading",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Advisor.APIKey == "" {
			return errors.New("advisor API key not configured (set PILLARS_API_KEY)")
		}
		c, err := loadChart(cmd, args)
		if err != nil {
			return err
		}
		r, err := newAnalyzer().Analyze(c)
		if err != nil {
			return err
		}

		adv, err := advisor.NewAdvisor(cmd.Context(), advisor.Options{
			Provider: cfg.Advisor.Provider,
			APIKey:   cfg.Advisor.APIKey,
			Model:    cfg.Advisor.Model,
			BaseURL:  cfg.Advisor.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to create advisor: %w", err)
		}
		logger.Info("Requesting reading", zap.String("provider", cfg.Advisor.Provider), zap.String("model", cfg.Advisor.Model))
		text, err := adv.Advise(cmd.Context(), c, r)
		if err != nil {
			return fmt.Errorf("advisor request failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, report.Markdown(c, r, report.Options{}))
		fmt.Fprintf(out, "\n## Reading\n\n%s\n", text)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{analyzeCmd, adviseCmd} {
		for i, pos := range chart.Positions() {
			cmd.Flags().StringVar(&ganzhi[i], pos.String(), "", fmt.Sprintf("%s pillar as stem+branch, e.g. 甲子 or jia-zi", pos))
		}
	}
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown", "Output format: markdown or json")
	analyzeCmd.Flags().BoolVarP(&showAll, "all", "a", false, "Include suppressed reactions and hidden stems in markdown output")
}

// loadChart reads the chart from a file argument or the pillar flags.
func loadChart(cmd *cobra.Command, args []string) (chart.Chart, error) {
	reg := symbol.Default()
	if len(args) == 1 {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return chart.Chart{}, fmt.Errorf("failed to read chart: %w", err)
		}
		return chart.ParseJSON(reg, data)
	}

	var missing []string
	for i, pos := range chart.Positions() {
		if strings.TrimSpace(ganzhi[i]) == "" {
			missing = append(missing, "--"+pos.String())
		}
	}
	if len(missing) > 0 {
		return chart.Chart{}, fmt.Errorf("provide a chart file or all pillar flags (missing %s)", strings.Join(missing, ", "))
	}
	return chart.FromGanZhi(reg, ganzhi[0], ganzhi[1], ganzhi[2], ganzhi[3])
}

func render(w io.Writer, c chart.Chart, r reaction.Report) error {
	switch strings.ToLower(outputFormat) {
	case "markdown", "md":
		_, err := fmt.Fprint(w, report.Markdown(c, r, report.Options{IncludeSuppressed: showAll, IncludeHidden: showAll}))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
