package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sproutsell/agricredit/internal/scoring"
	"github.com/sproutsell/agricredit/pkg/config"
	"github.com/sproutsell/agricredit/pkg/httputil"
	"github.com/sproutsell/agricredit/pkg/logger"
)

// scoreCmd scores a single assessment from a JSON file. Useful for
// calibrating the scorer without a database or running server.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score an assessment file",
	Long: `Scores a single farmer assessment from a JSON file and prints the
resulting credit analysis.

The input file uses the same shape as the credit-analysis request body:

  {
    "farmData": {"farmSizeHectares": 5, "yearsExperience": 3},
    "financialData": {"annualRevenue": 8000}
  }

Example:
  go run ./cmd/agricredit score --file assessment.json`,
	RunE: runScore,
}

var scoreFile string

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreFile, "file", "", "assessment JSON file (required)")
	scoreCmd.MarkFlagRequired("file")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	data, err := os.ReadFile(scoreFile)
	if err != nil {
		return fmt.Errorf("read assessment file: %w", err)
	}

	var raw scoring.RawAssessment
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse assessment file: %w", err)
	}

	heuristic := scoring.NewHeuristicScorer(scoring.DefaultHeuristicConfig(), log)
	narrative := scoring.NewNarrativeScorer(cfg.Narrative,
		httputil.NewWithTimeout(log, cfg.Narrative.Timeout).DisableRetry(), log)
	var primary scoring.Scorer
	if narrative.Configured() {
		primary = narrative
	}
	scorer := scoring.NewFallbackScorer(primary, heuristic, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analysis, err := scorer.Analyze(ctx, scoring.Normalize(raw))
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	fmt.Println(string(out))
	return nil
}
