package cmd

import (
	"context"
	"fmt"
	"io"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/explorer"
	"github.com/xkilldash9x/phishguard/internal/observability"
)

func newAnalyzeCmd() *cobra.Command {
	var model string

	analyzeCmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Classify a single URL and print the threat record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("model") {
				cfg.SetOracleModel(model)
			}
			return runAnalyze(ctx, cfg, observability.GetLogger(), args[0], cmd.OutOrStdout())
		},
	}

	analyzeCmd.Flags().StringVarP(&model, "model", "m", "", "oracle model (overrides oracle.model)")
	return analyzeCmd
}

// analyzeOutput is the record plus its resolved display type.
type analyzeOutput struct {
	Type    string                `json:"type"`
	Verdict string                `json:"verdict"`
	Record  *schemas.ThreatRecord `json:"record"`
}

// runAnalyze classifies one URL without seeding the history.
func runAnalyze(ctx context.Context, cfg config.Interface, logger *zap.Logger, url string, out io.Writer) error {
	cfg.SetSeedEnabled(false)

	components, err := newComponents(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	rec, err := components.Analyzer.Analyze(ctx, url)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(analyzeOutput{
		Type:    explorer.ResolveType(*rec),
		Verdict: rec.Verdict(),
		Record:  rec,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize threat record: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
