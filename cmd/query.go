package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/explorer"
	"github.com/xkilldash9x/phishguard/internal/httpapi"
	"github.com/xkilldash9x/phishguard/internal/observability"
	"github.com/xkilldash9x/phishguard/internal/records"
	"github.com/xkilldash9x/phishguard/internal/store"
)

// openSeedSource connects the seed reader and returns its cleanup. Tests replace it.
var openSeedSource = func(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (records.SeedSource, func(), error) {
	pool, err := store.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}

// queryFlags maps each CLI flag onto the API query parameter it stands for.
var queryFlags = map[string]string{
	"search":    "search",
	"status":    "status",
	"type":      "type",
	"min":       "min",
	"max":       "max",
	"page":      "page",
	"page-size": "page_size",
}

func newQueryCmd() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Filter and page the seeded threat history",
		Long: `Loads the seed set from the database and runs one explorer query over it.
The flags mirror the query parameters of GET /api/v1/threats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			params := url.Values{}
			for flag, param := range queryFlags {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				if flag == "type" {
					types, _ := cmd.Flags().GetStringArray("type")
					params[param] = types
					continue
				}
				params.Set(param, cmd.Flags().Lookup(flag).Value.String())
			}
			return runQuery(ctx, cfg, observability.GetLogger(), params, cmd.OutOrStdout())
		},
	}

	flags := queryCmd.Flags()
	flags.StringP("search", "s", "", "case-insensitive URL substring")
	flags.String("status", "all", "verdict filter: all, phishing or safe")
	flags.StringArrayP("type", "t", nil, "threat type or triggered rule (repeatable)")
	flags.Float64("min", schemas.ConfidenceMin, "minimum confidence percentage")
	flags.Float64("max", schemas.ConfidenceMax, "maximum confidence percentage")
	flags.IntP("page", "p", 1, "1-based page number")
	flags.Int("page-size", 0, "records per page (default explorer.default_page_size)")

	return queryCmd
}

func runQuery(ctx context.Context, cfg config.Interface, logger *zap.Logger, params url.Values, out io.Writer) error {
	q, err := httpapi.ParseQuery(params, cfg.Explorer())
	if err != nil {
		return err
	}

	dbCfg := cfg.Database()
	if dbCfg.URL == "" {
		return fmt.Errorf("database URL is not configured (PHISHGUARD_DATABASE_URL)")
	}

	seedCtx := ctx
	if timeout := cfg.Seed().Timeout; timeout > 0 {
		var cancel context.CancelFunc
		seedCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	src, cleanup, err := openSeedSource(seedCtx, dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open the seed database: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	history := records.New(logger)
	if _, err := history.LoadFrom(seedCtx, src, cfg.Seed().Limit); err != nil {
		return err
	}

	page, err := history.Query(q.Criteria, q.Page, q.PageSize)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tURL\tVERDICT\tTYPE\tCONFIDENCE\tTIMESTAMP")
	for _, rec := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s%%\t%s\n",
			rec.ID, rec.URL, rec.Verdict(), explorer.ResolveType(rec),
			strconv.FormatFloat(explorer.Percent(rec.ConfidenceScore), 'f', -1, 64),
			rec.Timestamp.Format("2006-01-02 15:04:05"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	switch {
	case page.TotalCount == 0:
		_, err = fmt.Fprintln(out, "No matching threat records.")
	case page.ShowControls():
		_, err = fmt.Fprintf(out, "Showing %d to %d of %d results (page %d of %d)\n",
			page.StartItem, page.EndItem, page.TotalCount, page.Page, page.TotalPages)
	default:
		_, err = fmt.Fprintf(out, "%d results\n", page.TotalCount)
	}
	return err
}
