// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/pipeline"
	"github.com/pdiddy/talent-scout/internal/search"
	"github.com/pdiddy/talent-scout/internal/store"
	"github.com/pdiddy/talent-scout/pkg/types"
)

var scoutCmd = &cobra.Command{
	Use:   "scout <query...>",
	Short: "Run a talent search and print the shortlist",
	Long: `Scout runs the full pipeline for a free-text request and prints the
candidate report as Markdown, or the result as JSON with --json.

The run stops when enough verified candidates are found or after --rounds
rounds. Finished runs are saved to the run store unless --no-store is set;
use "talent-scout runs" to list and reopen them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScout,
}

func init() {
	scoutCmd.Flags().Int("rounds", 0, "maximum search rounds (default from config)")
	scoutCmd.Flags().Int("top", 0, "number of candidates wanted (default from the query)")
	scoutCmd.Flags().Bool("json", false, "print the result as JSON")
	scoutCmd.Flags().Bool("no-store", false, "do not save the run")
	rootCmd.AddCommand(scoutCmd)
}

func runScout(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	c := cfg
	if n, _ := cmd.Flags().GetInt("rounds"); n > 0 {
		c.Pipeline.MaxRounds = n
	}
	if n, _ := cmd.Flags().GetInt("top"); n > 0 {
		c.Pipeline.TargetCount = n
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller, err := pipeline.Build(ctx, c, pipeline.Backends{
		Metrics: search.NewScholarClient(c.Search),
		Model:   advisory.NewFromConfig(c.AI, logger.Named("advisory")),
	}, logger)
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := controller.Run(ctx, query)
	if err != nil {
		return err
	}

	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		if err := saveRun(res, started, c.Store); err != nil {
			logger.Warn("run not saved", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(out, res.Report)
	fmt.Fprintf(out, "\nrun %s: %d candidate(s) in %d round(s)\n", res.RunID, len(res.Cards), res.Rounds)
	return nil
}

// saveRun stores res under a fresh context so an interrupted run that
// still produced a result is kept.
func saveRun(res types.Result, started time.Time, sc types.StoreConfig) error {
	s, err := store.NewStore(sc)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.SaveRun(ctx, res, started)
}
