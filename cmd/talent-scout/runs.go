// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/talent-scout/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, show, search and export saved runs",
	Long: `Runs reads the SQLite run store written by "talent-scout scout". Run IDs
may be abbreviated to any unique prefix.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := s.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, runs)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs found.")
			return nil
		}
		fmt.Fprintf(out, "%-8s  %-20s  %-6s  %-10s  %s\n", "ID", "Started", "Rounds", "Candidates", "Query")
		fmt.Fprintln(out, strings.Repeat("-", 90))
		for _, r := range runs {
			fmt.Fprintf(out, "%-8s  %-20s  %-6d  %-10d  %s\n",
				shortID(r.ID), r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Rounds, r.Candidates, clip(r.Query, 60))
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the report of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.LoadRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, r)
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.Report)
		return nil
	},
}

var runsSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search over saved candidates",
	Long: `Search matches candidate names, roles, research focus and evidence notes
across all saved runs using SQLite FTS5 query syntax, e.g. "name:doe" or
"toronto AND simulation".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		hits, err := s.SearchCandidates(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, hits)
		}

		out := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(out, "No candidates found.")
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(out, "%-8s  #%-2d  %-28s  %s\n", shortID(h.RunID), h.Rank, clip(h.Card.Name, 28), clip(h.Card.CurrentRoleAndAffiliation, 60))
		}
		return nil
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write a saved run to YAML or JSON under the store directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		format, _ := cmd.Flags().GetString("format")
		var path string
		switch format {
		case "yaml", "yml":
			path, err = s.ExportYAML(cmd.Context(), args[0])
		case "json":
			path, err = s.ExportJSON(cmd.Context(), args[0])
		default:
			return fmt.Errorf("unknown export format %q (want yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsShowCmd, runsSearchCmd} {
		c.Flags().Bool("json", false, "output as JSON")
	}
	runsListCmd.Flags().Int("limit", 0, "maximum runs to list (default from config)")
	runsSearchCmd.Flags().Int("limit", 0, "maximum candidates to return (default from config)")
	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsSearchCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*store.Store, error) {
	return store.NewStore(cfg.Store)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
