// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/talent-scout/internal/advisory"
	"github.com/pdiddy/talent-scout/internal/plan"
	"github.com/pdiddy/talent-scout/internal/query"
	"github.com/pdiddy/talent-scout/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan <query...>",
	Short: "Show how a query would be searched without running it",
	Long: `Plan interprets the query, builds the first round's search terms and
routes each term to search engines, then prints the result. Nothing is
searched or fetched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Bool("json", false, "print the parsed query and plan as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	model := advisory.NewFromConfig(cfg.AI, logger.Named("advisory"))

	spec, err := query.NewInterpreter(model, logger.Named("query")).Interpret(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	st := types.NewResearchState("plan", strings.Join(args, " "))
	st.Apply(types.Diff{Spec: &spec})
	st.Apply(plan.NewPlanner(query.Aliases, cfg.Search.MaxTerms, logger.Named("plan")).Plan(st))
	routes := plan.NewRouter(model, cfg.Search, logger.Named("route")).Route(ctx, st.Plan.SearchTerms)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Spec  types.QuerySpec     `json:"spec"`
			Terms []string            `json:"search_terms"`
			Route map[string][]string `json:"engines"`
		}{spec, st.Plan.SearchTerms, routes})
	}

	fmt.Fprintf(out, "top_n:     %d\n", spec.TargetCount)
	fmt.Fprintf(out, "years:     %v\n", spec.Years)
	fmt.Fprintf(out, "venues:    %s\n", strings.Join(spec.Venues, ", "))
	fmt.Fprintf(out, "keywords:  %s\n", strings.Join(spec.Keywords, ", "))
	fmt.Fprintf(out, "student:   %v (%s)\n", spec.MustBeCurrentStudent, strings.Join(spec.DegreeLevels, ", "))
	fmt.Fprintf(out, "\n%d search terms:\n", len(st.Plan.SearchTerms))
	for i, t := range st.Plan.SearchTerms {
		fmt.Fprintf(out, "%3d. %-70s  %s\n", i+1, t, strings.Join(routes[t], ", "))
	}
	return nil
}
