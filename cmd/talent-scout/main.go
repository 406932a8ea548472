// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the talent-scout CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/talent-scout/internal/secrets"
	"github.com/pdiddy/talent-scout/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state set up by PersistentPreRunE.
var (
	logger        = zap.NewNop()
	cfg           types.Config
	loadedSecrets secrets.Secrets
)

// rootCmd is the base command for the talent-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "talent-scout",
	Short: "Find and verify researchers for a recruiting query",
	Long: `talent-scout turns a recruiting request such as "10 PhD students who published
on multi-agent social simulation at ICLR 2025" into a verified shortlist.

Each run searches the web for paper listings, seeds an author frontier from
them, resolves every author across ORCID, OpenReview, Scholar and personal
pages, gates the profiles for eligibility and writes candidate cards whose
links all come from pages the run actually saw.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			logger.Debug("loaded secrets", zap.Strings("names", names))
		}

		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = applySecrets(c, s)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./talent-scout.yaml or ~/.config/talent-scout/talent-scout.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging in console format")
}

// newLogger returns a JSON info logger, or a console debug logger when
// verbose. Both write to stderr so stdout stays clean for results.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
