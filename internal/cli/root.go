// Package cli implements the letters command: batch processing, evaluation
// against ground truth and small admin tasks for the taxonomy, ground-truth
// database and lexicon.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/letterscan/internal/app"
	"github.com/joseph-ayodele/letterscan/internal/common"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	taxonomyFile  string
	lexicon       string
	requireFormat bool
	verbose       bool
}

// NewRootCommand builds the letters command tree.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "letters",
		Short: "Classify scanned institutional letters and extract their fields",
		Long: `letters runs the letter pipeline locally: it OCRs PDFs and images (or
reads text dumps and page_<n>.txt directories), splits them into logical
letters, classifies each one and extracts its fields.

Configuration is read from the same environment variables as letterd;
flags override them.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.taxonomyFile, "taxonomy", "", "taxonomy YAML merged over the built-in one (env TAXONOMY_FILE)")
	pf.StringVar(&g.lexicon, "lexicon", "", "synonym lexicon: SQLite database or .yaml map (env LEXICON_DB)")
	pf.BoolVar(&g.requireFormat, "require-format", false, "report letters without the institution letterhead as Unknown")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newProcessCommand(g),
		newEvaluateCommand(g),
		newTaxonomyCommand(g),
		newTruthCommand(g),
		newLexiconCommand(g),
	)
	return rootCmd
}

// logger writes text logs to the command's stderr.
func (g *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// config loads the environment configuration and applies flag overrides.
func (g *globalFlags) config(cmd *cobra.Command) *common.Config {
	cfg := common.LoadConfig()
	if g.taxonomyFile != "" {
		cfg.Taxonomy.File = g.taxonomyFile
	}
	if g.lexicon != "" {
		cfg.Lexicon.DBPath = g.lexicon
	}
	if cmd.Flags().Changed("require-format") {
		cfg.Taxonomy.RequireFormat = g.requireFormat
	}
	return cfg
}

func (g *globalFlags) build(ctx context.Context, cmd *cobra.Command, cfg *common.Config) (*app.App, *slog.Logger, error) {
	logger := g.logger(cmd)
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
