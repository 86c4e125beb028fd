package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/letterscan/internal/app"
	"github.com/joseph-ayodele/letterscan/internal/common"
	"github.com/joseph-ayodele/letterscan/internal/groundtruth"
	"github.com/joseph-ayodele/letterscan/internal/lexicon"
	"github.com/joseph-ayodele/letterscan/internal/taxonomy"
)

func newTaxonomyCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the effective taxonomy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.LoadTaxonomy(g.config(cmd).Taxonomy.File)
			if err != nil {
				return err
			}
			data, err := taxonomy.Marshal(c.Source())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newTruthCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truth",
		Short: "Manage the ground-truth database",
	}

	var truthPath, dsn string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Copy ground-truth JSON records into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.config(cmd)
			if dsn == "" {
				dsn = cfg.GroundTruth.DSN
			}
			if truthPath == "" || dsn == "" {
				return fmt.Errorf("truth import needs --truth and --dsn (or GROUND_TRUTH_DSN)")
			}
			logger := g.logger(cmd)

			src, err := groundtruth.Load(truthPath, logger)
			if err != nil {
				return err
			}
			pg := cfg.GroundTruth
			store, err := groundtruth.OpenPostgres(cmd.Context(), groundtruth.PostgresConfig{
				DSN:             dsn,
				MaxConns:        pg.MaxConns,
				MinConns:        pg.MinConns,
				MaxConnLifetime: pg.MaxConnLifetime,
				MaxConnIdleTime: pg.MaxConnIdleTime,
				DialTimeout:     pg.DialTimeout,
			}, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), src)
			if err != nil {
				return common.WrapError(err, "import ground truth")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	}
	importCmd.Flags().StringVar(&truthPath, "truth", "", "ground-truth JSON file or directory")
	importCmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN")

	var timeout time.Duration
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the ground-truth database is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg := g.config(cmd).GroundTruth
			if dsn != "" {
				pg.DSN = dsn
			}
			if pg.DSN == "" {
				return fmt.Errorf("truth ping needs --dsn (or GROUND_TRUTH_DSN)")
			}
			store, err := groundtruth.OpenPostgres(cmd.Context(), groundtruth.PostgresConfig{
				DSN:         pg.DSN,
				MaxConns:    1,
				DialTimeout: pg.DialTimeout,
			}, g.logger(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.HealthCheck(cmd.Context(), timeout); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ground truth database OK")
			return nil
		},
	}
	pingCmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN")
	pingCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "ping timeout")

	cmd.AddCommand(importCmd, pingCmd)
	return cmd
}

func newLexiconCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage the SQLite synonym lexicon",
	}

	var rank int
	addCmd := &cobra.Command{
		Use:   "add <word> <canonical>",
		Short: "Map a word to a canonical form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.config(cmd).Lexicon.DBPath
			if path == "" {
				return fmt.Errorf("lexicon add needs --lexicon or LEXICON_DB")
			}
			d, err := lexicon.OpenSQLite(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Add(cmd.Context(), args[0], args[1], rank); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (rank %d)\n", args[0], args[1], rank)
			return nil
		},
	}
	addCmd.Flags().IntVar(&rank, "rank", 0, "lower rank wins when a word has several forms")
	cmd.AddCommand(addCmd)
	return cmd
}
