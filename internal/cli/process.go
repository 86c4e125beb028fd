package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/letterscan/internal/ingest"
	"github.com/joseph-ayodele/letterscan/internal/pipeline"
)

func newProcessCommand(g *globalFlags) *cobra.Command {
	var (
		concurrency int
		skipHidden  bool
	)
	cmd := &cobra.Command{
		Use:   "process <file|dir>...",
		Short: "Process letters and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config(cmd)
			a, logger, err := g.build(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := runSources(cmd.Context(), a.Files, args, concurrency, skipHidden, logger)
			if encErr := writeResults(cmd, results); encErr != nil {
				return encErr
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 2, "sources processed in parallel")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dot-files when walking directories")
	return cmd
}

func writeResults(cmd *cobra.Command, results []pipeline.Result) error {
	if results == nil {
		results = []pipeline.Result{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// expandArgs turns the arguments into processable paths. A page directory
// (page_<n>.txt files) counts as one source; other directories are walked
// for supported files.
func expandArgs(args []string, skipHidden bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if !fi.IsDir() || ingest.IsPageDir(arg) {
			out = append(out, arg)
			continue
		}
		sources, _, err := ingest.WalkSources(arg, skipHidden)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
		pageDirs := make(map[string]bool)
		for _, s := range sources {
			if s.Err != "" {
				continue
			}
			dir := filepath.Dir(s.Path)
			if seen, ok := pageDirs[dir]; ok || ingest.IsPageDir(dir) {
				if !seen {
					pageDirs[dir] = true
					out = append(out, dir)
				}
				continue
			}
			out = append(out, s.Path)
		}
	}
	return out, nil
}

// runSources processes every source, keeping going past failures. Results
// are flattened in argument order; the error reports how many sources
// failed.
func runSources(ctx context.Context, files *pipeline.FileRunner, args []string, concurrency int, skipHidden bool, logger *slog.Logger) ([]pipeline.Result, error) {
	paths, err := expandArgs(args, skipHidden)
	if err != nil {
		return nil, err
	}

	perSource := make([][]pipeline.Result, len(paths))
	var (
		mu     sync.Mutex
		failed int
	)
	var eg errgroup.Group
	if concurrency > 0 {
		eg.SetLimit(concurrency)
	}
	for i, p := range paths {
		eg.Go(func() error {
			res, err := files.Run(ctx, p, "")
			if err != nil {
				logger.Error("cli.source.failed", "path", p, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			perSource[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	var out []pipeline.Result
	for _, res := range perSource {
		out = append(out, res...)
	}
	if failed > 0 {
		return out, fmt.Errorf("%d of %d sources failed", failed, len(paths))
	}
	return out, nil
}
