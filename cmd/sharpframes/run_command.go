package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sharpframes/internal/config"
	"sharpframes/internal/history"
	"sharpframes/internal/pipeline"
	"sharpframes/internal/selection"
	"sharpframes/internal/services"
	"sharpframes/internal/staging"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		selFlags selectionFlags
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "run <input> <output-dir>",
		Short: "Extract, score, and save the sharpest frames",
		Long: `Extract frames from a video, a directory of videos, or a directory of
images, score them for sharpness, and save the selected subset with a
JSON manifest describing the run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}
			selFlags.merge(cfg)
			strategy, err := selFlags.strategy()
			if err != nil {
				return err
			}

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			outputDir, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			staleAge := time.Duration(cfg.Cleanup.StaleMaxAgeHours) * time.Hour
			staging.CleanStale(ctx, cfg.Paths.StagingDir, staleAge, logger)

			var opts []pipeline.Option
			opts = append(opts, pipeline.WithLogger(logger))
			if cfg.History.Enabled {
				store, err := history.Open(cfg.Paths.HistoryDB)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, pipeline.WithHistory(store))
			}

			orch, err := pipeline.New(cfg, opts...)
			if err != nil {
				return err
			}
			defer orch.Close(ctx)

			if err := orch.ExtractAndAnalyze(ctx, input); err != nil {
				return err
			}

			strategy, proceed, err := confirmSelection(cmd, orch, strategy, &selFlags, yes)
			if err != nil {
				return err
			}
			if !proceed {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted; no frames saved.")
				return nil
			}

			result, err := orch.SelectAndSave(ctx, strategy, outputDir)
			if err != nil && !errors.Is(err, services.ErrPartialFailure) {
				return err
			}
			printRunResult(cmd, result)
			return err
		},
	}

	selFlags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the interactive confirmation")
	return cmd
}

// confirmSelection shows the preview and, on a terminal, lets the user
// tune parameters before committing. Previews are cheap: the scored
// sequence is cached, so each round trip only recounts.
func confirmSelection(cmd *cobra.Command, orch *pipeline.Orchestrator, strategy selection.Strategy, selFlags *selectionFlags, yes bool) (selection.Strategy, bool, error) {
	out := cmd.OutOrStdout()

	printPreview(cmd, orch, strategy)
	if yes || !stdinIsTerminal() {
		return strategy, true, nil
	}

	reader := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "Proceed? [Y/n, or key=value to adjust, e.g. num-frames=100]: ")
		if !reader.Scan() {
			return strategy, true, nil
		}
		answer := reader.Text()
		switch answer {
		case "", "y", "Y", "yes":
			return strategy, true, nil
		case "n", "N", "no":
			return strategy, false, nil
		default:
			if err := selFlags.apply(answer); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			next, err := selFlags.strategy()
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			strategy = next
			printPreview(cmd, orch, strategy)
		}
	}
}

func printPreview(cmd *cobra.Command, orch *pipeline.Orchestrator, strategy selection.Strategy) {
	out := cmd.OutOrStdout()

	stats, err := orch.Stats()
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}
	preview, err := orch.Preview(strategy)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}

	rows := [][]string{
		{"Candidates", formatCount(stats.Total)},
		{"Score range", fmt.Sprintf("%.1f - %.1f", stats.MinScore, stats.MaxScore)},
		{"Method", methodLabel(preview.Method)},
		{"Would select", formatCount(preview.Count)},
	}
	keys := make([]string, 0, len(preview.Params))
	for key := range preview.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(preview.Params[key])})
	}
	fmt.Fprintln(out, renderTable([]string{"Preview", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func printRunResult(cmd *cobra.Command, result *pipeline.RunResult) {
	if result == nil {
		return
	}
	out := cmd.OutOrStdout()

	rows := [][]string{
		{"Run", result.RunID},
		{"Outcome", string(result.Outcome)},
		{"Saved frames", strconv.Itoa(len(result.Saved))},
		{"Candidates", strconv.Itoa(result.TotalCandidates)},
		{"Output", result.OutputDir},
		{"Manifest", result.ManifestPath},
	}
	fmt.Fprintln(out, renderTable([]string{"Result", "Value"}, rows, nil))

	if len(result.SourceFailures) > 0 {
		failureRows := make([][]string, 0, len(result.SourceFailures))
		for _, failure := range result.SourceFailures {
			failureRows = append(failureRows, []string{failure.Source, failure.Err.Error()})
		}
		fmt.Fprintln(out, renderTable([]string{"Failed Source", "Error"}, failureRows, nil))
	}
	if result.CleanupErr != nil {
		fmt.Fprintf(out, "warning: staging cleanup unresolved: %v\n", result.CleanupErr)
	}
}
