package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sharpframes/internal/config"
	"sharpframes/internal/pipeline"
	"sharpframes/internal/selection"
)

func newPreviewCommand(cmdCtx *commandContext) *cobra.Command {
	var selFlags selectionFlags

	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Score the input and report selection counts without saving",
		Long: `Extract and score the input once, then report how many frames each
selection method would keep with the current parameters. Nothing is
saved and staging is cleaned up afterwards.`,
		Args: cobra.ExactArgs(1),
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

			input, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orch, err := pipeline.New(cfg, pipeline.WithLogger(logger))
			if err != nil {
				return err
			}
			defer orch.Close(ctx)

			if err := orch.ExtractAndAnalyze(ctx, input); err != nil {
				return err
			}

			stats, err := orch.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Input", "Value"},
				[][]string{
					{"Candidates", formatCount(stats.Total)},
					{"Min score", fmt.Sprintf("%.1f", stats.MinScore)},
					{"Max score", fmt.Sprintf("%.1f", stats.MaxScore)},
					{"Mean score", fmt.Sprintf("%.1f", stats.Mean)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))

			strategies := []selection.Strategy{
				selection.BestN{NumFrames: selFlags.numFrames, MinBuffer: selFlags.minBuffer},
				selection.Batched{BatchSize: selFlags.batchSize, BatchBuffer: selFlags.batchBuffer},
				selection.OutlierRemoval{WindowSize: selFlags.windowSize, Sensitivity: selFlags.sensitivity},
			}
			rows := make([][]string, 0, len(strategies))
			for _, strategy := range strategies {
				preview, err := orch.Preview(strategy)
				if err != nil {
					rows = append(rows, []string{methodLabel(strategy.Method()), "error: " + err.Error()})
					continue
				}
				rows = append(rows, []string{methodLabel(preview.Method), formatCount(preview.Count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Method", "Would Select"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	selFlags.register(cmd)
	return cmd
}
