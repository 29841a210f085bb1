package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sharpframes/internal/preflight"
	"sharpframes/internal/staging"
)

func newCheckCommand(cmdCtx *commandContext) *cobra.Command {
	var cleanStale bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run environment preflight checks and inspect staging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(ctx, cfg, "")
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "OK"
				if !result.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))

			if cleanStale {
				maxAge := time.Duration(cfg.Cleanup.StaleMaxAgeHours) * time.Hour
				swept := staging.CleanStale(ctx, cfg.Paths.StagingDir, maxAge, logger)
				fmt.Fprintf(out, "Removed %d stale staging directories\n", len(swept.Removed))
				for _, sweepErr := range swept.Errors {
					fmt.Fprintf(out, "  failed to remove %s: %v\n", sweepErr.Path, sweepErr.Error)
				}
			}

			dirs, err := staging.ListDirectories(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}
			if len(dirs) == 0 {
				fmt.Fprintln(out, "Staging is empty")
			} else {
				dirRows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					dirRows = append(dirRows, []string{
						dir.Name,
						formatSize(dir.Size),
						dir.ModTime.Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Run Directory", "Size", "Modified"}, dirRows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			}

			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more preflight checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanStale, "clean-stale", false, "Remove staging directories older than the configured max age")
	return cmd
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
