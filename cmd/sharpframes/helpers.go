package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sharpframes/internal/config"
	"sharpframes/internal/selection"
)

var (
	titleCaser   = cases.Title(language.English)
	countPrinter = message.NewPrinter(language.English)
)

// methodLabel renders a method tag for human output: "best-n" -> "Best N".
func methodLabel(method selection.Method) string {
	return titleCaser.String(strings.ReplaceAll(string(method), "-", " "))
}

// formatCount renders a frame count with thousands separators.
func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// selectionFlags carries the per-command selection parameter overrides.
// Values not set on the command line fall back to the configuration.
type selectionFlags struct {
	method      string
	numFrames   int
	minBuffer   int
	batchSize   int
	batchBuffer int
	windowSize  int
	sensitivity int
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.method, "method", "", "Selection method: best-n, batched, or outlier-removal")
	cmd.Flags().IntVar(&f.numFrames, "num-frames", -1, "Number of frames to select (best-n)")
	cmd.Flags().IntVar(&f.minBuffer, "min-buffer", -1, "Minimum index gap between selected frames (best-n)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", -1, "Frames per batch (batched)")
	cmd.Flags().IntVar(&f.batchBuffer, "batch-buffer", -1, "Frames skipped between batches (batched)")
	cmd.Flags().IntVar(&f.windowSize, "window-size", -1, "Neighborhood size, odd (outlier-removal)")
	cmd.Flags().IntVar(&f.sensitivity, "sensitivity", -1, "Removal aggressiveness 0-100 (outlier-removal)")
}

func (f *selectionFlags) merge(cfg *config.Config) {
	if strings.TrimSpace(f.method) == "" {
		f.method = cfg.Selection.Method
	}
	if f.numFrames < 0 {
		f.numFrames = cfg.Selection.NumFrames
	}
	if f.minBuffer < 0 {
		f.minBuffer = cfg.Selection.MinBuffer
	}
	if f.batchSize < 0 {
		f.batchSize = cfg.Selection.BatchSize
	}
	if f.batchBuffer < 0 {
		f.batchBuffer = cfg.Selection.BatchBuffer
	}
	if f.windowSize < 0 {
		f.windowSize = cfg.Selection.WindowSize
	}
	if f.sensitivity < 0 {
		f.sensitivity = cfg.Selection.Sensitivity
	}
}

func (f *selectionFlags) strategy() (selection.Strategy, error) {
	return selection.NewStrategy(f.method, selection.Params{
		NumFrames:   f.numFrames,
		MinBuffer:   f.minBuffer,
		BatchSize:   f.batchSize,
		BatchBuffer: f.batchBuffer,
		WindowSize:  f.windowSize,
		Sensitivity: f.sensitivity,
	})
}

// apply updates one parameter from a key=value token typed in the
// interactive loop.
func (f *selectionFlags) apply(token string) error {
	key, value, ok := strings.Cut(token, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", token)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	if key == "method" {
		f.method = value
		return nil
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return fmt.Errorf("parameter %s needs an integer, got %q", key, value)
	}
	switch key {
	case "num-frames":
		f.numFrames = n
	case "min-buffer":
		f.minBuffer = n
	case "batch-size":
		f.batchSize = n
	case "batch-buffer":
		f.batchBuffer = n
	case "window-size":
		f.windowSize = n
	case "sensitivity":
		f.sensitivity = n
	default:
		return fmt.Errorf("unknown parameter %q", key)
	}
	return nil
}
