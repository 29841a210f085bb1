package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validateCleanup(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.FPS < 1 || c.Extraction.FPS > 60 {
		return fmt.Errorf("extraction.fps must be between 1 and 60, got %d", c.Extraction.FPS)
	}
	switch c.Extraction.OutputFormat {
	case "jpg", "png":
	default:
		return fmt.Errorf("extraction.output_format must be jpg or png, got %q", c.Extraction.OutputFormat)
	}
	if c.Extraction.Width < 0 {
		return errors.New("extraction.width must not be negative")
	}
	if c.Extraction.JPEGQuality < 1 || c.Extraction.JPEGQuality > 31 {
		return fmt.Errorf("extraction.jpeg_quality must be between 1 and 31, got %d", c.Extraction.JPEGQuality)
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.MaxWorkers < 1 {
		return fmt.Errorf("scoring.max_workers must be at least 1, got %d", c.Scoring.MaxWorkers)
	}
	if c.Scoring.FailureThreshold < 0 || c.Scoring.FailureThreshold > 1 {
		return fmt.Errorf("scoring.failure_threshold must be between 0 and 1, got %g", c.Scoring.FailureThreshold)
	}
	return nil
}

func (c *Config) validateSelection() error {
	switch c.Selection.Method {
	case "best-n", "batched", "outlier-removal":
	default:
		return fmt.Errorf("selection.method must be best-n, batched, or outlier-removal, got %q", c.Selection.Method)
	}
	if c.Selection.NumFrames < 0 {
		return errors.New("selection.num_frames must not be negative")
	}
	if c.Selection.MinBuffer < 0 {
		return errors.New("selection.min_buffer must not be negative")
	}
	if c.Selection.BatchSize < 1 {
		return errors.New("selection.batch_size must be at least 1")
	}
	if c.Selection.BatchBuffer < 0 {
		return errors.New("selection.batch_buffer must not be negative")
	}
	if c.Selection.WindowSize < 1 || c.Selection.WindowSize%2 == 0 {
		return fmt.Errorf("selection.window_size must be an odd number >= 1, got %d", c.Selection.WindowSize)
	}
	if c.Selection.Sensitivity < 0 || c.Selection.Sensitivity > 100 {
		return fmt.Errorf("selection.sensitivity must be between 0 and 100, got %d", c.Selection.Sensitivity)
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.RemoveRetries < 1 {
		return errors.New("cleanup.remove_retries must be at least 1")
	}
	if c.Cleanup.RemoveBackoffMS < 0 {
		return errors.New("cleanup.remove_backoff_ms must not be negative")
	}
	if c.Cleanup.StaleMaxAgeHours < 1 {
		return errors.New("cleanup.stale_max_age_hours must be at least 1")
	}
	return nil
}
