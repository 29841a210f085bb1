package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed parameters, rejected before any work begins.
	ErrValidation = errors.New("validation error")
	// ErrScoring marks per-frame scoring failures and exceeded failure thresholds.
	ErrScoring = errors.New("scoring error")
	// ErrResource marks staging resource creation or cleanup failures.
	ErrResource = errors.New("resource error")
	// ErrPartialFailure marks runs where some grouped sources failed while others succeeded.
	ErrPartialFailure = errors.New("partial failure")
	// ErrCancelled marks user-initiated cancellation.
	ErrCancelled = errors.New("cancelled")
	// ErrExternalTool marks failures of external binaries (ffmpeg, ffprobe).
	ErrExternalTool = errors.New("external tool error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTerminalFailure reports whether err should abort a run immediately rather
// than being accumulated for aggregate reporting.
func IsTerminalFailure(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrResource) || errors.Is(err, ErrCancelled)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
