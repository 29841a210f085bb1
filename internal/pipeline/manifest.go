package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sharpframes/internal/extraction"
	"sharpframes/internal/selection"
	"sharpframes/internal/services"
)

// Outcome classifies how a completed run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomePartial   Outcome = "partial"
)

// SavedFrame describes one frame written to the output directory.
type SavedFrame struct {
	GlobalIndex    int     `json:"globalIndex"`
	SharpnessScore float64 `json:"sharpnessScore"`
	OutputName     string  `json:"outputName"`
	SourceGroup    string  `json:"sourceGroup,omitempty"`
}

// RunResult is what a finished select-and-save hands back to the caller.
type RunResult struct {
	RunID           string
	OutputDir       string
	ManifestPath    string
	Saved           []SavedFrame
	TotalCandidates int
	Outcome         Outcome
	SourceFailures  []extraction.SourceFailure
	CleanupErr      error
}

// Manifest is the JSON record written next to the saved frames.
type Manifest struct {
	RunID           string         `json:"runId"`
	Input           ManifestInput  `json:"input"`
	Method          string         `json:"method"`
	Params          map[string]int `json:"params"`
	TotalCandidates int            `json:"totalCandidates"`
	SelectedCount   int            `json:"selectedCount"`
	Frames          []SavedFrame   `json:"frames"`
	FailedSources   []string       `json:"failedSources,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// ManifestInput describes what the run consumed.
type ManifestInput struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

const manifestName = "selection.json"

func (o *Orchestrator) writeManifest(result *RunResult, strategy selection.Strategy) (string, error) {
	o.mu.Lock()
	manifest := Manifest{
		RunID: o.runID,
		Input: ManifestInput{
			Path:     o.inputPath,
			Kind:     string(o.inputType),
			Metadata: o.result.Metadata,
		},
		Method:          string(strategy.Method()),
		Params:          strategy.ParamsMap(),
		TotalCandidates: result.TotalCandidates,
		SelectedCount:   len(result.Saved),
		Frames:          result.Saved,
		CreatedAt:       time.Now().UTC(),
	}
	for _, failure := range o.sourceFailures {
		manifest.FailedSources = append(manifest.FailedSources, failure.Source)
	}
	o.mu.Unlock()

	path := filepath.Join(result.OutputDir, manifestName)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrResource, "pipeline", "manifest", "encode manifest", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrResource, "pipeline", "manifest",
			fmt.Sprintf("write manifest %s", path), err)
	}
	return path, nil
}
