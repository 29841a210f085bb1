package frames

import (
	"fmt"
	"sort"
)

// InputKind reports how an ExtractionResult was produced.
type InputKind string

const (
	// KindSingleSource is a single video file or one image directory.
	KindSingleSource InputKind = "single-source"
	// KindMultiSourceGrouped is a directory of videos processed in one run.
	KindMultiSourceGrouped InputKind = "multi-source-grouped"
)

// FrameRecord describes one candidate frame.
type FrameRecord struct {
	// SourcePath locates the underlying image data. It is owned by the
	// extraction subsystem and read-only here.
	SourcePath string

	// GlobalIndex is the frame's ordinal position in the full candidate
	// sequence. Sequences handed to the engine are sorted ascending by
	// GlobalIndex with no duplicates.
	GlobalIndex int

	// SharpnessScore is a finite non-negative value once Scored is true.
	SharpnessScore float64
	Scored         bool

	// SourceGroup identifies the originating sub-source when processing a
	// directory of videos; empty otherwise.
	SourceGroup string
	// SourceIndex is the frame's index within SourceGroup.
	SourceIndex int

	// OutputName is the precomputed name used if this frame is saved. It
	// encodes SourceGroup attribution when present.
	OutputName string
}

// ExtractionResult is the unit passed between the extraction and selection
// phases.
type ExtractionResult struct {
	Frames   []FrameRecord
	Metadata map[string]string

	// TempDir is the staging area to release when the run terminates; empty
	// when the input was already durable (a pre-existing image directory).
	TempDir string

	InputKind InputKind
}

// SetMetadata records a metadata field, allocating the map on first use.
func (r *ExtractionResult) SetMetadata(key, value string) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
}

// SortByIndex orders records ascending by GlobalIndex in place.
func SortByIndex(records []FrameRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].GlobalIndex < records[j].GlobalIndex
	})
}

// ValidateSequence checks the engine's input invariant: ascending
// GlobalIndex with no duplicates.
func ValidateSequence(records []FrameRecord) error {
	for i := 1; i < len(records); i++ {
		if records[i].GlobalIndex <= records[i-1].GlobalIndex {
			return fmt.Errorf("frame sequence not strictly ascending at position %d: index %d follows %d",
				i, records[i].GlobalIndex, records[i-1].GlobalIndex)
		}
	}
	return nil
}
