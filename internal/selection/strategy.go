package selection

import (
	"fmt"
	"sort"

	"sharpframes/internal/frames"
	"sharpframes/internal/services"
)

// Method tags a selection strategy.
type Method string

const (
	MethodBestN          Method = "best-n"
	MethodBatched        Method = "batched"
	MethodOutlierRemoval Method = "outlier-removal"
)

// Strategy is the common contract of the selection algorithms. Select never
// mutates its input and returns a subsequence ordered ascending by
// GlobalIndex.
type Strategy interface {
	Method() Method
	Validate() error
	Select(records []frames.FrameRecord) []frames.FrameRecord

	// ParamsMap exposes the strategy parameters for manifests and logs.
	ParamsMap() map[string]int

	// previewCount mirrors len(Select(...)) without materializing records.
	previewCount(p *Previewer) int
}

// Params carries raw parameter values for any method. Only the fields
// relevant to the chosen method are read.
type Params struct {
	NumFrames   int
	MinBuffer   int
	BatchSize   int
	BatchBuffer int
	WindowSize  int
	Sensitivity int
}

// NewStrategy builds a validated strategy from a method tag and raw
// parameters.
func NewStrategy(method string, p Params) (Strategy, error) {
	var s Strategy
	switch Method(method) {
	case MethodBestN:
		s = BestN{NumFrames: p.NumFrames, MinBuffer: p.MinBuffer}
	case MethodBatched:
		s = Batched{BatchSize: p.BatchSize, BatchBuffer: p.BatchBuffer}
	case MethodOutlierRemoval:
		s = OutlierRemoval{WindowSize: p.WindowSize, Sensitivity: p.Sensitivity}
	default:
		return nil, services.Wrap(services.ErrValidation, "selection", "method",
			fmt.Sprintf("unsupported selection method %q", method), nil)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Select validates the strategy and applies it to records.
func Select(s Strategy, records []frames.FrameRecord) ([]frames.FrameRecord, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s.Select(records), nil
}

// scoreOrder returns the positions of records ordered by SharpnessScore
// descending, ties broken by the lower GlobalIndex.
func scoreOrder(records []frames.FrameRecord) []int {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := records[order[a]], records[order[b]]
		if ra.SharpnessScore != rb.SharpnessScore {
			return ra.SharpnessScore > rb.SharpnessScore
		}
		return ra.GlobalIndex < rb.GlobalIndex
	})
	return order
}

func validationError(method Method, message string) error {
	return services.Wrap(services.ErrValidation, "selection", string(method), message, nil)
}
