package selection

import (
	"fmt"

	"sharpframes/internal/frames"
)

// Batched partitions the sequence into consecutive runs of BatchSize frames
// and keeps the sharpest frame from each run. BatchBuffer frames after each
// run are skipped entirely, thinning the output for long recordings.
type Batched struct {
	BatchSize   int
	BatchBuffer int
}

func (s Batched) Method() Method { return MethodBatched }

func (s Batched) Validate() error {
	if s.BatchSize < 1 {
		return validationError(MethodBatched, fmt.Sprintf("batchSize must be at least 1, got %d", s.BatchSize))
	}
	if s.BatchBuffer < 0 {
		return validationError(MethodBatched, fmt.Sprintf("batchBuffer must not be negative, got %d", s.BatchBuffer))
	}
	return nil
}

func (s Batched) ParamsMap() map[string]int {
	return map[string]int{"batchSize": s.BatchSize, "batchBuffer": s.BatchBuffer}
}

func (s Batched) Select(records []frames.FrameRecord) []frames.FrameRecord {
	if len(records) == 0 {
		return nil
	}
	stride := s.BatchSize + s.BatchBuffer
	out := make([]frames.FrameRecord, 0, (len(records)+stride-1)/stride)
	for start := 0; start < len(records); start += stride {
		end := min(start+s.BatchSize, len(records))
		best := start
		for i := start + 1; i < end; i++ {
			// Strict > keeps the earliest frame on equal scores.
			if records[i].SharpnessScore > records[best].SharpnessScore {
				best = i
			}
		}
		out = append(out, records[best])
	}
	return out
}

// previewCount is exact: every stride-sized window contributes one frame,
// including a trailing partial batch.
func (s Batched) previewCount(p *Previewer) int {
	n := p.Total()
	if n == 0 {
		return 0
	}
	stride := s.BatchSize + s.BatchBuffer
	return (n + stride - 1) / stride
}
