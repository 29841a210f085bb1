package selection

import (
	"sync"

	"sharpframes/internal/frames"
)

// Preview reports how many frames a strategy would select without running
// the selection itself. Count always equals len(Select(...)) for the same
// records and parameters.
type Preview struct {
	Method Method         `json:"method"`
	Params map[string]int `json:"params"`
	Count  int            `json:"count"`
	Total  int            `json:"total"`
}

// Stats summarizes the score distribution of the candidate sequence.
type Stats struct {
	Total    int     `json:"total"`
	MinScore float64 `json:"minScore"`
	MaxScore float64 `json:"maxScore"`
	Mean     float64 `json:"meanScore"`
}

// Previewer answers repeated preview queries against one scored sequence.
// The score series is cached on first use, so interactive parameter tuning
// pays the linear scan once.
type Previewer struct {
	records []frames.FrameRecord

	once   sync.Once
	cached scoreSeries
}

// NewPreviewer wraps records without copying them. The caller must not
// mutate records while the previewer is in use.
func NewPreviewer(records []frames.FrameRecord) *Previewer {
	return &Previewer{records: records}
}

// Total returns the candidate count.
func (p *Previewer) Total() int { return len(p.records) }

// Preview validates the strategy and returns its exact selection count.
func (p *Previewer) Preview(s Strategy) (Preview, error) {
	if err := s.Validate(); err != nil {
		return Preview{}, err
	}
	return Preview{
		Method: s.Method(),
		Params: s.ParamsMap(),
		Count:  s.previewCount(p),
		Total:  len(p.records),
	}, nil
}

// Stats returns score summary statistics for the sequence.
func (p *Previewer) Stats() Stats {
	if len(p.records) == 0 {
		return Stats{}
	}
	series := p.series()
	return Stats{
		Total:    len(p.records),
		MinScore: series.minSc,
		MaxScore: series.maxSc,
		Mean:     series.rangeSum(0, len(p.records)-1) / float64(len(p.records)),
	}
}

func (p *Previewer) series() scoreSeries {
	p.once.Do(func() {
		p.cached = newScoreSeries(p.records)
	})
	return p.cached
}
