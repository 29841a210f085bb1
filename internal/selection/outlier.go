package selection

import (
	"fmt"

	"sharpframes/internal/frames"
)

// OutlierRemoval drops frames whose sharpness falls anomalously below their
// local neighborhood. WindowSize frames centered on each frame (clamped at
// the boundaries) form the neighborhood; Sensitivity 0 removes nothing and
// 100 removes everything flaggable, monotonically in between.
type OutlierRemoval struct {
	WindowSize  int
	Sensitivity int
}

func (s OutlierRemoval) Method() Method { return MethodOutlierRemoval }

func (s OutlierRemoval) Validate() error {
	if s.WindowSize < 1 {
		return validationError(MethodOutlierRemoval, fmt.Sprintf("windowSize must be at least 1, got %d", s.WindowSize))
	}
	if s.WindowSize%2 == 0 {
		return validationError(MethodOutlierRemoval, fmt.Sprintf("windowSize must be odd, got %d", s.WindowSize))
	}
	if s.Sensitivity < 0 || s.Sensitivity > 100 {
		return validationError(MethodOutlierRemoval, fmt.Sprintf("sensitivity must be between 0 and 100, got %d", s.Sensitivity))
	}
	return nil
}

func (s OutlierRemoval) ParamsMap() map[string]int {
	return map[string]int{"windowSize": s.WindowSize, "sensitivity": s.Sensitivity}
}

func (s OutlierRemoval) Select(records []frames.FrameRecord) []frames.FrameRecord {
	if len(records) == 0 {
		return nil
	}
	removed := s.outlierMask(newScoreSeries(records))
	out := make([]frames.FrameRecord, 0, len(records))
	for i, rec := range records {
		if !removed[i] {
			out = append(out, rec)
		}
	}
	return out
}

// previewCount runs the same mask computation over the previewer's cached
// score series, so the reported count is exact.
func (s OutlierRemoval) previewCount(p *Previewer) int {
	removed := s.outlierMask(p.series())
	kept := len(removed)
	for _, r := range removed {
		if r {
			kept--
		}
	}
	return kept
}

// outlierMask marks the frames the strategy removes. A frame is removed
// when its score falls below the mean of its neighbors (self excluded) by
// more than a threshold scaled from Sensitivity against the global score
// range. Frames with fewer than three neighbors are always kept: boundary
// frames lack the context to be judged fairly.
func (s OutlierRemoval) outlierMask(series scoreSeries) []bool {
	n := len(series.scores)
	removed := make([]bool, n)
	if s.Sensitivity <= 0 {
		return removed
	}

	half := s.WindowSize / 2
	// Sensitivity 100 maps to zero tolerance so every frame below its
	// neighborhood mean is flagged; lower values widen the tolerance
	// linearly over the observed score range.
	threshold := float64(100-s.Sensitivity) / 4.0 / 100.0 * series.scoreRange()

	for i := 0; i < n; i++ {
		lo := max(i-half, 0)
		hi := min(i+half, n-1)
		neighbors := hi - lo
		if neighbors < 3 {
			continue
		}
		sum := series.rangeSum(lo, hi) - series.scores[i]
		mean := sum / float64(neighbors)
		if mean-series.scores[i] > threshold {
			removed[i] = true
		}
	}
	return removed
}

// scoreSeries caches prefix sums and the score extremes so repeated mask
// computations over the same sequence stay linear.
type scoreSeries struct {
	scores []float64
	prefix []float64
	minSc  float64
	maxSc  float64
}

func newScoreSeries(records []frames.FrameRecord) scoreSeries {
	s := scoreSeries{
		scores: make([]float64, len(records)),
		prefix: make([]float64, len(records)+1),
	}
	for i, rec := range records {
		s.scores[i] = rec.SharpnessScore
		s.prefix[i+1] = s.prefix[i] + rec.SharpnessScore
		if i == 0 || rec.SharpnessScore < s.minSc {
			s.minSc = rec.SharpnessScore
		}
		if i == 0 || rec.SharpnessScore > s.maxSc {
			s.maxSc = rec.SharpnessScore
		}
	}
	return s
}

// rangeSum returns the inclusive score sum over [lo, hi].
func (s scoreSeries) rangeSum(lo, hi int) float64 {
	return s.prefix[hi+1] - s.prefix[lo]
}

func (s scoreSeries) scoreRange() float64 {
	return s.maxSc - s.minSc
}
