package selection

import (
	"fmt"
	"sort"

	"sharpframes/internal/frames"
)

// BestN selects the NumFrames sharpest frames while preferring an even
// spread across the sequence: a first greedy pass only accepts frames whose
// global index differs from every accepted index by at least MinBuffer, and
// a second pass relaxes that rule to guarantee the requested count whenever
// enough frames exist.
type BestN struct {
	NumFrames int
	MinBuffer int
}

func (s BestN) Method() Method { return MethodBestN }

func (s BestN) Validate() error {
	if s.NumFrames < 0 {
		return validationError(MethodBestN, fmt.Sprintf("numFrames must not be negative, got %d", s.NumFrames))
	}
	if s.MinBuffer < 0 {
		return validationError(MethodBestN, fmt.Sprintf("minBuffer must not be negative, got %d", s.MinBuffer))
	}
	return nil
}

func (s BestN) ParamsMap() map[string]int {
	return map[string]int{"numFrames": s.NumFrames, "minBuffer": s.MinBuffer}
}

func (s BestN) Select(records []frames.FrameRecord) []frames.FrameRecord {
	if s.NumFrames == 0 || len(records) == 0 {
		return nil
	}
	target := min(s.NumFrames, len(records))

	// Both passes walk the same score-ordered positions, so the fill pass
	// costs one additional linear scan instead of a rescan per open slot.
	order := scoreOrder(records)
	accepted := make([]bool, len(records))
	count := 0

	// Pass 1: sharp-first, honoring the index gap.
	gaps := gapIndex{}
	for _, pos := range order {
		if count >= target {
			break
		}
		if gaps.admits(records[pos].GlobalIndex, s.MinBuffer) {
			gaps.insert(records[pos].GlobalIndex)
			accepted[pos] = true
			count++
		}
	}

	// Pass 2: the gap rule was too restrictive for the frame density; take
	// the next sharpest remaining frames regardless of spacing.
	if count < target {
		for _, pos := range order {
			if count >= target {
				break
			}
			if accepted[pos] {
				continue
			}
			accepted[pos] = true
			count++
		}
	}

	// records is already ascending by GlobalIndex, so collecting in input
	// order yields the final ordering without another sort.
	out := make([]frames.FrameRecord, 0, count)
	for pos, ok := range accepted {
		if ok {
			out = append(out, records[pos])
		}
	}
	return out
}

// previewCount exploits the fill-pass guarantee: whenever enough frames
// exist the selection always reaches NumFrames.
func (s BestN) previewCount(p *Previewer) int {
	return min(s.NumFrames, p.Total())
}

// gapIndex keeps accepted global indexes sorted so the buffer check only
// needs to look at the two nearest neighbors.
type gapIndex struct {
	idx []int
}

func (g *gapIndex) admits(index, buffer int) bool {
	if buffer == 0 || len(g.idx) == 0 {
		return true
	}
	i := sort.SearchInts(g.idx, index)
	if i < len(g.idx) && g.idx[i]-index < buffer {
		return false
	}
	if i > 0 && index-g.idx[i-1] < buffer {
		return false
	}
	return true
}

func (g *gapIndex) insert(index int) {
	i := sort.SearchInts(g.idx, index)
	g.idx = append(g.idx, 0)
	copy(g.idx[i+1:], g.idx[i:])
	g.idx[i] = index
}
