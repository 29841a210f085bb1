package pipeline

// State names an orchestrator lifecycle phase.
type State string

const (
	StateIdle              State = "idle"
	StateExtracting        State = "extracting"
	StateAnalyzing         State = "analyzing"
	StateAwaitingSelection State = "awaiting-selection"
	StateSelecting         State = "selecting"
	StateSaving            State = "saving"
	StateCompleted         State = "completed"
	StateFailed            State = "failed"
	StateCancelled         State = "cancelled"
)

// Terminal reports whether the state ends the run.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// transitions lists, for each state, the states it may move to. Every
// non-terminal state may additionally move to Failed or Cancelled.
var transitions = map[State][]State{
	StateIdle:              {StateExtracting},
	StateExtracting:        {StateAnalyzing},
	StateAnalyzing:         {StateAwaitingSelection},
	StateAwaitingSelection: {StateSelecting},
	StateSelecting:         {StateSaving},
	StateSaving:            {StateCompleted},
}

func (s State) canMoveTo(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed || next == StateCancelled {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
