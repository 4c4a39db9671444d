package palette

// Phase is where a palette sits in its open/load lifecycle.
type Phase int

const (
	PhaseClosed Phase = iota
	// PhaseLoadingInitial is open but still waiting for the first initial results.
	PhaseLoadingInitial
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseLoadingInitial:
		return "loading-initial"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is an observable snapshot of one palette instance.
type State struct {
	IsOpen bool
	Query  string
	// Results are the latest applied results. They survive Close so a
	// reopened palette renders immediately.
	Results              []Result
	IsLoading            bool
	InitialResultsLoaded bool
	Context              Context
}

// Phase derives the lifecycle phase from the flags.
func (s State) Phase() Phase {
	switch {
	case !s.IsOpen:
		return PhaseClosed
	case !s.InitialResultsLoaded:
		return PhaseLoadingInitial
	default:
		return PhaseReady
	}
}

// Result returns the displayed result with id.
func (s State) Result(id string) (Result, bool) {
	for _, r := range s.Results {
		if r.ID == id {
			return r, true
		}
	}
	return Result{}, false
}

func (s State) clone() State {
	out := s
	if s.Results != nil {
		out.Results = make([]Result, len(s.Results))
		copy(out.Results, s.Results)
	}
	return out
}
