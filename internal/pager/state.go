package pager

import "github.com/desertthunder/lyrx/internal/models"

// Phase summarizes the controller flags.
type Phase int

const (
	Idle Phase = iota
	Loading
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// State is the pagination state of one genre session.
type State struct {
	Genre   string         // Genre identifier of the session
	Session string         // Session id, regenerated by every Initialize
	Seq     uint64         // Sequence number tagging the session's requests
	Results []models.Lyric // Accumulated results in arrival order
	Page    int            // Index of the last requested page
	Loading bool           // A request is in flight
	HasMore bool           // False once the source signalled exhaustion or an error
}

// Phase reports the state as a single [Phase].
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return Loading
	case !s.HasMore:
		return Exhausted
	default:
		return Idle
	}
}

// Last returns the index of the last result, or -1 if none are loaded.
func (s State) Last() int {
	return len(s.Results) - 1
}

func (s State) clone() State {
	out := s
	out.Results = make([]models.Lyric, len(s.Results))
	copy(out.Results, s.Results)
	return out
}
