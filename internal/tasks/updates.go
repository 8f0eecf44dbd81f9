package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Genre   string // Genre the update refers to
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	WarmStart Phase = iota
	PageFetched
	GenreDone
	GenreFailed
)

func (p Phase) String() string {
	switch p {
	case WarmStart:
		return "warm_start"
	case PageFetched:
		return "page_fetched"
	case GenreDone:
		return "genre_done"
	case GenreFailed:
		return "genre_failed"
	default:
		return ""
	}
}

func warmStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmStart,
		Total:   total,
		Message: fmt.Sprintf("Warming %d genres...", total),
	}
}

func pageFetchedUpdate(genre string, page, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PageFetched,
		Genre:   genre,
		Step:    page + 1,
		Message: fmt.Sprintf("%s: page %d (%d lyrics)", genre, page, count),
	}
}

func genreDoneUpdate(step, total int, genre string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenreDone,
		Genre:   genre,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✓ %s: %d lyrics cached", genre, count),
	}
}

func genreFailedUpdate(step, total int, genre string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenreFailed,
		Genre:   genre,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s: %v", genre, err),
	}
}

// sendProgress sends an update without blocking; prog may be nil.
func sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
