package pager

import "github.com/desertthunder/lyrx/internal/models"

// Event is an input to [Controller.Dispatch].
type Event interface {
	event()
}

// Initialize starts a new session for Genre, discarding the previous one.
type Initialize struct {
	Genre string
}

// Advance asks for the next page. It is ignored while loading or once the listing is exhausted.
type Advance struct{}

// PageLoaded reports a successful response for Page of session Seq.
type PageLoaded struct {
	Seq    uint64
	Page   int
	Lyrics []models.Lyric
}

// PageFailed reports a failed response for Page of session Seq.
type PageFailed struct {
	Seq  uint64
	Page int
	Err  error
}

func (Initialize) event() {}
func (Advance) event()    {}
func (PageLoaded) event() {}
func (PageFailed) event() {}

// Request is a page fetch the caller must run through [Controller.Fetch].
type Request struct {
	Seq   uint64
	Genre string
	Page  int
	Size  int
}
