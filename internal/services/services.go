// package services defines the remote lyric source consumed by the pagination controller
package services

import (
	"context"

	"github.com/desertthunder/lyrx/internal/models"
)

// DefaultPageSize is the fixed batch size requested from the lyric source.
const DefaultPageSize = 30

// LyricSource returns paginated lyric records for a genre.
type LyricSource interface {
	// FetchPage requests a single page. Any non-2xx response is reported as an error wrapping [shared.ErrSourceExhausted].
	FetchPage(ctx context.Context, genre string, page, size int) (*models.LyricPage, error)
}

// Searcher looks up lyrics across genres by free text.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Lyric, error)
}
