// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// PageCall records a single FetchPage invocation on [ScriptedSource].
type PageCall struct {
	Genre string
	Page  int
	Size  int
}

// ScriptedSource is a test double for [services.LyricSource].
//
// Pages are served from Pages keyed by genre then page index; a missing page answers with a 404-style
// [shared.ErrSourceExhausted]. Failures overrides that per page.
type ScriptedSource struct {
	Pages    map[string][][]models.Lyric
	Failures map[int]error

	mu    sync.Mutex
	calls []PageCall
}

func (s *ScriptedSource) FetchPage(ctx context.Context, genre string, page, size int) (*models.LyricPage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, PageCall{Genre: genre, Page: page, Size: size})
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := s.Failures[page]; ok {
		return nil, err
	}

	pages := s.Pages[genre]
	if page >= len(pages) {
		return nil, fmt.Errorf("%w: status %d", shared.ErrSourceExhausted, http.StatusNotFound)
	}
	return &models.LyricPage{Genre: genre, Page: page, Size: size, Lyrics: pages[page]}, nil
}

// Calls returns a copy of every FetchPage invocation in order.
func (s *ScriptedSource) Calls() []PageCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PageCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// MakeLyrics builds n lyrics for genre with slugs "{prefix}-{i}".
func MakeLyrics(genre, prefix string, n int) []models.Lyric {
	lyrics := make([]models.Lyric, n)
	for i := range lyrics {
		lyrics[i] = models.Lyric{
			Slug:    fmt.Sprintf("%s-%d", prefix, i),
			Title:   fmt.Sprintf("%s %d", strings.ToUpper(prefix), i),
			Genre:   genre,
			Preview: fmt.Sprintf("first verse of %s %d", prefix, i),
		}
	}
	return lyrics
}

// Slugs returns the slugs of lyrics in order.
func Slugs(lyrics []models.Lyric) []string {
	out := make([]string, len(lyrics))
	for i, l := range lyrics {
		out[i] = l.Slug
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails once maxWrites writes have been made
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// BodyOf wraps s as an [http.Response] body.
func BodyOf(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func AssertSlugs(t *testing.T, got []models.Lyric, want []string) {
	t.Helper()
	slugs := Slugs(got)
	if len(slugs) != len(want) {
		t.Fatalf("expected %d lyrics %v, got %d %v", len(want), want, len(slugs), slugs)
	}
	for i := range want {
		if slugs[i] != want[i] {
			t.Errorf("lyric %d: expected slug %s, got %s", i, want[i], slugs[i])
		}
	}
}
