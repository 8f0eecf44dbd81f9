package pager

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	tu "github.com/desertthunder/lyrx/internal/testing"
)

func TestWalk(t *testing.T) {
	pages := map[string][][]models.Lyric{
		"naat": {tu.MakeLyrics("Naat", "a", 30), tu.MakeLyrics("Naat", "b", 30), tu.MakeLyrics("Naat", "c", 5)},
	}

	t.Run("until exhausted", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: pages}
		c := newTestController(src, Options{})

		var seen []int
		err := c.Walk(context.Background(), "naat", 0, func(st State) { seen = append(seen, len(st.Results)) })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Len() != 65 {
			t.Errorf("expected 65 results, got %d", c.Len())
		}
		if len(src.Calls()) != 4 {
			t.Errorf("expected 4 requests (3 pages + 404), got %d", len(src.Calls()))
		}
		want := []int{30, 60, 65, 65}
		for i := range want {
			if i >= len(seen) || seen[i] != want[i] {
				t.Fatalf("expected progress %v, got %v", want, seen)
			}
		}
	})

	t.Run("max pages", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: pages}
		c := newTestController(src, Options{})

		if err := c.Walk(context.Background(), "naat", 2, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Len() != 60 || len(src.Calls()) != 2 {
			t.Errorf("expected 60 results from 2 requests, got %d from %d", c.Len(), len(src.Calls()))
		}
		if !c.HasMore() {
			t.Error("stopping early should leave more-data untouched")
		}
	})

	t.Run("stops on an empty page", func(t *testing.T) {
		src := &tu.ScriptedSource{Pages: map[string][][]models.Lyric{"dua": {tu.MakeLyrics("Dua", "d", 2), {}, {}}}}
		c := newTestController(src, Options{})

		if err := c.Walk(context.Background(), "dua", 0, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(src.Calls()) != 2 {
			t.Errorf("expected 2 requests, got %d", len(src.Calls()))
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := newTestController(&tu.ScriptedSource{Pages: pages}, Options{})

		if err := c.Walk(ctx, "naat", 0, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if c.HasMore() {
			t.Error("a failed request ends the session")
		}
	})
}
