package pager

import "context"

// Walk runs a session for genre without a renderer, advancing after every page the way the
// sentinel does when the last row scrolls into view.
//
// It stops when the listing is exhausted, when a page adds no rows (nothing new could become
// visible), after maxPages pages when maxPages > 0, or when ctx is done. fn, when non-nil,
// observes the state after each page.
func (c *Controller) Walk(ctx context.Context, genre string, maxPages int, fn func(State)) error {
	req := c.Dispatch(Initialize{Genre: genre})
	pages := 0

	for req != nil {
		before := c.Len()
		c.Dispatch(c.Fetch(ctx, *req))
		pages++

		if fn != nil {
			fn(c.State())
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if maxPages > 0 && pages >= maxPages {
			return nil
		}
		if c.Len() == before {
			return nil
		}

		req = c.Dispatch(Advance{})
	}

	return nil
}
