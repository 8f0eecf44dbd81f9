// Package pager drives incremental retrieval of a genre's lyric listing.
//
// # Controller
//
// [Controller] is an explicit state machine. Renderers never mutate its state; they send events to
// [Controller.Dispatch] from a single goroutine (the bubbletea update loop, or a request handler holding
// the session lock) and run the [Request] it returns, if any:
//
//	Initialize{genre} → Loading(page 0)
//	Loading + PageLoaded → Idle        (results appended in arrival order)
//	Loading + PageFailed → Exhausted   (results kept, no further requests)
//	Idle + Advance → Loading(page+1)
//
// Advance is ignored while a page is in flight or after exhaustion, so at most one request is
// outstanding and pages are requested strictly in order.
//
// [Controller.Fetch] is the only blocking step. It calls the [services.LyricSource] exactly once and
// converts the outcome into a PageLoaded or PageFailed event that is fed back through Dispatch.
//
// Every session (one Initialize) gets a new sequence number. Responses carrying another session's
// sequence number are dropped, so a page that arrives after the genre changed cannot leak into the new
// listing.
//
// # Sentinel
//
// [Observer] tracks whether a target row intersects the viewport grown by a root margin and reports
// transitions into visibility. [Sentinel] binds an observer to a controller: it always watches the last
// loaded row and dispatches Advance when that row becomes visible while the controller is idle.
package pager
