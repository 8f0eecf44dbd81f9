// Package tasks runs long-lived lyric operations with real-time progress reporting.
//
// # Cache Warming
//
// [Warmer.Run] walks whole genre listings into the lyric cache. Each genre gets its own
// pagination session (pager.Controller) driven headlessly with Walk; sessions run on a small
// worker pool and share one [rate.Limiter] so the lyric source sees a bounded request rate.
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Updates use select with default
// to prevent blocking.
//
// # Caching
//
// Pages are recorded through a pager.Recorder (repositories.LyricRepository). Writes from
// concurrent sessions are serialized; recorder failures are logged by the controller and never
// stop a walk.
package tasks
