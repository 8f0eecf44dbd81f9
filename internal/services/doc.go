// Package services implements the remote lyric source.
//
// # Lyric Source
//
// [LyricSource] is the only contract the pagination controller consumes:
//
//	GET /lyrics/{genre}?page={n}&size=30 → { "data": [ {slug, title, genre, preview}, ... ] }
//
// [LyricService] implements it on top of [APIService], the raw HTTP client.
// Every request is optionally throttled with a [rate.Limiter].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrSourceExhausted] : non-2xx status
//   - [shared.ErrAPIRequest] : transport failure or canceled context
//   - [shared.ErrInvalidPayload] : 2xx with a body that is not the expected envelope
//
// The controller treats all three the same way; the distinction is kept for logging.
package services
