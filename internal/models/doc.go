// Package models defines the records exchanged between the lyric source, the pagination controller and the renderers.
//
//   - [GenreInfo] : static display metadata for a genre listing
//   - [Lyric] : a single lyric record as returned by the remote source
//   - [LyricPage] : one fixed-size batch of lyrics for a genre
//   - [CachedLyric] : a lyric persisted in the local cache with its arrival position
//
// Lyrics are immutable once received; identity is the slug within a genre.
package models
