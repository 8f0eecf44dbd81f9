// Package catalog holds the static genre table used to title and color genre listings.
package catalog

import "github.com/desertthunder/lyrx/internal/models"

var genres = []models.GenreInfo{
	{Path: "nasheed", Title: "Nasheed", Color: "#0f766e"},
	{Path: "naat", Title: "Naat", Color: "#1d4ed8"},
	{Path: "hamd", Title: "Hamd", Color: "#7c3aed"},
	{Path: "manqabat", Title: "Manqabat", Color: "#b45309"},
	{Path: "salaam", Title: "Salaam", Color: "#be123c"},
	{Path: "qaseeda", Title: "Qaseeda", Color: "#15803d"},
	{Path: "kalam", Title: "Kalam", Color: "#4338ca"},
	{Path: "dua", Title: "Dua", Color: "#0369a1"},
}

// All returns a copy of the genre table in display order.
func All() []models.GenreInfo {
	out := make([]models.GenreInfo, len(genres))
	copy(out, genres)
	return out
}

// Lookup returns the first genre whose path equals the identifier.
//
// A miss returns the zero [models.GenreInfo] and false so callers can render a blank title and color.
func Lookup(path string) (models.GenreInfo, bool) {
	g, i := Find(genres, path)
	return g, i >= 0
}

// Find returns the first entry of table whose path equals the identifier and its index, or the zero
// [models.GenreInfo] and -1.
func Find(table []models.GenreInfo, path string) (models.GenreInfo, int) {
	for i, g := range table {
		if g.Path == path {
			return g, i
		}
	}
	return models.GenreInfo{}, -1
}

// Paths returns the identifiers of every genre.
func Paths() []string {
	paths := make([]string, len(genres))
	for i, g := range genres {
		paths[i] = g.Path
	}
	return paths
}
