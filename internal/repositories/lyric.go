package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

const lyricColumns = `genre, slug, title, label, preview, page, position, fetched_at`

// LyricRepository caches lyric records in sqlite.
type LyricRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewLyricRepository creates a new LyricRepository with the given database connection
func NewLyricRepository(db *sql.DB) *LyricRepository {
	return &LyricRepository{db: db, now: time.Now}
}

// RecordPage implements pager.Recorder.
func (r *LyricRepository) RecordPage(genre string, page int, lyrics []models.Lyric) error {
	return r.Save(genre, page, lyrics)
}

// Save upserts a page of lyrics listed under genre. Existing rows keep their id and take the new
// title, preview and position.
func (r *LyricRepository) Save(genre string, page int, lyrics []models.Lyric) error {
	if genre == "" {
		return fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}

	query := `
		INSERT INTO lyrics (id, genre, slug, title, label, preview, page, position, fetched_at, search_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (genre, slug) DO UPDATE SET
			title = excluded.title,
			label = excluded.label,
			preview = excluded.preview,
			page = excluded.page,
			position = excluded.position,
			fetched_at = excluded.fetched_at,
			search_text = excluded.search_text
	`

	fetchedAt := r.now().UTC()
	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, l := range lyrics {
			if err := l.Validate(); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
			}

			_, err := stmt.Exec(
				shared.GenerateID(),
				genre,
				l.Slug,
				l.Title,
				l.Genre,
				l.Preview,
				page,
				i,
				fetchedAt,
				searchText(l),
			)
			if err != nil {
				return fmt.Errorf("failed to save lyric %s: %w", l.Slug, err)
			}
		}
		return nil
	})
}

// Get retrieves a cached lyric by genre and slug.
func (r *LyricRepository) Get(genre, slug string) (*models.CachedLyric, error) {
	query := `SELECT ` + lyricColumns + ` FROM lyrics WHERE genre = ? AND slug = ?`

	lyric, err := scanLyric(r.db.QueryRow(query, genre, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", shared.ErrLyricNotFound, genre, slug)
	}
	return lyric, err
}

// ListByGenre returns cached lyrics for genre in arrival order.
func (r *LyricRepository) ListByGenre(genre string, limit int) ([]models.CachedLyric, error) {
	query := `SELECT ` + lyricColumns + ` FROM lyrics WHERE genre = ? ORDER BY page, position`
	args := []any{genre}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return r.list(query, args...)
}

// Search returns cached lyrics whose title or preview contains every word of query.
func (r *LyricRepository) Search(query string, limit int) ([]models.CachedLyric, error) {
	terms := strings.Fields(shared.NormalizeQuery(query))
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	var (
		where []string
		args  []any
	)
	for _, term := range terms {
		where = append(where, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(term)+"%")
	}

	stmt := `SELECT ` + lyricColumns + ` FROM lyrics WHERE ` + strings.Join(where, " AND ") + ` ORDER BY title`
	if limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, limit)
	}

	return r.list(stmt, args...)
}

// GenreCount is the number of cached lyrics for one genre.
type GenreCount struct {
	Genre string
	Count int
	Pages int
}

// Counts returns cached totals per genre ordered by genre.
func (r *LyricRepository) Counts() ([]GenreCount, error) {
	rows, err := r.db.Query(`SELECT genre, COUNT(*), COUNT(DISTINCT page) FROM lyrics GROUP BY genre ORDER BY genre`)
	if err != nil {
		return nil, fmt.Errorf("failed to count lyrics: %w", err)
	}
	defer rows.Close()

	var counts []GenreCount
	for rows.Next() {
		var c GenreCount
		if err := rows.Scan(&c.Genre, &c.Count, &c.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Clear removes cached lyrics for genre, or every lyric when genre is empty. It returns the number of rows removed.
func (r *LyricRepository) Clear(genre string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if genre == "" {
		res, err = r.db.Exec(`DELETE FROM lyrics`)
	} else {
		res, err = r.db.Exec(`DELETE FROM lyrics WHERE genre = ?`, genre)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear lyrics: %w", err)
	}
	return res.RowsAffected()
}

func (r *LyricRepository) list(query string, args ...any) ([]models.CachedLyric, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lyrics: %w", err)
	}
	defer rows.Close()

	lyrics := []models.CachedLyric{}
	for rows.Next() {
		l, err := scanLyric(rows)
		if err != nil {
			return nil, err
		}
		lyrics = append(lyrics, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lyrics: %w", err)
	}
	return lyrics, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLyric(s scanner) (*models.CachedLyric, error) {
	var l models.CachedLyric
	err := s.Scan(&l.ListingGenre, &l.Slug, &l.Title, &l.Genre, &l.Preview, &l.Page, &l.Position, &l.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lyric: %w", err)
	}
	return &l, nil
}

func searchText(l models.Lyric) string {
	return shared.NormalizeQuery(l.Title + " " + l.Preview)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
