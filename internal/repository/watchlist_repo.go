package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"go-watchlist/internal/database"
	"go-watchlist/internal/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	// MaxListPage bounds page so the computed OFFSET cannot overflow.
	MaxListPage      = math.MaxInt32 / MaxListLimit
)

const entryColumns = `id, user_id, tmdb_id, title, original_title, media_type, year, end_year,
		        poster_path, backdrop_path, overview, vote_average, vote_count, popularity,
		        original_language, genres, status, is_active, notes, created_at, updated_at`

var sortColumns = map[string]string{
	"title":   "lower(title)",
	"rating":  "vote_average",
	"year":    "year",
	"created": "created_at",
}

type WatchlistRepository struct {
	db database.DBTX
}

func NewWatchlistRepository(db database.DBTX) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func scanEntry(row pgx.Row) (model.WatchlistEntry, error) {
	var e model.WatchlistEntry
	err := row.Scan(
		&e.ID, &e.UserID, &e.TMDBID, &e.Title, &e.OriginalTitle, &e.MediaType, &e.Year, &e.EndYear,
		&e.PosterPath, &e.BackdropPath, &e.Overview, &e.VoteAverage, &e.VoteCount, &e.Popularity,
		&e.OriginalLanguage, &e.Genres, &e.Status, &e.IsActive, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if e.Genres == nil {
		e.Genres = []string{}
	}
	return e, err
}

// List returns one page of the user's entries and the pagination meta.
func (r *WatchlistRepository) List(ctx context.Context, userID string, query model.WatchlistQuery) ([]model.WatchlistEntry, *model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Page > MaxListPage {
		query.Page = MaxListPage
	}
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}
	if query.Limit > MaxListLimit {
		query.Limit = MaxListLimit
	}

	where := []string{"user_id = $1"}
	args := []any{userID}
	argIdx := 2

	if status := strings.TrimSpace(query.Status); status != "" {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, status)
		argIdx++
	}
	if mediaType := strings.TrimSpace(query.MediaType); mediaType != "" {
		where = append(where, fmt.Sprintf("media_type = $%d", argIdx))
		args = append(args, mediaType)
		argIdx++
	}
	if len(query.Genres) > 0 {
		where = append(where, fmt.Sprintf("genres && $%d", argIdx))
		args = append(args, query.Genres)
		argIdx++
	}

	whereClause := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM watchlist_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("count watchlist entries: %w", err)
	}

	meta := model.NewMeta(query.Page, query.Limit, total)

	orderColumn, ok := sortColumns[query.SortBy]
	if !ok {
		orderColumn = sortColumns["created"]
	}
	direction := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		direction = "ASC"
	}

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT %s
		 FROM watchlist_entries %s
		 ORDER BY %s %s, id
		 LIMIT $%d OFFSET $%d`, entryColumns, whereClause, orderColumn, direction, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query watchlist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.WatchlistEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}

// Create stores e; a second entry for the same title returns model.ErrAlreadyListed.
func (r *WatchlistRepository) Create(ctx context.Context, e model.WatchlistEntry) (model.WatchlistEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Genres == nil {
		e.Genres = []string{}
	}

	created, err := scanEntry(r.db.QueryRow(ctx,
		`INSERT INTO watchlist_entries (
		     id, user_id, tmdb_id, title, original_title, media_type, year, end_year,
		     poster_path, backdrop_path, overview, vote_average, vote_count, popularity,
		     original_language, genres, status, is_active, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 RETURNING `+entryColumns,
		e.ID, e.UserID, e.TMDBID, e.Title, e.OriginalTitle, e.MediaType, e.Year, e.EndYear,
		e.PosterPath, e.BackdropPath, e.Overview, e.VoteAverage, e.VoteCount, e.Popularity,
		e.OriginalLanguage, e.Genres, e.Status, e.IsActive, e.Notes))
	if database.IsUniqueViolation(err) {
		return model.WatchlistEntry{}, model.ErrAlreadyListed
	}
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("create watchlist entry: %w", err)
	}
	return created, nil
}

// Update applies the non-nil fields of req to the user's entry.
func (r *WatchlistRepository) Update(ctx context.Context, userID, id string, req model.UpdateEntryRequest) (model.WatchlistEntry, error) {
	updated, err := scanEntry(r.db.QueryRow(ctx,
		`UPDATE watchlist_entries
		 SET status = COALESCE($3, status),
		     notes = COALESCE($4, notes),
		     is_active = COALESCE($5, is_active),
		     updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+entryColumns,
		id, userID, req.Status, req.Notes, req.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WatchlistEntry{}, model.ErrEntryNotFound
	}
	if err != nil {
		return model.WatchlistEntry{}, fmt.Errorf("update watchlist entry: %w", err)
	}
	return updated, nil
}

func (r *WatchlistRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM watchlist_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEntryNotFound
	}
	return nil
}
