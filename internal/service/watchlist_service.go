package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"go-watchlist/internal/model"
	"go-watchlist/internal/util"
	"go-watchlist/pkg/apierror"
)

type WatchlistStore interface {
	List(ctx context.Context, userID string, query model.WatchlistQuery) ([]model.WatchlistEntry, *model.Meta, error)
	Create(ctx context.Context, e model.WatchlistEntry) (model.WatchlistEntry, error)
	Update(ctx context.Context, userID, id string, req model.UpdateEntryRequest) (model.WatchlistEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

type WatchlistService struct {
	entries WatchlistStore
}

func NewWatchlistService(entries WatchlistStore) *WatchlistService {
	return &WatchlistService{entries: entries}
}

func (s *WatchlistService) List(ctx context.Context, identity model.Identity, query model.WatchlistQuery) ([]model.WatchlistEntry, *model.Meta, error) {
	v := &validator{}
	if query.Status != "" && !model.ValidStatus(query.Status) {
		v.add("status", "status must be one of watching, completed, plan-to-watch")
	}
	if query.MediaType != "" && !model.ValidMediaType(query.MediaType) {
		v.add("mediaType", "mediaType must be movie or tv")
	}
	switch query.SortBy {
	case "", "title", "rating", "year", "created":
	default:
		v.add("sortBy", "sortBy must be one of title, rating, year, created")
	}
	switch strings.ToLower(query.SortOrder) {
	case "", "asc", "desc":
	default:
		v.add("sortOrder", "sortOrder must be asc or desc")
	}
	if err := v.err(); err != nil {
		return nil, nil, err
	}

	return s.entries.List(ctx, identity.UserID, query)
}

func (s *WatchlistService) Add(ctx context.Context, identity model.Identity, req model.AddEntryRequest) (model.WatchlistEntry, error) {
	title := util.SanitizeText(req.Title, maxTitleLength, false)
	status := req.Status
	if status == "" {
		status = model.StatusPlanToWatch
	}

	v := &validator{}
	if req.TMDBID <= 0 {
		v.add("tmdbId", "tmdbId is required")
	}
	if title == "" {
		v.add("title", "title is required")
	}
	if !model.ValidMediaType(req.MediaType) {
		v.add("mediaType", "mediaType must be movie or tv")
	}
	if !model.ValidStatus(status) {
		v.add("status", "status must be one of watching, completed, plan-to-watch")
	}
	if err := v.err(); err != nil {
		return model.WatchlistEntry{}, err
	}

	genres := make([]string, 0, len(req.Genres))
	for _, genre := range req.Genres {
		if cleaned := util.SanitizeText(genre, 50, false); cleaned != "" {
			genres = append(genres, cleaned)
		}
	}

	return s.entries.Create(ctx, model.WatchlistEntry{
		UserID:           identity.UserID,
		TMDBID:           req.TMDBID,
		Title:            title,
		OriginalTitle:    util.SanitizeText(req.OriginalTitle, maxTitleLength, false),
		MediaType:        req.MediaType,
		Year:             strings.TrimSpace(req.Year),
		EndYear:          strings.TrimSpace(req.EndYear),
		PosterPath:       strings.TrimSpace(req.PosterPath),
		BackdropPath:     strings.TrimSpace(req.BackdropPath),
		Overview:         util.SanitizeText(req.Overview, 0, true),
		VoteAverage:      req.VoteAverage,
		VoteCount:        req.VoteCount,
		Popularity:       req.Popularity,
		OriginalLanguage: strings.TrimSpace(req.OriginalLanguage),
		Genres:           genres,
		Status:           status,
		IsActive:         true,
		Notes:            util.SanitizeText(req.Notes, maxNotesLength, true),
	})
}

// Update changes status, notes and the active flag only.
func (s *WatchlistService) Update(ctx context.Context, identity model.Identity, id string, req model.UpdateEntryRequest) (model.WatchlistEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.WatchlistEntry{}, model.ErrEntryNotFound
	}

	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return model.WatchlistEntry{}, apierror.Validation(apierror.FieldError{
			Field:   "status",
			Message: "status must be one of watching, completed, plan-to-watch",
		})
	}
	if req.Notes != nil {
		notes := util.SanitizeText(*req.Notes, maxNotesLength, true)
		req.Notes = &notes
	}

	return s.entries.Update(ctx, identity.UserID, id, req)
}

func (s *WatchlistService) Remove(ctx context.Context, identity model.Identity, id string) (model.MessageResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.MessageResponse{}, model.ErrEntryNotFound
	}

	if err := s.entries.Delete(ctx, identity.UserID, id); err != nil {
		return model.MessageResponse{}, err
	}
	return model.MessageResponse{Msg: "Entry removed from watchlist"}, nil
}
