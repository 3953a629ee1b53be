package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"go-watchlist/internal/cache"
	"go-watchlist/internal/model"
	"go-watchlist/pkg/apierror"
)

const (
	searchCachePrefix     = "watchlist:search:"
	searchUpstreamTimeout = 15 * time.Second
)

type MovieSearcher interface {
	SearchMulti(ctx context.Context, query string, page int) ([]model.SearchResult, error)
}

type MovieService struct {
	searcher MovieSearcher
	cache    cache.Cache
	ttl      time.Duration
	group    singleflight.Group
}

func NewMovieService(searcher MovieSearcher, c cache.Cache, ttl time.Duration) *MovieService {
	if c == nil {
		c = cache.Nop{}
	}
	return &MovieService{searcher: searcher, cache: c, ttl: ttl}
}

// Search proxies a TMDB multi search. Identical concurrent searches share one
// upstream call, and results are cached for the configured TTL.
func (s *MovieService) Search(ctx context.Context, query string, page int) ([]model.SearchResult, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, apierror.Validation(apierror.FieldError{Field: "query", Message: "Search query is required"})
	}
	if page < 1 {
		page = 1
	}

	key := fmt.Sprintf("%s%s:%d", searchCachePrefix, normalized, page)

	var cached []model.SearchResult
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		slog.WarnContext(ctx, "search cache read failed", "key", key, "error", err)
	}
	if found {
		return cached, nil
	}

	// The shared upstream call outlives any single caller; each caller only
	// stops waiting when its own context ends.
	resultCh := s.group.DoChan(key, func() (any, error) {
		upstreamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), searchUpstreamTimeout)
		defer cancel()

		results, err := s.searcher.SearchMulti(upstreamCtx, strings.TrimSpace(query), page)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetJSON(upstreamCtx, key, results, s.ttl); err != nil {
			slog.WarnContext(ctx, "search cache write failed", "key", key, "error", err)
		}
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("movie search: %w", ctx.Err())
	case res := <-resultCh:
		if res.Err != nil {
			return nil, apierror.Upstream("Movie search failed", res.Err)
		}
		return res.Val.([]model.SearchResult), nil
	}
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
