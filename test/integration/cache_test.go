//go:build integration

package integration

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-watchlist/internal/cache"
	"go-watchlist/internal/model"
	"go-watchlist/internal/service"
)

type countingSearcher struct {
	calls atomic.Int32
}

func (s *countingSearcher) SearchMulti(ctx context.Context, query string, page int) ([]model.SearchResult, error) {
	s.calls.Add(1)
	return staticSearcher{}.SearchMulti(ctx, query, page)
}

func TestRedisCache(t *testing.T) {
	client := setupRedis(t)
	c := cache.NewRedisCache(client)
	ctx := context.Background()

	var missing []model.SearchResult
	found, err := c.GetJSON(ctx, "absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	want := []model.SearchResult{{TMDBID: 603, MediaType: model.MediaTypeMovie, Title: "The Matrix", Genres: []string{"Action"}}}
	require.NoError(t, c.SetJSON(ctx, "k", want, time.Minute))

	var got []model.SearchResult
	found, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, "k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestMovieSearchServedFromRedis(t *testing.T) {
	client := setupRedis(t)
	searcher := &countingSearcher{}
	movies := service.NewMovieService(searcher, cache.NewRedisCache(client), time.Minute)
	ctx := context.Background()

	first, err := movies.Search(ctx, "Matrix", 1)
	require.NoError(t, err)
	second, err := movies.Search(ctx, "  matrix ", 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), searcher.calls.Load())
}
