// Package moviedb is a small client for the TMDB v3 search API.
package moviedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-watchlist/internal/model"
)

// ErrUpstream wraps every failure talking to TMDB.
var ErrUpstream = errors.New("moviedb upstream error")

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type searchResult struct {
	ID               int64   `json:"id"`
	MediaType        string  `json:"media_type"`
	Title            string  `json:"title"`
	Name             string  `json:"name"`
	OriginalTitle    string  `json:"original_title"`
	OriginalName     string  `json:"original_name"`
	ReleaseDate      string  `json:"release_date"`
	FirstAirDate     string  `json:"first_air_date"`
	LastAirDate      string  `json:"last_air_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	Overview         string  `json:"overview"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
}

// SearchMulti queries search/multi and keeps movie and tv results only.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) ([]model.SearchResult, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/multi", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	c.authorize(req, params)
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	results := make([]model.SearchResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		if item.MediaType != model.MediaTypeMovie && item.MediaType != model.MediaTypeTV {
			continue
		}
		results = append(results, normalize(item))
	}

	return results, nil
}

// authorize uses bearer auth for v4 read tokens and the api_key parameter otherwise.
func (c *Client) authorize(req *http.Request, params url.Values) {
	if strings.HasPrefix(c.apiKey, "eyJ") {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return
	}
	params.Set("api_key", c.apiKey)
}

func normalize(item searchResult) model.SearchResult {
	result := model.SearchResult{
		TMDBID:           item.ID,
		MediaType:        item.MediaType,
		Overview:         item.Overview,
		VoteAverage:      item.VoteAverage,
		VoteCount:        item.VoteCount,
		Popularity:       item.Popularity,
		OriginalLanguage: item.OriginalLanguage,
		Genres:           GenreNames(item.GenreIDs),
	}
	if item.PosterPath != nil {
		result.PosterPath = *item.PosterPath
	}
	if item.BackdropPath != nil {
		result.BackdropPath = *item.BackdropPath
	}

	if item.MediaType == model.MediaTypeTV {
		result.Title = item.Name
		result.OriginalTitle = item.OriginalName
		result.Year = yearOf(item.FirstAirDate)
		result.EndYear = yearOf(item.LastAirDate)
	} else {
		result.Title = item.Title
		result.OriginalTitle = item.OriginalTitle
		result.Year = yearOf(item.ReleaseDate)
	}

	return result
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
