package model

import "time"

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"

	StatusWatching    = "watching"
	StatusCompleted   = "completed"
	StatusPlanToWatch = "plan-to-watch"
)

func ValidMediaType(mediaType string) bool {
	return mediaType == MediaTypeMovie || mediaType == MediaTypeTV
}

func ValidStatus(status string) bool {
	switch status {
	case StatusWatching, StatusCompleted, StatusPlanToWatch:
		return true
	default:
		return false
	}
}

type WatchlistEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	TMDBID           int64     `json:"tmdbId"`
	Title            string    `json:"title"`
	OriginalTitle    string    `json:"originalTitle,omitempty"`
	MediaType        string    `json:"mediaType"`
	Year             string    `json:"year,omitempty"`
	EndYear          string    `json:"endYear,omitempty"`
	PosterPath       string    `json:"posterPath,omitempty"`
	BackdropPath     string    `json:"backdropPath,omitempty"`
	Overview         string    `json:"overview,omitempty"`
	VoteAverage      float64   `json:"voteAverage"`
	VoteCount        int       `json:"voteCount"`
	Popularity       float64   `json:"popularity"`
	OriginalLanguage string    `json:"originalLanguage,omitempty"`
	Genres           []string  `json:"genres"`
	Status           string    `json:"status"`
	IsActive         bool      `json:"isActive"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// WatchlistQuery filters and orders a user's list.
type WatchlistQuery struct {
	Page      int
	Limit     int
	Status    string
	MediaType string
	Genres    []string
	SortBy    string
	SortOrder string
}

type SearchResult struct {
	TMDBID           int64    `json:"tmdbId"`
	MediaType        string   `json:"mediaType"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"originalTitle,omitempty"`
	Year             string   `json:"year,omitempty"`
	EndYear          string   `json:"endYear,omitempty"`
	PosterPath       string   `json:"posterPath,omitempty"`
	BackdropPath     string   `json:"backdropPath,omitempty"`
	Overview         string   `json:"overview,omitempty"`
	VoteAverage      float64  `json:"voteAverage"`
	VoteCount        int      `json:"voteCount"`
	Popularity       float64  `json:"popularity"`
	OriginalLanguage string   `json:"originalLanguage,omitempty"`
	Genres           []string `json:"genres"`
}
