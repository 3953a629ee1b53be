package client

import "time"

type AuthResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
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

type Entry struct {
	ID               string    `json:"id"`
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

// NewEntry is the body of AddToWatchlist. A SearchResult converts directly.
type NewEntry struct {
	TMDBID           int64    `json:"tmdbId"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"originalTitle,omitempty"`
	MediaType        string   `json:"mediaType"`
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
	Status           string   `json:"status,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

func EntryFromSearch(r SearchResult) NewEntry {
	return NewEntry{
		TMDBID:           r.TMDBID,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		MediaType:        r.MediaType,
		Year:             r.Year,
		EndYear:          r.EndYear,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		Overview:         r.Overview,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Popularity:       r.Popularity,
		OriginalLanguage: r.OriginalLanguage,
		Genres:           r.Genres,
	}
}

// EntryUpdate changes only the non-nil fields.
type EntryUpdate struct {
	Status   *string `json:"status,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type ListOptions struct {
	Page      int
	Limit     int
	Status    string
	MediaType string
	Genres    []string
	SortBy    string
	SortOrder string
}
