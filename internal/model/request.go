package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type AddEntryRequest struct {
	TMDBID           int64    `json:"tmdbId"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"originalTitle"`
	MediaType        string   `json:"mediaType"`
	Year             string   `json:"year"`
	EndYear          string   `json:"endYear"`
	PosterPath       string   `json:"posterPath"`
	BackdropPath     string   `json:"backdropPath"`
	Overview         string   `json:"overview"`
	VoteAverage      float64  `json:"voteAverage"`
	VoteCount        int      `json:"voteCount"`
	Popularity       float64  `json:"popularity"`
	OriginalLanguage string   `json:"originalLanguage"`
	Genres           []string `json:"genres"`
	Status           string   `json:"status"`
	Notes            string   `json:"notes"`
}

// UpdateEntryRequest only carries the fields a user may change; nil means untouched.
type UpdateEntryRequest struct {
	Status   *string `json:"status"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}
