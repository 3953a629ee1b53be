package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	// Watchlist related errors
	ErrEntryNotFound = errors.New("watchlist entry not found")
	ErrAlreadyListed = errors.New("title already on watchlist")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
