package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-watchlist/internal/model"
	"go-watchlist/internal/token"
	"go-watchlist/internal/util"
	"go-watchlist/pkg/apierror"
)

type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error)
	UpdateAvatar(ctx context.Context, userID, avatar string) (model.User, error)
}

type TokenIssuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken(userID string) (string, error)
	VerifyRefresh(tokenString string) (*token.Claims, error)
}

type AuthService struct {
	users      UserStore
	tokens     TokenIssuer
	bcryptCost int
	dummyHash  []byte
}

func NewAuthService(users UserStore, tokens TokenIssuer, bcryptCost int) (*AuthService, error) {
	// Login with an unknown email still runs one bcrypt comparison against this hash.
	dummy, err := bcrypt.GenerateFromPassword([]byte("watchlist-dummy-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}

	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, dummyHash: dummy}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	name := util.SanitizeText(req.Name, maxNameLength, false)

	v := &validator{}
	if name == "" {
		v.add("name", "Name is required")
	}
	v.email("email", req.Email)
	if len(req.Password) < minPasswordLength {
		v.add("password", "Please enter a password with 6 or more characters")
	}
	if err := v.err(); err != nil {
		return model.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return model.AuthResponse{}, model.ErrUserAlreadyExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		return model.AuthResponse{}, err
	}

	return s.authResponse(user)
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	v := &validator{}
	v.email("email", req.Email)
	if req.Password == "" {
		v.add("password", "Password is required")
	}
	if err := v.err(); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (model.AccessTokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.AccessTokenResponse{}, apierror.Unauthorized("NO_REFRESH_TOKEN", "No refresh token provided")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return model.AccessTokenResponse{}, apierror.Forbidden("INVALID_REFRESH_TOKEN", "Invalid refresh token")
	}

	accessToken, err := s.tokens.IssueAccessToken(claims.User.ID)
	if err != nil {
		return model.AccessTokenResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	return model.AccessTokenResponse{AccessToken: accessToken}, nil
}

func (s *AuthService) Me(ctx context.Context, identity model.Identity) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.PublicUser{}, apierror.NotFound("USER_NOT_FOUND", "User not found")
	}
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *AuthService) authResponse(user model.User) (model.AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return model.AuthResponse{User: user.Public(), AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
