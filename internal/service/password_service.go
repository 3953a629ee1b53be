package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-watchlist/internal/mailer"
	"go-watchlist/internal/model"
	"go-watchlist/pkg/apierror"
)

const (
	resetTokenBytes   = 32
	resetEmailSubject = "Password Reset Request"
)

type PasswordConfig struct {
	BcryptCost int
	ResetTTL   time.Duration
	ClientURL  string
}

type PasswordService struct {
	users      UserStore
	mailer     mailer.Mailer
	bcryptCost int
	resetTTL   time.Duration
	clientURL  string
	now        func() time.Time
	random     io.Reader
}

func NewPasswordService(users UserStore, m mailer.Mailer, cfg PasswordConfig) *PasswordService {
	return &PasswordService{
		users:      users,
		mailer:     m,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.ResetTTL,
		clientURL:  strings.TrimRight(cfg.ClientURL, "/"),
		now:        time.Now,
		random:     rand.Reader,
	}
}

// ForgotPassword stores a fresh reset token for the account and mails the
// plaintext link. A later request overwrites the stored hash.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) (model.MessageResponse, error) {
	v := &validator{}
	v.email("email", email)
	if err := v.err(); err != nil {
		return model.MessageResponse{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.MessageResponse{}, err
	}

	plain, err := s.newResetToken()
	if err != nil {
		return model.MessageResponse{}, err
	}

	expiresAt := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, HashResetToken(plain), expiresAt); err != nil {
		return model.MessageResponse{}, err
	}

	resetURL := s.clientURL + "/reset-password/" + plain
	msg := mailer.Message{
		To:      user.Email,
		Subject: resetEmailSubject,
		Body: "You are receiving this email because you (or someone else) have requested the reset of a password. " +
			"Please click on the link to reset your password: " + resetURL,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return model.MessageResponse{}, apierror.Upstream("Email could not be sent", err)
	}

	slog.InfoContext(ctx, "password reset requested", "user_id", user.ID, "expires_at", expiresAt)
	return model.MessageResponse{Msg: "Password reset email sent"}, nil
}

// ResetPassword consumes a reset token. The stored hash is cleared in the same
// statement that replaces the password, so each token works once.
func (s *PasswordService) ResetPassword(ctx context.Context, resetToken, password string) (model.MessageResponse, error) {
	if len(password) < minPasswordLength {
		return model.MessageResponse{}, apierror.Validation(apierror.FieldError{
			Field:   "password",
			Message: "Please enter a password with 6 or more characters",
		})
	}

	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" {
		return model.MessageResponse{}, model.ErrInvalidOrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.MessageResponse{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.ConsumeResetToken(ctx, HashResetToken(resetToken), string(hash), s.now())
	if errors.Is(err, model.ErrInvalidOrExpiredToken) {
		return model.MessageResponse{}, err
	}
	if err != nil {
		return model.MessageResponse{}, fmt.Errorf("reset password: %w", err)
	}

	slog.InfoContext(ctx, "password reset completed", "user_id", userID)
	return model.MessageResponse{Msg: "Password has been reset"}, nil
}

func (s *PasswordService) newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashResetToken is the at-rest form of a reset token: its sha256 hex digest.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
