package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"go-watchlist/internal/mailer"
	"go-watchlist/internal/model"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserStore) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	args := m.Called(ctx, tokenHash, passwordHash, now)
	return args.String(0), args.Error(1)
}

func (m *mockUserStore) UpdateAvatar(ctx context.Context, userID, avatar string) (model.User, error) {
	args := m.Called(ctx, userID, avatar)
	return args.Get(0).(model.User), args.Error(1)
}

type mockWatchlistStore struct {
	mock.Mock
}

func (m *mockWatchlistStore) List(ctx context.Context, userID string, query model.WatchlistQuery) ([]model.WatchlistEntry, *model.Meta, error) {
	args := m.Called(ctx, userID, query)
	entries, _ := args.Get(0).([]model.WatchlistEntry)
	meta, _ := args.Get(1).(*model.Meta)
	return entries, meta, args.Error(2)
}

func (m *mockWatchlistStore) Create(ctx context.Context, e model.WatchlistEntry) (model.WatchlistEntry, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(model.WatchlistEntry), args.Error(1)
}

func (m *mockWatchlistStore) Update(ctx context.Context, userID, id string, req model.UpdateEntryRequest) (model.WatchlistEntry, error) {
	args := m.Called(ctx, userID, id, req)
	return args.Get(0).(model.WatchlistEntry), args.Error(1)
}

func (m *mockWatchlistStore) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchMulti(ctx context.Context, query string, page int) ([]model.SearchResult, error) {
	args := m.Called(ctx, query, page)
	results, _ := args.Get(0).([]model.SearchResult)
	return results, args.Error(1)
}
