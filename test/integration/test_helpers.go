//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"go-watchlist/internal/cache"
	"go-watchlist/internal/config"
	"go-watchlist/internal/database"
	"go-watchlist/internal/handler"
	"go-watchlist/internal/mailer"
	"go-watchlist/internal/middleware"
	"go-watchlist/internal/model"
	"go-watchlist/internal/repository"
	"go-watchlist/internal/router"
	"go-watchlist/internal/service"
	"go-watchlist/internal/storage"
	"go-watchlist/internal/token"
)

// setupPostgres starts a disposable Postgres, applies the embedded
// migrations and returns the pool.
func setupPostgres(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("watchlist_test"),
		postgres.WithUsername("watchlist"),
		postgres.WithPassword("watchlist"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(ctx, dsn, 5, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

type staticSearcher struct{}

func (staticSearcher) SearchMulti(_ context.Context, query string, _ int) ([]model.SearchResult, error) {
	return []model.SearchResult{
		{TMDBID: 603, MediaType: model.MediaTypeMovie, Title: "The Matrix", Year: "1999", VoteAverage: 8.2, Genres: []string{"Action", "Science Fiction"}},
		{TMDBID: 1396, MediaType: model.MediaTypeTV, Title: "Breaking Bad", Year: "2008", EndYear: "2013", VoteAverage: 8.9, Genres: []string{"Drama", "Crime"}},
	}, nil
}

type capturedMail struct {
	messages chan mailer.Message
}

func (c *capturedMail) Send(_ context.Context, msg mailer.Message) error {
	c.messages <- msg
	return nil
}

type testServer struct {
	*httptest.Server
	mail *capturedMail
}

// newServer runs the full router against the real repositories.
func newServer(t *testing.T, db *database.DB, accessTTL time.Duration) *testServer {
	t.Helper()

	return newServerWithConfig(t, db, accessTTL, &config.Config{
		RequestTimeout:   10 * time.Second,
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		CORSOrigins:      []string{"*"},
	})
}

func newServerWithConfig(t *testing.T, db *database.DB, accessTTL time.Duration, cfg *config.Config) *testServer {
	t.Helper()

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "integration-access",
		RefreshSecret: "integration-refresh",
		AccessTTL:     accessTTL,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	users := repository.NewUserRepository(db.Pool)
	entries := repository.NewWatchlistRepository(db.Pool)
	mail := &capturedMail{messages: make(chan mailer.Message, 4)}

	authService, err := service.NewAuthService(users, issuer, bcrypt.MinCost)
	require.NoError(t, err)
	passwordService := service.NewPasswordService(users, mail, service.PasswordConfig{
		BcryptCost: bcrypt.MinCost,
		ResetTTL:   time.Hour,
		ClientURL:  "http://localhost:5173",
	})
	files, err := storage.New(t.TempDir())
	require.NoError(t, err)
	avatarService := service.NewAvatarService(users, files, 128)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, passwordService, avatarService, 1<<20),
		Movie:     handler.NewMovieHandler(service.NewMovieService(staticSearcher{}, nil, time.Minute)),
		Watchlist: handler.NewWatchlistHandler(service.NewWatchlistService(entries)),
		Avatar:    handler.NewAvatarHandler(avatarService),
		Docs:      handler.NewDocsHandler("../../docs/openapi.yaml"),
		Health:    handler.NewHealthHandler(db),
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(issuer), h))
	t.Cleanup(server.Close)
	return &testServer{Server: server, mail: mail}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func doTokenRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("x-auth-token", accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
