package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-watchlist/internal/config"
	"go-watchlist/internal/handler"
	"go-watchlist/internal/middleware"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Movie     *handler.MovieHandler
	Watchlist *handler.WatchlistHandler
	Avatar    *handler.AvatarHandler
	Docs      *handler.DocsHandler
	Health    *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)
	r.Get("/avatars/{file}", h.Avatar.Serve)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/users", func(users chi.Router) {
			users.Post("/", h.Auth.Login)
			users.Post("/register", h.Auth.Register)
			users.Post("/forgot-password", h.Auth.ForgotPassword)
			users.Post("/reset-password/{resetToken}", h.Auth.ResetPassword)
			users.Post("/refresh-token", h.Auth.RefreshToken)

			users.Group(func(protected chi.Router) {
				protected.Use(authMiddleware.RequireAuth)
				protected.Get("/me", h.Auth.Me)
				protected.Put("/me/avatar", h.Auth.UploadAvatar)
			})
		})

		api.Route("/movies", func(movies chi.Router) {
			movies.Use(authMiddleware.RequireAuth)

			movies.Get("/search", h.Movie.Search)
			movies.Get("/list", h.Watchlist.List)
			movies.Post("/list", h.Watchlist.Add)
			movies.Put("/list/{id}", h.Watchlist.Update)
			movies.Delete("/list/{id}", h.Watchlist.Delete)
		})
	})

	return r
}
