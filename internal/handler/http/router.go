package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/leave-portal/internal/config"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterDeps bundles what NewRouter mounts.
type RouterDeps struct {
	Config        *config.Config
	Logger        *slog.Logger
	JWTService    jwt.Service
	Sessions      func(http.Handler) http.Handler
	RateLimiter   *middleware.IPRateLimiter
	PortalHandler PortalHandler
	APIHandler    PortalAPIHandler
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(deps.Logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		// The SSE stream stays open for the lifetime of the tab
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/events" || req.URL.Path == "/health"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.SecurityHeaders)

	r.Handle("/assets/*", deps.PortalHandler.Assets())

	// Everything below belongs to a portal session
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verify(deps.JWTService.JWTAuth(), deps.JWTService.TokenFromCookie, jwtauth.TokenFromHeader))
		r.Use(deps.Sessions)

		r.Get("/", deps.PortalHandler.Page)
		r.Get("/events", deps.PortalHandler.Stream)
		r.Get("/manager/export.xlsx", deps.PortalHandler.Export)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(deps.RateLimiter))

			r.Post("/view/{mode}", deps.PortalHandler.SwitchView)
			r.Post("/leaves/apply", deps.PortalHandler.ApplyLeave)
			r.Post("/leaves/mine", deps.PortalHandler.FetchMyLeaves)
			r.Post("/manager/search", deps.PortalHandler.SearchLeaves)
			r.Post("/leaves/{id}/{action}", deps.PortalHandler.UpdateStatus)
		})

		r.Route("/api/v1/portal", func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Get("/state", deps.APIHandler.GetState)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(deps.RateLimiter))

				r.Put("/view/{mode}", deps.APIHandler.SwitchView)
				r.Post("/leaves", deps.APIHandler.ApplyLeave)
				r.Get("/leaves/mine", deps.APIHandler.ListMyLeaves)
				r.Get("/leaves", deps.APIHandler.ListLeaves)
				r.Put("/leaves/{id}/{action}", deps.APIHandler.UpdateStatus)
			})
		})
	})

	return r
}

// NewLogger builds the JSON request logger with the ECS field layout.
func NewLogger(cfg *config.Config, level slog.Level) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	)
}
