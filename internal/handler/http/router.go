package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftwise/roster-engine-go/internal/config"
	"github.com/shiftwise/roster-engine-go/internal/handler/http/middleware"
	"github.com/shiftwise/roster-engine-go/internal/pkg/jwt"
)

func NewRouter(appConfig config.AppConfig, jwtService jwt.Service, authHandler AuthHandler, planningHandler PlanningHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "roster-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appConfig.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			// Account provisioning, admin only
			r.With(middleware.RequireAdmin).Post("/auth/register", authHandler.Register)

			r.Route("/planning/runs", func(r chi.Router) {

				// Planner or admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePlanner)
					r.Post("/", planningHandler.CreateRuns)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", planningHandler.GetRun)
					r.Get("/schedule", planningHandler.GetSchedule)
					r.Get("/export", planningHandler.ExportRun)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/employees/{id}", planningHandler.GetEmployeeSchedule)
			})
		})
	})
	return r
}
