package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/maika/internal/api"
	apiMiddleware "github.com/phrazzld/maika/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	webhookHandler := api.NewWebhookHandler(app.dispatcher, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)

	r.Get("/health", healthHandler.HandleHealth)

	r.Group(func(r chi.Router) {
		if app.tokens != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.tokens).Authenticate)
		}
		r.Post("/webhook", webhookHandler.HandleAction)
	})

	return r
}
