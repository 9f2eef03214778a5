/*
Package handler provides the HTTP handlers and routing setup for the chat relay.

This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"salachat/internal/pkg/limiter"
	"salachat/internal/pkg/logx"
	"salachat/internal/pkg/resp"
)

const (
	// RegisterRate limits how often one IP may register a participant.
	RegisterRate  = 0.5
	RegisterBurst = 3
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It configures CORS, applies global middleware, and rate limits registration.
func Router(deps *AppDeps) http.Handler {
	registerLimiter := limiter.NewIPRateLimiter(rate.Limit(RegisterRate), RegisterBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "User"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Sala Chat Relay",
		}
		resp.RespondSuccess(w, r, data)
	})

	rateLimitedRegister := registerLimiter.Middleware(HandleRegister(deps))
	r.Post("/participants", rateLimitedRegister.ServeHTTP)
	r.Get("/participants", HandleListParticipants(deps))

	r.Post("/messages", HandlePostMessage(deps))
	r.Get("/messages", HandleListMessages(deps))
	r.Put("/messages/{id}", HandleEditMessage(deps))
	r.Delete("/messages/{id}", HandleDeleteMessage(deps))

	r.Post("/status", HandleStatus(deps))

	return r
}
