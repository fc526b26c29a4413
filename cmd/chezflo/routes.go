// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chezflo/chezflo-api/internal/handler"
	"github.com/chezflo/chezflo-api/internal/handler/api"
	"github.com/chezflo/chezflo-api/internal/middleware"
	"github.com/chezflo/chezflo-api/internal/model"
)

// requestTimeout bounds the time a single API request may take.
const requestTimeout = 30 * time.Second

// routerDeps holds everything newRouter mounts.
type routerDeps struct {
	API            *api.Handler
	Health         *handler.HealthHandler
	Tokens         middleware.TokenParser
	Users          middleware.UserLoader
	RateLimiter    *middleware.RateLimiter
	Login          *middleware.LoginProtection
	AllowedOrigins []string
	IsDev          bool
	// RequestLog enables chi's access log. Off in tests.
	RequestLog bool
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if d.RequestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.IsDev)))
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.Get("/health", d.Health.Health)
	r.Get("/health/live", d.Health.Liveness)
	r.Get("/health/ready", d.Health.Readiness)

	h := d.API
	r.Route("/api", func(r chi.Router) {
		if d.RateLimiter != nil {
			r.Use(d.RateLimiter.Middleware())
		}

		r.Group(func(r chi.Router) {
			if d.Login != nil {
				r.Use(d.Login.Middleware())
			}
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		// Public site content.
		r.Get("/content", h.ListContent)
		r.Get("/content/{contentID}", h.GetContent)
		r.Get("/content/{contentID}/menus", h.ListMenus)
		r.Get("/content/{contentID}/carousel", h.ListCarousel)
		r.Get("/content/{contentID}/grid", h.ListGrid)
		r.Get("/content/{contentID}/{section}", h.GetSection)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(d.Tokens, d.Users))

			r.Get("/user", h.CurrentUser)
			r.Put("/user/{userID}", h.UpdateUser)
			r.Put("/change-password", h.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleSuperadmin))
				r.Put("/user/{userID}/role", h.UpdateUserRole)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/users", h.ListUsers)
				r.Get("/user/{userID}", h.GetUser)
				r.Delete("/user/{userID}", h.DeleteUser)

				r.Post("/content", h.CreateContent)
				r.Put("/content/{contentID}/{section}", h.UpdateSection)

				r.Post("/content/{contentID}/menus", h.CreateMenu)
				r.Get("/content/{contentID}/menus/scheduled", h.ListScheduledMenus)
				r.Post("/content/{contentID}/menus/apply-scheduled", h.ApplyScheduledMenus)
				r.Put("/content/{contentID}/menus/{menuType}", h.UpdateMenu)
				r.Delete("/content/{contentID}/menus/{menuType}", h.DeleteMenu)

				r.Post("/content/{contentID}/carousel", h.CreateCarousel)
				r.Put("/content/{contentID}/carousel/{itemID}", h.UpdateCarousel)
				r.Delete("/content/{contentID}/carousel/{itemID}", h.DeleteCarousel)

				r.Post("/content/{contentID}/grid", h.CreateGrid)
				r.Put("/content/{contentID}/grid/{itemID}", h.UpdateGrid)
				r.Delete("/content/{contentID}/grid/{itemID}", h.DeleteGrid)

				r.Get("/events", h.ListEvents)
				r.Get("/jobs", h.ListJobs)
				r.Post("/jobs/{name}/trigger", h.TriggerJob)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
