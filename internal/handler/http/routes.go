// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	if h.cfg.TrustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)
	if h.cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.cfg.RequestTimeout))
	}

	router.NotFound(notFound)
	router.MethodNotAllowed(CheckHTTPMethod(router))

	router.Get("/api/v1/version", h.getAppInfo)

	router.Route("/api/v1/users", func(r chi.Router) {
		// routes without authorization
		r.Group(func(r chi.Router) {
			r.Use(h.authRateLimit())
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh-token", h.refreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.auth)
			r.Post("/logout", h.logout)
			r.Post("/change-password", h.changePassword)
			r.Get("/current-user", h.currentUser)
			r.Patch("/update-account", h.updateAccount)

			r.Post("/images", h.uploadImage)
			r.Get("/images", h.listImages)
			r.Patch("/images/set-active", h.setActiveImage)
			r.Delete("/images/{"+imageIDParam+"}", h.deleteImage)
		})
	})

	return router
}

// authRateLimit throttles the public authentication endpoints per client IP.
// KeyByIP reads r.RemoteAddr, which RealIP rewrites only when proxy headers
// are trusted.
// A non-positive limit disables throttling.
func (h *Handler) authRateLimit() func(http.Handler) http.Handler {
	if h.cfg.AuthRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		h.cfg.AuthRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteError(w, http.StatusTooManyRequests, kindRateLimited, "too many requests, please try again later")
		}),
	)
}
