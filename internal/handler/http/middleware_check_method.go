// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod returns a handler meant for [chi.Mux.MethodNotAllowed].
//
// A request whose path exists but whose method is not registered gets 404
// instead of chi's default 405, so the route stays hidden from callers using
// an unsupported method. Matching goes through [chi.Mux.Match], so routes with
// URL parameters and mounted sub-routers are recognised as well.
func CheckHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		notFound(w, r)
	}
}

// notFound writes the JSON envelope for an unknown route.
func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "not_found", "route not found")
}
