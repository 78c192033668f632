// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/service"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
)

// auth is an HTTP middleware that enforces access-token authentication.
//
// The token is taken from the "Authorization: Bearer" header, or from the
// access token cookie when the header is absent. On success the user ID is
// stored in the request context via [utils.WithUserID] and the request-scoped
// logger is tagged with it. Every failure is answered with 401.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		tokenString, err := accessTokenFromRequest(r)
		if err != nil {
			log.Debug().Err(err).Msg("no usable access token")
			writeError(w, r, service.ErrUnauthorizedRequest)
			return
		}

		ctx := r.Context()
		token, err := h.services.TokenService.ParseAccessToken(ctx, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx = utils.WithUserID(ctx, token.UserID)
		ctx = log.WithUserID(token.UserID).WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessTokenFromRequest prefers the "Authorization" header. A present but
// malformed header is an error even when a cookie is also sent.
func accessTokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return utils.ParseBearerToken(header)
	}

	cookie, err := r.Cookie(accessTokenCookie)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingAccessToken
	}
	return cookie.Value, nil
}

// userIDFromRequest returns the ID stored by [Handler.auth].
func userIDFromRequest(r *http.Request) (int64, error) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return 0, service.ErrUnauthorizedRequest
	}
	return userID, nil
}
