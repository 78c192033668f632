// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-account-keeper/models"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setTokenCookies stores both tokens as HttpOnly cookies expiring together
// with the tokens.
func (h *Handler) setTokenCookies(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, h.tokenCookie(accessTokenCookie, pair.AccessToken, pair.AccessTokenExpiresAt))
	http.SetCookie(w, h.tokenCookie(refreshTokenCookie, pair.RefreshToken, pair.RefreshTokenExpiresAt))
}

// clearTokenCookies expires both token cookies.
func (h *Handler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c := h.tokenCookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *Handler) tokenCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
