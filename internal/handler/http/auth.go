// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/service"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.UserService.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Int64("user_id", user.UserID).Msg("user registered")
	utils.WriteResponse(w, http.StatusCreated, user, "user registered successfully")
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.services.UserService.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Int64("user_id", resp.User.UserID).Msg("user logged in")
	h.setTokenCookies(w, resp.TokenPair)
	utils.WriteResponse(w, http.StatusOK, resp, "user logged in successfully")
}

// refreshToken rotates the refresh token taken from the cookie or, when no
// cookie is sent, from the JSON body. Cookies are cleared only when the token
// itself is rejected; after other failures the client may retry with it.
func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	token, err := refreshTokenFromRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pair, err := h.services.TokenService.Rotate(r.Context(), token)
	if err != nil {
		if service.KindOf(err) == service.KindUnauthorized {
			h.clearTokenCookies(w)
		}
		writeError(w, r, err)
		return
	}

	h.setTokenCookies(w, pair)
	utils.WriteResponse(w, http.StatusOK, pair, "access token refreshed")
}

func refreshTokenFromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	if r.ContentLength == 0 {
		return "", ErrMissingRefreshToken
	}

	var req models.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	if req.RefreshToken == "" {
		return "", ErrMissingRefreshToken
	}
	return req.RefreshToken, nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err = h.services.UserService.Logout(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearTokenCookies(w)
	utils.WriteResponse(w, http.StatusOK, nil, "user logged out")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.services.UserService.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteResponse(w, http.StatusOK, user, "current user fetched successfully")
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.UpdateAccountRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.UserID = userID

	user, err := h.services.UserService.UpdateAccount(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteResponse(w, http.StatusOK, user, "account details updated successfully")
}

// changePassword ends every session of the user, so the token cookies are
// cleared as well.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.ChangePasswordRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.UserID = userID

	if err = h.services.UserService.ChangePassword(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}

	h.clearTokenCookies(w)
	utils.WriteResponse(w, http.StatusOK, nil, "password changed successfully")
}
