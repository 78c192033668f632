// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-account-keeper/internal/config"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/service"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/stretchr/testify/require"
)

// ── service fakes ───────────────────────────────────────────────────────────

type fakeTokenService struct {
	issueFn  func(ctx context.Context, userID int64) (models.TokenPair, error)
	rotateFn func(ctx context.Context, refreshToken string) (models.TokenPair, error)
	revokeFn func(ctx context.Context, userID int64) error
	parseFn  func(ctx context.Context, accessToken string) (models.Token, error)
}

func (f *fakeTokenService) Issue(ctx context.Context, userID int64) (models.TokenPair, error) {
	return f.issueFn(ctx, userID)
}

func (f *fakeTokenService) Rotate(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	return f.rotateFn(ctx, refreshToken)
}

func (f *fakeTokenService) Revoke(ctx context.Context, userID int64) error {
	return f.revokeFn(ctx, userID)
}

func (f *fakeTokenService) ParseAccessToken(ctx context.Context, accessToken string) (models.Token, error) {
	return f.parseFn(ctx, accessToken)
}

type fakeUserService struct {
	registerFn       func(ctx context.Context, req models.RegisterRequest) (models.User, error)
	authenticateFn   func(ctx context.Context, req models.LoginRequest) (models.User, error)
	loginFn          func(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)
	logoutFn         func(ctx context.Context, userID int64) error
	currentUserFn    func(ctx context.Context, userID int64) (models.User, error)
	updateAccountFn  func(ctx context.Context, req models.UpdateAccountRequest) (models.User, error)
	changePasswordFn func(ctx context.Context, req models.ChangePasswordRequest) error
}

func (f *fakeUserService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	return f.registerFn(ctx, req)
}

func (f *fakeUserService) Authenticate(ctx context.Context, req models.LoginRequest) (models.User, error) {
	return f.authenticateFn(ctx, req)
}

func (f *fakeUserService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	return f.loginFn(ctx, req)
}

func (f *fakeUserService) Logout(ctx context.Context, userID int64) error {
	return f.logoutFn(ctx, userID)
}

func (f *fakeUserService) CurrentUser(ctx context.Context, userID int64) (models.User, error) {
	return f.currentUserFn(ctx, userID)
}

func (f *fakeUserService) UpdateAccount(ctx context.Context, req models.UpdateAccountRequest) (models.User, error) {
	return f.updateAccountFn(ctx, req)
}

func (f *fakeUserService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) error {
	return f.changePasswordFn(ctx, req)
}

type fakeImageService struct {
	storeFn    func(ctx context.Context, userID int64, imageType models.ImageType, file models.ImageFile) (models.UserImage, error)
	uploadFn   func(ctx context.Context, userID int64, imageType models.ImageType, asset models.Asset) (models.UserImage, error)
	activateFn func(ctx context.Context, userID int64, req models.SetActiveImageRequest) (models.ActivationResult, error)
	deleteFn   func(ctx context.Context, userID, imageID int64) error
	listFn     func(ctx context.Context, userID int64) ([]models.UserImage, error)
}

func (f *fakeImageService) StoreImage(ctx context.Context, userID int64, imageType models.ImageType, file models.ImageFile) (models.UserImage, error) {
	return f.storeFn(ctx, userID, imageType, file)
}

func (f *fakeImageService) UploadImage(ctx context.Context, userID int64, imageType models.ImageType, asset models.Asset) (models.UserImage, error) {
	return f.uploadFn(ctx, userID, imageType, asset)
}

func (f *fakeImageService) ActivateImage(ctx context.Context, userID int64, req models.SetActiveImageRequest) (models.ActivationResult, error) {
	return f.activateFn(ctx, userID, req)
}

func (f *fakeImageService) DeleteImage(ctx context.Context, userID, imageID int64) error {
	return f.deleteFn(ctx, userID, imageID)
}

func (f *fakeImageService) ListImages(ctx context.Context, userID int64) ([]models.UserImage, error) {
	return f.listFn(ctx, userID)
}

type fakeAppInfoService struct {
	info models.AppInfo
}

func (f *fakeAppInfoService) GetAppInfo(context.Context) models.AppInfo {
	return f.info
}

// ── helpers ─────────────────────────────────────────────────────────────────

const validAccessToken = "valid-access-token"

// authenticatedTokens accepts validAccessToken for user 7.
func authenticatedTokens() *fakeTokenService {
	return &fakeTokenService{
		parseFn: func(_ context.Context, accessToken string) (models.Token, error) {
			if accessToken != validAccessToken {
				return models.Token{}, service.ErrInvalidAccessToken
			}
			return models.Token{UserID: 7}, nil
		},
	}
}

func newTestHandler(services *service.Services) *Handler {
	return NewHandler(services, config.Server{SecureCookies: true}, logger.Nop())
}

// injectNopLogger puts a nop logger into the request context.
func injectNopLogger(r *http.Request) *http.Request {
	return r.WithContext(logger.Nop().WithContext(r.Context()))
}

// withUser marks the request as authenticated by userID.
func withUser(r *http.Request, userID int64) *http.Request {
	r = injectNopLogger(r)
	return r.WithContext(utils.WithUserID(r.Context(), userID))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.APIError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the "data" member of a success envelope into dst.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) models.APIResponse {
	t.Helper()
	var env struct {
		models.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env.APIResponse
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
