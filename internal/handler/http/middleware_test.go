// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/service"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── auth ────────────────────────────────────────────────────────────────────

func TestAuth_TableTest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantUserID int64
	}{
		{name: "bearer header", header: "Bearer " + validAccessToken, wantStatus: http.StatusOK, wantUserID: 7},
		{name: "lower case scheme", header: "bearer " + validAccessToken, wantStatus: http.StatusOK, wantUserID: 7},
		{name: "cookie", cookie: validAccessToken, wantStatus: http.StatusOK, wantUserID: 7},
		{name: "nothing", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer forged", wantStatus: http.StatusUnauthorized},
		{name: "malformed header beats valid cookie", header: "Bearer", cookie: validAccessToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&service.Services{TokenService: authenticatedTokens()})

			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = utils.GetUserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := injectNopLogger(httptest.NewRequest(http.MethodGet, "/test", nil))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			h.auth(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantUserID, gotUserID)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "unauthorized", decodeError(t, rr).Kind)
			}
		})
	}
}

// ── trace id ────────────────────────────────────────────────────────────────

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name         string
		requestID    string
		wantSameID   bool
		wantGenerate bool
	}{
		{name: "reused from header", requestID: "my-trace-id", wantSameID: true},
		{name: "generated when absent", wantGenerate: true},
		{name: "generated when oversized", requestID: strings.Repeat("a", maxTraceIDLength+1), wantGenerate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			h := &Handler{logger: &logger.Logger{Logger: zerolog.New(buf)}}

			var ctxTraceID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxTraceID = utils.GetTraceIDFromContext(r.Context())
				logger.FromRequest(r).Info().Msg("inside")
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.requestID != "" {
				req.Header.Set(traceIDHeader, tt.requestID)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			got := rr.Header().Get(traceIDHeader)
			assert.Equal(t, got, ctxTraceID)
			assert.Contains(t, buf.String(), `"trace_id":"`+got+`"`)
			if tt.wantSameID {
				assert.Equal(t, tt.requestID, got)
			}
			if tt.wantGenerate {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

// ── logging ─────────────────────────────────────────────────────────────────

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantContains []string
	}{
		{name: "explicit status", status: http.StatusCreated, body: "created", wantContains: []string{`"status":201`, `"size":7`}},
		{name: "implicit 200", body: "ok", wantContains: []string{`"status":200`, `"size":2`}},
		{name: "no body", status: http.StatusNoContent, wantContains: []string{`"status":204`, `"size":0`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			h := &Handler{logger: logger.Nop()}

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.body != "" {
					w.Write([]byte(tt.body))
				}
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login?x=1", nil)
			req = req.WithContext(zerolog.New(buf).WithContext(req.Context()))
			rr := httptest.NewRecorder()
			h.withLogging(next).ServeHTTP(rr, req)

			out := buf.String()
			assert.Contains(t, out, `"method":"POST"`)
			assert.Contains(t, out, `"uri":"/api/v1/users/login?x=1"`)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusInternalServerError)
	_, err := w.Write([]byte("abc"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, http.StatusAccepted, w.status)
	assert.Equal(t, 3, w.size)
	assert.Same(t, rr, w.Unwrap())
}

// ── gzip ────────────────────────────────────────────────────────────────────

func TestWithGZip(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		contentType    string
		wantCompressed bool
	}{
		{name: "json compressed", acceptEncoding: "gzip, deflate", contentType: "application/json", wantCompressed: true},
		{name: "client without gzip", acceptEncoding: "", contentType: "application/json"},
		{name: "non json left alone", acceptEncoding: "gzip", contentType: "text/plain"},
	}

	payload := `{"success":true,"message":"` + strings.Repeat("x", 512) + `"}`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(payload))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/version", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rr := httptest.NewRecorder()
			withGZip(next).ServeHTTP(rr, req)

			if !tt.wantCompressed {
				assert.Empty(t, rr.Header().Get("Content-Encoding"))
				assert.Equal(t, payload, rr.Body.String())
				return
			}

			assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
			gr, err := gzip.NewReader(rr.Body)
			require.NoError(t, err)
			plain, err := io.ReadAll(gr)
			require.NoError(t, err)
			assert.Equal(t, payload, string(plain))
		})
	}
}
