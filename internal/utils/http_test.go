// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"key": "value"}

	n, err := WriteJSON(w, data, http.StatusOK)

	require.NoError(t, err)
	assert.NotZero(t, n)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, w.Body.String())
}

func TestWriteJSON_CustomStatusCode(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, map[string]string{"error": "not found"}, http.StatusNotFound)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteResponse_Envelope(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteResponse(w, http.StatusCreated, map[string]int{"id": 7}, "created")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got struct {
		StatusCode int            `json:"statusCode"`
		Data       map[string]int `json:"data"`
		Message    string         `json:"message"`
		Success    bool           `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, http.StatusCreated, got.StatusCode)
	assert.Equal(t, 7, got.Data["id"])
	assert.Equal(t, "created", got.Message)
	assert.True(t, got.Success)
}

func TestWriteResponse_NilDataOmitted(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteResponse(w, http.StatusOK, nil, "logged out")
	require.NoError(t, err)

	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestWriteError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteError(w, http.StatusConflict, "conflict", "cannot delete active image")
	require.NoError(t, err)

	var got models.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.APIError{
		StatusCode: http.StatusConflict,
		Kind:       "conflict",
		Message:    "cannot delete active image",
		Success:    false,
	}, got)
}
