// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/service"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
)

const kindRateLimited = "rate_limited"

var kindStatusMap = map[service.ErrorKind]int{
	service.KindBadRequest:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindUploadError:  http.StatusBadGateway,
	service.KindExternal:     http.StatusBadGateway,
	service.KindInternal:     http.StatusInternalServerError,
}

// requestErrors are decoding failures answered with 400 and their own text.
var requestErrors = []error{
	ErrInvalidJSON,
	ErrMissingRefreshToken,
	ErrInvalidImageID,
	ErrInvalidMultipartForm,
	ErrMissingImageFile,
}

// statusFromError returns the HTTP status for err. Retryable failures are
// answered with 503 so that clients know to try again.
func statusFromError(err error) int {
	if service.IsRetryable(err) {
		return http.StatusServiceUnavailable
	}
	if status, ok := kindStatusMap[service.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	for _, target := range requestErrors {
		if errors.Is(err, target) {
			log.Warn().Err(err).Msg("bad request")
			utils.WriteError(w, http.StatusBadRequest, string(service.KindBadRequest), target.Error())
			return
		}
	}

	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteError(w, status, string(service.KindOf(err)), service.MessageOf(err))
}
