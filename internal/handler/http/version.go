// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-account-keeper/internal/utils"
)

func (h *Handler) getAppInfo(w http.ResponseWriter, r *http.Request) {
	utils.WriteResponse(w, http.StatusOK, h.services.AppInfoService.GetAppInfo(r.Context()), "application info")
}
