// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/go-chi/chi/v5"
)

const (
	imageFormField     = "image"
	imageTypeFormField = "imageType"
	imageIDParam       = "imageId"
)

// multipartMemory is the part of a multipart form kept in memory; the rest is
// spilled to temporary files by net/http.
const multipartMemory = 1 << 20

// uploadImage accepts a multipart form with the image file in "image" and
// its type in "imageType". The new image is inactive.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	imageType, file, err := h.readImageForm(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	image, err := h.services.UserImageService.StoreImage(r.Context(), userID, imageType, file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Int64("image_id", image.ID).Str("image_type", string(image.Type)).Msg("image uploaded")
	utils.WriteResponse(w, http.StatusCreated, image, "image uploaded successfully")
}

func (h *Handler) readImageForm(w http.ResponseWriter, r *http.Request) (models.ImageType, models.ImageFile, error) {
	// The whole request may carry a little more than the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", models.ImageFile{}, fmt.Errorf("%w: %w", ErrInvalidMultipartForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", models.ImageFile{}, ErrMissingImageFile
		}
		return "", models.ImageFile{}, fmt.Errorf("%w: %w", ErrInvalidMultipartForm, err)
	}
	defer part.Close()

	if header.Size > h.cfg.MaxUploadSize {
		return "", models.ImageFile{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidMultipartForm, h.cfg.MaxUploadSize)
	}

	content, err := io.ReadAll(part)
	if err != nil {
		return "", models.ImageFile{}, fmt.Errorf("%w: %w", ErrInvalidMultipartForm, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(content)
	}

	return models.ImageType(r.FormValue(imageTypeFormField)), models.ImageFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

func (h *Handler) listImages(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	images, err := h.services.UserImageService.ListImages(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteResponse(w, http.StatusOK, models.ImagesResponse{Images: images, Length: len(images)}, "images fetched successfully")
}

func (h *Handler) setActiveImage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.SetActiveImageRequest
	if err = decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.services.UserImageService.ActivateImage(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Int64("image_id", result.Image.ID).Str("image_type", string(result.Image.Type)).Msg("image activated")
	utils.WriteResponse(w, http.StatusOK, result, "active image updated successfully")
}

func (h *Handler) deleteImage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	imageID, err := strconv.ParseInt(chi.URLParam(r, imageIDParam), 10, 64)
	if err != nil || imageID <= 0 {
		writeError(w, r, ErrInvalidImageID)
		return
	}

	if err = h.services.UserImageService.DeleteImage(r.Context(), userID, imageID); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteResponse(w, http.StatusOK, nil, "image deleted successfully")
}
