package transport

import (
	"errors"
	"net/http"

	"stockroom/internal/domain"
	"stockroom/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadHandler handles product image upload and removal.
type UploadHandler struct {
	images   service.ImageStore
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadHandler(images service.ImageStore, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		images:   images,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// RegisterRoutes registers the upload routes
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/upload", h.UploadImage)
	r.Delete("/api/upload", h.DeleteImage)
}

// UploadImage handles POST /api/upload (multipart, field "image")
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// The body cap leaves headroom for multipart framing around the
	// payload ceiling enforced by the image store.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	imageURL, err := h.images.Save(
		r.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPayloadTooLarge):
			respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, domain.ErrUnsupportedMedia):
			respondError(w, http.StatusUnsupportedMediaType, "only image uploads are allowed")
		default:
			h.logger.Error("Failed to store upload", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to store upload")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"imageUrl": imageURL,
	})
}

// deleteImageRequest is the DELETE /api/upload payload.
type deleteImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// DeleteImage handles DELETE /api/upload
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	var req deleteImageRequest
	if err := decodeBody(r, &req); err != nil || req.ImageURL == "" {
		respondError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	err := h.images.Remove(r.Context(), req.ImageURL)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		if errors.Is(err, domain.ErrValidation) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to remove upload",
			zap.String("image_url", req.ImageURL),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to remove upload")
		return
	}

	// A file that is already gone still reports success.
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
