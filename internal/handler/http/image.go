package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/maticamisay/eldisco-ecommerce/internal/filestore"
	apperrors "github.com/maticamisay/eldisco-ecommerce/pkg/errors"
	"github.com/maticamisay/eldisco-ecommerce/pkg/httputil"
)

// ImageResolver resolves stored files to signed URLs.
type ImageResolver interface {
	GetDownloadURL(ctx context.Context, filename string) (*filestore.DownloadURL, error)
	ListFiles(ctx context.Context) ([]filestore.FileInfo, error)
}

// ImageHandler exposes the file-storage lookups.
type ImageHandler struct {
	images ImageResolver
	logger *slog.Logger
}

// NewImageHandler creates a new image HTTP handler.
func NewImageHandler(images ImageResolver, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger,
	}
}

type imageURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
}

type fileListResponse struct {
	Files []filestore.FileInfo `json:"files"`
}

// GetImageURL handles GET /api/images/{filename}
func (h *ImageHandler) GetImageURL(w http.ResponseWriter, r *http.Request) {
	filename, err := filenameParam(r)
	if err != nil {
		httputil.WriteParamError(w, r, "filename is not a valid path segment")
		return
	}

	d, err := h.images.GetDownloadURL(r.Context(), filename)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, imageURLResponse{DownloadURL: d.DownloadURL, Filename: d.Filename})
}

// filenameParam decodes the {filename} segment exactly once. chi matches on
// RawPath when the request carries one (e.g. an encoded slash) and on the
// already decoded Path otherwise.
func filenameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// ListImages handles GET /api/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	files, err := h.images.ListFiles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fileListResponse{Files: files})
}

// writeError maps file-storage failures: timeouts to 504, anything else the
// service reported to 502 with its message.
func (h *ImageHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fsErr *filestore.Error
	switch {
	case errors.Is(err, filestore.ErrMissingFilename):
		httputil.WriteParamError(w, r, filestore.ErrMissingFilename.Error())
	case !errors.As(err, &fsErr):
		httputil.WriteError(w, r, err, h.logger)
	case errors.Is(err, filestore.ErrTimeout):
		h.logger.WarnContext(r.Context(), "file storage timeout", slog.String("op", fsErr.Op))
		httputil.WriteError(w, r, apperrors.Timeout(fsErr.Message), h.logger)
	default:
		httputil.WriteError(w, r, apperrors.Upstream(fsErr.Message, err), h.logger)
	}
}
