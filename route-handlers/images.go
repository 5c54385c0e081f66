package routehandlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/storage"
	"github.com/tdnguyen/novelnest/webutil"
)

// maxUploadBytes caps cover image uploads.
const maxUploadBytes = 10 << 20 // 10 MiB

type ImageHandler struct {
	Blobs storage.BlobStore
}

func NewImageHandler(blobs storage.BlobStore) *ImageHandler {
	return &ImageHandler{Blobs: blobs}
}

// HandleUpload stores a multipart-uploaded cover image and returns its
// blob ID for referencing from a book submission.
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		return webutil.ErrBadRequest("A 'file' form field is required: " + err.Error())
	}
	defer file.Close()

	blobID, err := h.Blobs.Upload(r.Context(), header.Filename, file)
	if err != nil {
		return fmt.Errorf("failed to store uploaded file %q: %w", header.Filename, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"fileId": blobID})
	return nil
}

// HandleDownload streams a stored image with the content type detected
// at upload time.
func (h *ImageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) error {
	blobID := chi.URLParam(r, "file_id")
	if _, err := uuid.Parse(blobID); err != nil {
		return webutil.ErrBadRequest("Invalid file ID format")
	}

	meta, reader, err := h.Blobs.Open(r.Context(), blobID)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return webutil.ErrNotFound("Image not found")
		}
		return fmt.Errorf("failed to open blob %s: %w", blobID, err)
	}
	defer reader.Close()

	w.Header().Set(webutil.HeaderContentType, meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		// Headers are gone; nothing left to do but report upstream.
		return fmt.Errorf("failed to stream blob %s: %w", blobID, err)
	}
	return nil
}
