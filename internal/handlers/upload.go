package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/catchlog-backend/internal/services"
)

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func uploadFolder(w http.ResponseWriter, purpose string) (string, bool) {
	folder, ok := services.MediaFolder(purpose)
	if !ok {
		writeError(w, http.StatusBadRequest, "purpose must be spot, catch or avatar")
	}
	return folder, ok
}

// Upload stores an image for a spot, catch or avatar (?purpose=).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Uploader == nil {
		unavailable(w, "File upload")
		return
	}
	folder, ok := uploadFolder(w, r.URL.Query().Get("purpose"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		writeError(w, http.StatusBadRequest, "Only images can be uploaded")
		return
	}

	url, err := h.Uploader.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		writeErr(w, "upload file", err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}

// Presign returns a presigned S3 PUT URL, or a GET URL when key is set.
func (h *Handler) Presign(w http.ResponseWriter, r *http.Request) {
	if h.Presigner == nil {
		unavailable(w, "Direct upload")
		return
	}
	var req struct {
		Purpose  string `json:"purpose"`
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
		Key      string `json:"key"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Key != "" {
		url, err := h.Presigner.ReadURL(r.Context(), req.Key)
		if err != nil {
			writeErr(w, "presign read", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "url": url})
		return
	}

	folder, ok := uploadFolder(w, req.Purpose)
	if !ok {
		return
	}
	if req.FileName == "" || !strings.HasPrefix(req.FileType, "image/") {
		writeError(w, http.StatusBadRequest, "file_name and an image file_type are required")
		return
	}
	url, key, err := h.Presigner.UploadURL(r.Context(), folder, req.FileName, req.FileType)
	if err != nil {
		writeErr(w, "presign upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
		"key":     key,
	})
}
