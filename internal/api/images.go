package api

import (
	"io"
	"net/http"

	"github.com/erazemk/garderoba/internal/imaging"
)

// maxUploadSize bounds image uploads before normalization.
const maxUploadSize = 10 << 20

// readImageUpload reads the "image" part of a multipart upload and runs
// it through the normalization pipeline. On failure it writes the error
// response itself and returns ok=false.
func readImageUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, "", false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return nil, "", false
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read image")
		return nil, "", false
	}

	data, mime, err := imaging.Normalize(raw)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image must be a valid JPEG or PNG")
		return nil, "", false
	}
	return data, mime, true
}

// writeImage serves a stored image blob, or 404 when there is none.
func writeImage(w http.ResponseWriter, data []byte, mime string) {
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
