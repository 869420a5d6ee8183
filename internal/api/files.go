package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/starford/imgbackup/internal/apperr"
	"github.com/starford/imgbackup/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// FileHandler exposes a local store through the remote file API that the
// HTTP transport speaks.
type FileHandler struct {
	store *storage.FS
}

// NewFileHandler creates a handler serving store.
func NewFileHandler(store *storage.FS) *FileHandler {
	return &FileHandler{store: store}
}

// List handles GET /api/files/list?path=<dir> and responds with a JSON array
// of filenames.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")
	if dir == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	names, err := h.store.ListDir(dir)
	if err != nil {
		h.fail(w, "list files failed", dir, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Upload handles POST /api/files/upload. It accepts either a multipart form
// (part "file", field "path" naming the folder) or a JSON envelope with the
// full destination path and base64 data.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var (
		dest string
		data []byte
		err  error
	)
	if mediaType == "application/json" {
		dest, data, err = readJSONUpload(r)
	} else {
		dest, data, err = readMultipartUpload(r)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := h.store.WriteFile(dest, data); err != nil {
		h.fail(w, "store upload failed", dest, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{Path: dest, Size: len(data)})
}

func (h *FileHandler) fail(w http.ResponseWriter, msg, p string, err error) {
	if errors.Is(err, apperr.ErrInvalidPath) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	slog.Error(msg, slog.String("path", p), slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

func readJSONUpload(r *http.Request) (string, []byte, error) {
	var req storage.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, errors.New("invalid JSON body")
	}
	if req.Path == "" || strings.HasSuffix(req.Path, "/") {
		return "", nil, errors.New("path must name a file")
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return "", nil, errors.New("data must be base64")
	}
	return req.Path, data, nil
}

func readMultipartUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, errors.New("file too large or invalid multipart")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errors.New("missing 'file' field in multipart form")
	}
	defer file.Close()

	dir := r.FormValue("path")
	if dir == "" {
		return "", nil, errors.New("missing 'path' field in multipart form")
	}
	name := header.Filename
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", nil, errors.New("invalid filename")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.New("failed to read upload")
	}
	return path.Join(dir, name), data, nil
}
