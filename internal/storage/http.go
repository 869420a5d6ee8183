package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/starford/imgbackup/internal/apperr"
)

// Upload encodings understood by the remote file API.
const (
	ModeMultipart = "multipart"
	ModeJSON      = "json"
)

// Endpoints of the remote file API, relative to its base URL.
const (
	ListEndpoint   = "/api/files/list"
	UploadEndpoint = "/api/files/upload"
)

// UploadRequest is the JSON upload envelope. Data is base64 (standard
// encoding) because the endpoint accepts no binary body.
type UploadRequest struct {
	Path string `json:"path"`
	Data string `json:"data"`
}

// HTTPOptions configures an HTTP transport.
type HTTPOptions struct {
	BaseURL   string
	Mode      string
	Token     string
	Namespace string
	Timeout   time.Duration
	Client    *http.Client
}

// HTTP implements Transport against a remote file API.
type HTTP struct {
	base      string
	mode      string
	token     string
	namespace string
	client    *http.Client
}

// NewHTTP creates an HTTP transport. Mode defaults to multipart.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("storage: invalid base url %q: %w", opts.BaseURL, err)
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeMultipart
	}
	if mode != ModeMultipart && mode != ModeJSON {
		return nil, fmt.Errorf("storage: unknown upload mode %q", mode)
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return &HTTP{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		mode:      mode,
		token:     opts.Token,
		namespace: ns,
		client:    client,
	}, nil
}

// List fetches the character's filenames from the list endpoint.
func (h *HTTP) List(ctx context.Context, character string) ([]string, error) {
	q := url.Values{"path": {Dir(h.namespace, character)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.base+ListEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build list request: %w", err)
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("storage: decode file list: %w", err)
	}
	return names, nil
}

// Write uploads data using the configured mode.
func (h *HTTP) Write(ctx context.Context, character, filename string, data []byte) error {
	var (
		body        io.Reader
		contentType string
		err         error
	)
	switch h.mode {
	case ModeJSON:
		body, err = h.jsonBody(character, filename, data)
		contentType = "application/json"
	default:
		body, contentType, err = h.multipartBody(character, filename, data)
	}
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+UploadEndpoint, body)
	if err != nil {
		return fmt.Errorf("storage: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := h.do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (h *HTTP) jsonBody(character, filename string, data []byte) (io.Reader, error) {
	payload, err := json.Marshal(UploadRequest{
		Path: path.Join(Dir(h.namespace, character), filename),
		Data: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: encode upload: %w", err)
	}
	return bytes.NewReader(payload), nil
}

func (h *HTTP) multipartBody(character, filename string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", mimetype.Detect(data).String())
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("storage: create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("storage: write file part: %w", err)
	}
	if err := mw.WriteField("path", Dir(h.namespace, character)); err != nil {
		return nil, "", fmt.Errorf("storage: write path field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("storage: close multipart: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// do sends req and turns any non-2xx response into an ErrBadStatus error.
func (h *HTTP) do(req *http.Request) (*http.Response, error) {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("storage: %s %s: %w: %d %s", req.Method, req.URL.Path, apperr.ErrBadStatus,
			resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
