package imgsync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/imgbackup/internal/apperr"
)

func TestHTTPFetcher_OK(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0, 0, "tester/1")
	data, err := f.Fetch(context.Background(), srv.URL+"/a.png?x=1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("data = %q", data)
	}
	if ua != "tester/1" {
		t.Errorf("user agent = %q", ua)
	}
}

func TestHTTPFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(0, 0, "").Fetch(context.Background(), srv.URL+"/missing.png")
	if !errors.Is(err, apperr.ErrBadStatus) {
		t.Errorf("err = %v, want ErrBadStatus", err)
	}
}

func TestHTTPFetcher_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	if _, err := NewHTTPFetcher(0, 16, "").Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected size limit error")
	}
}

func TestHTTPFetcher_Scheme(t *testing.T) {
	if _, err := NewHTTPFetcher(0, 0, "").Fetch(context.Background(), "ftp://h/a.png"); err == nil {
		t.Error("expected scheme error")
	}
}
