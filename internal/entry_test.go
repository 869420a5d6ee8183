package internal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/imgbackup/internal/models"
	"github.com/starford/imgbackup/internal/storage"
)

func TestNewTransport(t *testing.T) {
	cfg := NewDefaultConfig().Storage
	cfg.FS.Root = filepath.Join(t.TempDir(), "nested", "root")

	store, files, err := newTransport(cfg)
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if _, ok := store.(*storage.FS); !ok || files == nil {
		t.Errorf("fs driver: store = %T, files = %v", store, files)
	}

	cfg.Driver = DriverHTTP
	cfg.HTTP.BaseURL = "http://localhost:9"
	store, files, err = newTransport(cfg)
	if err != nil {
		t.Fatalf("http: %v", err)
	}
	if _, ok := store.(*storage.HTTP); !ok || files != nil {
		t.Errorf("http driver: store = %T, files = %v", store, files)
	}

	cfg.Driver = DriverMinio
	cfg.Minio = MinioConfig{Endpoint: "localhost:9000", Bucket: "b", AccessKey: "k", SecretKey: "s"}
	store, files, err = newTransport(cfg)
	if err != nil {
		t.Fatalf("minio: %v", err)
	}
	if _, ok := store.(*storage.Minio); !ok || files != nil {
		t.Errorf("minio driver: store = %T, files = %v", store, files)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := RunSync(context.Background(), models.Selection{All: true}); err == nil {
		t.Error("expected error without config")
	}
}

func TestRunSync(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png" + r.URL.Path))
	}))
	defer images.Close()

	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Catalog.CardsDir = filepath.Join(dir, "cards")
	cfg.Catalog.SQLitePath = filepath.Join(dir, "imgbackup.db")
	cfg.Storage.FS.Root = filepath.Join(dir, "data")

	if err := os.MkdirAll(cfg.Catalog.CardsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	card := `{"name":"Alice","data":{"first_mes":"![x](` + images.URL + `/x.png)"}}`
	if err := os.WriteFile(filepath.Join(cfg.Catalog.CardsDir, "alice.json"), []byte(card), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := []Option{WithConfig(cfg), WithLogOutput(io.Discard)}
	report, err := RunSync(context.Background(), models.Selection{All: true}, opts...)
	if err != nil {
		t.Fatalf("RunSync: %v", err)
	}
	if report.Status != models.StatusDone || report.Count(models.OutcomeUploaded) != 1 {
		t.Fatalf("report = %+v", report)
	}
	got, err := os.ReadFile(filepath.Join(cfg.Storage.FS.Root, "images", "Alice", "x.png"))
	if err != nil || string(got) != "png/x.png" {
		t.Errorf("stored = %q, %v", got, err)
	}

	// Second pass finds the file already present.
	report, err = RunSync(context.Background(), models.Selection{Names: []string{"Alice"}}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if report.Count(models.OutcomeSkipped) != 1 || report.Count(models.OutcomeUploaded) != 0 {
		t.Errorf("second report = %+v", report)
	}

	report, err = RunSync(context.Background(), models.Selection{}, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != models.StatusNoSelection {
		t.Errorf("empty selection status = %q", report.Status)
	}
}
