package storage

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakeObjects struct {
	listed  []minio.ObjectInfo
	gotOpts minio.ListObjectsOptions
	puts    map[string][]byte
	types   map[string]string
	putErr  error
}

func (f *fakeObjects) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.gotOpts = opts
	ch := make(chan minio.ObjectInfo, len(f.listed))
	for _, o := range f.listed {
		ch <- o
	}
	close(ch)
	return ch
}

func (f *fakeObjects) PutObject(_ context.Context, _, object string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(reader)
	if f.puts == nil {
		f.puts = map[string][]byte{}
		f.types = map[string]string{}
	}
	f.puts[object] = data
	f.types[object] = opts.ContentType
	return minio.UploadInfo{Key: object}, nil
}

func TestMinioList(t *testing.T) {
	fake := &fakeObjects{listed: []minio.ObjectInfo{
		{Key: "backups/images/Alice/a.png"},
		{Key: "backups/images/Alice/sub/"},
		{Key: "backups/images/Alice/B.JPG"},
	}}
	m := newMinio(fake, MinioOptions{Bucket: "b", Prefix: "backups/"})

	got, err := m.List(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"a.png", "B.JPG"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
	if fake.gotOpts.Prefix != "backups/images/Alice/" {
		t.Errorf("prefix = %q", fake.gotOpts.Prefix)
	}
}

func TestMinioListError(t *testing.T) {
	fake := &fakeObjects{listed: []minio.ObjectInfo{{Err: errors.New("access denied")}}}
	m := newMinio(fake, MinioOptions{Bucket: "b"})
	if _, err := m.List(context.Background(), "Alice"); err == nil {
		t.Error("expected list error")
	}
}

func TestMinioWrite(t *testing.T) {
	fake := &fakeObjects{}
	m := newMinio(fake, MinioOptions{Bucket: "b"})
	png := []byte("\x89PNG\r\n\x1a\n0000")
	if err := m.Write(context.Background(), "Alice", "1.png", png); err != nil {
		t.Fatalf("Write: %v", err)
	}
	key := "images/Alice/1.png"
	if string(fake.puts[key]) != string(png) {
		t.Errorf("stored = %q", fake.puts[key])
	}
	if fake.types[key] != "image/png" {
		t.Errorf("content type = %q, want image/png", fake.types[key])
	}
}

func TestMinioWriteError(t *testing.T) {
	fake := &fakeObjects{putErr: errors.New("quota")}
	m := newMinio(fake, MinioOptions{Bucket: "b"})
	if err := m.Write(context.Background(), "Alice", "1.png", []byte("x")); err == nil {
		t.Error("expected put error")
	}
}
