package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectAPI is the subset of *minio.Client used by Minio.
type objectAPI interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioOptions configures an S3-compatible object store transport.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	Prefix    string
	Secure    bool
	Namespace string
}

// Minio implements Transport on top of an S3-compatible bucket. Objects live
// at <prefix><namespace>/<character>/<filename>.
type Minio struct {
	client    objectAPI
	bucket    string
	prefix    string
	namespace string
}

// NewMinio connects a MinIO client with static credentials.
func NewMinio(opts MinioOptions) (*Minio, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: minio client: %w", err)
	}
	return newMinio(client, opts), nil
}

func newMinio(client objectAPI, opts MinioOptions) *Minio {
	ns := opts.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return &Minio{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    opts.Prefix,
		namespace: ns,
	}
}

func (m *Minio) folder(character string) string {
	return m.prefix + Dir(m.namespace, character) + "/"
}

// List returns the object names directly under the character's folder.
func (m *Minio) List(ctx context.Context, character string) ([]string, error) {
	if err := checkSegment("character", character); err != nil {
		return nil, err
	}
	folder := m.folder(character)
	var out []string
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: folder}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", folder, obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, folder)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// Write puts data as an object with its detected content type.
func (m *Minio) Write(ctx context.Context, character, filename string, data []byte) error {
	if err := checkSegment("character", character); err != nil {
		return err
	}
	if err := checkSegment("filename", filename); err != nil {
		return err
	}
	key := m.folder(character) + filename
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimetype.Detect(data).String(),
	})
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}
