package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore backs Store with an S3-compatible bucket via minio-go/v7,
// used for save-state checkpoints and milestone screenshots.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string // base URL clients use to read objects directly
}

// NewMinioStore dials endpoint with the given credentials and bucket.
// publicBase, if set, is used to build the returned public-read URL
// instead of the client-computed endpoint URL (useful behind a CDN).
func NewMinioStore(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: creating minio client for %s: %w", endpoint, err)
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	if publicBase == "" {
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket)
	}
	return &MinioStore{client: client, bucket: bucket, publicBase: strings.TrimSuffix(publicBase, "/")}, nil
}

func (s *MinioStore) Put(ctx context.Context, path string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("blob: put %s: %w", path, err)
	}
	return s.publicBase + "/" + url.PathEscape(path), nil
}

func (s *MinioStore) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("blob: list %s: %w", prefix, obj.Err)
		}
		out = append(out, Object{
			Path:       obj.Key,
			Size:       obj.Size,
			UploadedAt: obj.LastModified,
			URL:        s.publicBase + "/" + url.PathEscape(obj.Key),
		})
	}
	return out, nil
}

func (s *MinioStore) Get(ctx context.Context, path string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", path, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("blob: reading %s: %w", path, err)
	}
	return data, nil
}

