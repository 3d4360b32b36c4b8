package objectstore

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// maxExtLen bounds the extension copied from an upload filename.
const maxExtLen = 8

// MinioStore uploads objects to a single bucket and returns public URLs.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewMinioStore creates a MinioStore over an already-connected client.
func NewMinioStore(client *minio.Client, cfg Config) *MinioStore {
	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
}

// Upload stores the bytes under a freshly generated collision-resistant key
// and returns the object's public URL. The caller-supplied filename only
// contributes its extension; it is never trusted as a storage key.
func (s *MinioStore) Upload(ctx context.Context, data []byte, contentType, filename string) (string, error) {
	key := objectKey(filename)

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", errors.Wrapf(ErrStorage, "put %s: %v", key, err)
	}

	return s.publicBaseURL + "/" + s.bucket + "/" + key, nil
}

// objectKey builds a random object key, keeping a short sanitized extension
// from the original filename when one is present.
func objectKey(filename string) string {
	key := uuid.New().String()

	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return key
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return key
		}
	}
	return key + ext
}
