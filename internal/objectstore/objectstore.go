// Package objectstore persists uploaded binaries in S3-compatible storage
// and hands back retrievable URLs.
package objectstore

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrStorage is returned for any object-store I/O or credential failure.
// It is transient from the caller's point of view; no retries happen here.
var ErrStorage = errors.New("object storage failure")

// Config holds the connection settings for the MinIO-compatible store.
type Config struct {
	Endpoint  string `usage:"object store endpoint host:port"`
	AccessKey string `usage:"object store access key" flag:"access-key"`
	SecretKey string `usage:"object store secret key" flag:"secret-key"`
	Bucket    string `default:"product-images" usage:"bucket for uploaded images"`
	Region    string `default:"" usage:"object store region"`
	UseSSL    bool   `default:"false" usage:"connect to the object store over TLS" flag:"use-ssl"`
	// PublicBaseURL is the externally reachable base for stored objects,
	// e.g. http://localhost:9000. Returned URLs are
	// <PublicBaseURL>/<bucket>/<key>.
	PublicBaseURL string `usage:"public base URL for stored objects" flag:"public-base-url"`
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("object store endpoint is required")
	case c.AccessKey == "":
		return errors.New("object store access key is required")
	case c.SecretKey == "":
		return errors.New("object store secret key is required")
	case c.Bucket == "":
		return errors.New("object store bucket is required")
	case c.PublicBaseURL == "":
		return errors.New("object store public base URL is required")
	}
	return nil
}

// NewMinIOClient creates a minio client from the config with sane transport
// timeouts.
func NewMinIOClient(cfg Config) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client *minio.Client, cfg Config) error {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", cfg.Bucket)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return errors.Wrapf(err, "create bucket %s", cfg.Bucket)
	}
	return nil
}

// CheckBucket verifies the configured bucket is reachable. Used as a
// readiness probe.
func CheckBucket(ctx context.Context, client *minio.Client, cfg Config) error {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return errors.Wrapf(err, "check bucket %s", cfg.Bucket)
	}
	if !exists {
		return errors.Errorf("bucket missing: %s", cfg.Bucket)
	}
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
