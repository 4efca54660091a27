// Package storage provides an abstraction for persisting log artifacts and
// generating time-limited signed URLs for retrieval. The GCS implementation
// is the production backend; the interface allows alternative implementations
// for testing and local development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned by Put when an object already exists under the
// requested name. Callers derive unique names, so hitting this indicates a
// key derivation bug rather than a transient condition.
var ErrObjectExists = errors.New("storage: object already exists")

// GCSClient stores objects in a Google Cloud Storage bucket.
type GCSClient struct {
	client *storage.Client
	bucket string
}

// NewGCSClient creates a GCSClient for the given bucket. opts are passed
// through to the underlying GCS client, allowing credential injection. An
// empty bucket name selects DefaultBucket.
func NewGCSClient(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSClient, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create GCS client: %w", err)
	}
	return &GCSClient{client: client, bucket: bucket}, nil
}

// Put writes content to GCS at req.ObjectName. The write carries a
// DoesNotExist precondition so a concurrent or repeated write to the same
// name fails with ErrObjectExists instead of clobbering the stored artifact.
func (c *GCSClient) Put(ctx context.Context, req *PutRequest) error {
	obj := c.client.Bucket(c.bucket).Object(req.ObjectName)
	w := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = req.ContentType
	w.CacheControl = req.CacheControl

	if _, err := io.Copy(w, req.Content); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: upload write failed for %q: %w", req.ObjectName, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("storage: upload rejected for %q: %w", req.ObjectName, ErrObjectExists)
		}
		return fmt.Errorf("storage: upload close failed for %q: %w", req.ObjectName, err)
	}
	return nil
}

// SignedURL mints a GET-scoped signed URL for objectName. The V2 signing
// scheme is used because V4 caps expiry at 7 days, far short of the
// effectively-permanent links support workflows hand out.
func (c *GCSClient) SignedURL(_ context.Context, objectName string, expiry time.Duration) (string, error) {
	signedURL, err := c.client.Bucket(c.bucket).SignedURL(objectName, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(expiry),
		Scheme:  storage.SigningSchemeV2,
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to sign URL for %q: %w", objectName, err)
	}
	return signedURL, nil
}

// isPreconditionFailed reports whether err is the GCS rejection of a
// DoesNotExist conditional write.
func isPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed
}
