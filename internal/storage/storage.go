package storage

import (
	"context"
	"io"
	"time"
)

// DefaultBucket is the bucket dashboard log artifacts are written to.
const DefaultBucket = "dashboard-logs"

// Client persists artifacts to a blob storage backend and mints signed URLs
// for them. Put and SignedURL are separate operations so a caller can decide
// not to sign after a failed write.
type Client interface {
	// Put writes a new object. Writes are create-if-absent: an object
	// already present under the same name is an error, never a silent
	// overwrite.
	Put(ctx context.Context, req *PutRequest) error

	// SignedURL mints a time-limited URL granting read access to the named
	// object without separate authentication.
	SignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type PutRequest struct {
	// ObjectName is the object path within the configured bucket.
	ObjectName string

	// Content is the data to be uploaded.
	Content io.Reader

	// ContentType is the MIME type of the content, e.g. "application/json".
	ContentType string

	// CacheControl is the Cache-Control header served with the object, e.g.
	// "max-age=3600". Empty means the backend default.
	CacheControl string
}
