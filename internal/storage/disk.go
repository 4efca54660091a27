package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// DiskClient writes artifacts to a directory on the local filesystem. The
// signed URL returned is a file:// URL - local files carry no expiry, so the
// requested expiry is ignored.
type DiskClient struct {
	baseDir string
}

// NewDiskClient creates a DiskClient that writes artifacts under baseDir.
// The directory is created if it does not already exist.
func NewDiskClient(baseDir string) (*DiskClient, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create local base directory %q: %w", baseDir, err)
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to resolve absolute path for %q: %w", baseDir, err)
	}
	return &DiskClient{baseDir: abs}, nil
}

// Put writes content to baseDir/objectName, creating any intermediate
// directories as needed. The file is opened O_EXCL to mirror the
// create-if-absent semantics of the GCS backend; an existing file yields
// ErrObjectExists.
func (c *DiskClient) Put(_ context.Context, req *PutRequest) error {
	dest := filepath.Join(c.baseDir, filepath.FromSlash(req.ObjectName))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("storage: failed to create directory for %q: %w", req.ObjectName, err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("storage: upload rejected for %q: %w", req.ObjectName, ErrObjectExists)
		}
		return fmt.Errorf("storage: failed to create file %q: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, req.Content); err != nil {
		return fmt.Errorf("storage: failed to write file %q: %w", dest, err)
	}
	return nil
}

// SignedURL returns a file:// URL pointing to the stored file. The file must
// already exist; signing an absent object is an error, matching the remote
// backends.
func (c *DiskClient) SignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	dest := filepath.Join(c.baseDir, filepath.FromSlash(objectName))
	if _, err := os.Stat(dest); err != nil {
		return "", fmt.Errorf("storage: failed to sign URL for %q: %w", objectName, err)
	}

	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(dest)}
	return fileURL.String(), nil
}
