package operation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
	"github.com/tomasbasham/dashlog/internal/dashlog"
	"github.com/tomasbasham/dashlog/internal/logging"
	"github.com/tomasbasham/dashlog/internal/storage"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()

	op, err := store.Create("proj-1")
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, StatusPending, op.Status)
	assert.Equal(t, "proj-1", op.Scope)

	require.NoError(t, store.MarkRunning(op.ID))
	got, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	require.NoError(t, store.MarkComplete(op.ID, "https://signed.example/key"))
	got, err = store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, "https://signed.example/key", got.SignedURL)
}

func TestMemoryStore_MarkFailed(t *testing.T) {
	store := NewMemoryStore()

	op, err := store.Create("")
	require.NoError(t, err)

	require.NoError(t, store.MarkFailed(op.ID, errors.New("backend down")))
	got, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "backend down", got.Error)
}

func TestMemoryStore_UnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get("missing")
	assert.Error(t, err)
	assert.Error(t, store.MarkRunning("missing"))
	assert.Error(t, store.MarkComplete("missing", ""))
	assert.Error(t, store.MarkFailed("missing", errors.New("x")))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()

	op, err := store.Create("proj-1")
	require.NoError(t, err)

	got, err := store.Get(op.ID)
	require.NoError(t, err)
	got.Status = StatusFailed

	again, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again.Status)
}

// echoClient signs whatever was last put with a deterministic URL.
type echoClient struct {
	putErr error
}

func (c *echoClient) Put(_ context.Context, req *storage.PutRequest) error {
	return c.putErr
}

func (c *echoClient) SignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://signed.example/" + objectName, nil
}

func newWorkerUploader(t *testing.T, client storage.Client, records ...breadcrumb.Record) *dashlog.Uploader {
	t.Helper()
	u, err := dashlog.NewUploader(dashlog.Config{
		ClientFactory: func(context.Context) (storage.Client, error) { return client, nil },
		Primary:       func() []breadcrumb.Record { return records },
		Logger:        logging.Discard(),
	})
	require.NoError(t, err)
	return u
}

func TestRun_Complete(t *testing.T) {
	store := NewMemoryStore()
	op, err := store.Create("proj-1")
	require.NoError(t, err)

	Run(context.Background(), WorkerOptions{
		OperationID: op.ID,
		Scope:       dashlog.NamedScope("proj-1"),
		Store:       store,
		Uploader:    newWorkerUploader(t, &echoClient{}, breadcrumb.Record{"type": "click"}),
	})

	got, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.True(t, strings.HasPrefix(got.SignedURL, "https://signed.example/proj-1/"), "got %q", got.SignedURL)
}

func TestRun_EmptySnapshotCompletesWithoutURL(t *testing.T) {
	store := NewMemoryStore()
	op, err := store.Create("proj-1")
	require.NoError(t, err)

	Run(context.Background(), WorkerOptions{
		OperationID: op.ID,
		Scope:       dashlog.NamedScope("proj-1"),
		Store:       store,
		Uploader:    newWorkerUploader(t, &echoClient{}),
	})

	got, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Empty(t, got.SignedURL)
	assert.Empty(t, got.Error)
}

func TestRun_UploadFailure(t *testing.T) {
	store := NewMemoryStore()
	op, err := store.Create("proj-1")
	require.NoError(t, err)

	Run(context.Background(), WorkerOptions{
		OperationID: op.ID,
		Scope:       dashlog.NamedScope("proj-1"),
		Store:       store,
		Uploader:    newWorkerUploader(t, &echoClient{putErr: errors.New("quota exceeded")}, breadcrumb.Record{"type": "click"}),
	})

	got, err := store.Get(op.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "quota exceeded")
}
