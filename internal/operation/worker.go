package operation

import (
	"context"
	"errors"

	"github.com/tomasbasham/dashlog/internal/dashlog"
)

// WorkerOptions configures an upload worker invocation.
type WorkerOptions struct {
	OperationID string
	Scope       dashlog.Scope
	Store       Store
	Uploader    *dashlog.Uploader
}

// Run executes a single upload attempt and transitions the operation through
// running → complete | failed.
//
// Run is intended to be called in a separate goroutine; it owns the full
// lifecycle of the operation from the moment it is called. An empty
// breadcrumb snapshot is not a failure: the operation completes with no
// signed URL, which callers surface as "attachment unavailable".
func Run(ctx context.Context, opts WorkerOptions) {
	if err := opts.Store.MarkRunning(opts.OperationID); err != nil {
		// If we cannot even mark it running the store is broken; nothing to do.
		return
	}

	signedURL, err := opts.Uploader.Attempt(ctx, opts.Scope)
	if err != nil {
		if errors.Is(err, dashlog.ErrEmptySnapshot) {
			_ = opts.Store.MarkComplete(opts.OperationID, "")
			return
		}
		_ = opts.Store.MarkFailed(opts.OperationID, err)
		return
	}

	_ = opts.Store.MarkComplete(opts.OperationID, signedURL)
}
