// Package dashlog implements the dashboard log upload pipeline: snapshot the
// recent breadcrumbs, sanitize them, persist them as an immutable JSON
// artifact in blob storage, and mint a long-lived signed URL a support agent
// can open.
//
// The pipeline is best-effort enrichment for a support workflow, not a
// required step in it. The public entry point never propagates a fault to
// its caller; every failure collapses to an absent result after being logged
// with full detail.
package dashlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
	"github.com/tomasbasham/dashlog/internal/logging"
	"github.com/tomasbasham/dashlog/internal/sanitize"
	"github.com/tomasbasham/dashlog/internal/storage"
)

// Component tags every diagnostic the pipeline logs.
const Component = "dashlog"

const (
	// signedURLExpiry makes the minted link effectively permanent for
	// support purposes: 10 years, expressed in seconds.
	signedURLExpiry = 315360000 * time.Second

	// artifactCacheControl keeps intermediary caching short-lived.
	artifactCacheControl = "max-age=3600"

	artifactContentType = "application/json"
)

// sentinelScope is the path segment used when no caller context is
// available. It keeps key derivation total without magic strings leaking
// into call sites.
const sentinelScope = "unassociated"

// Scope identifies the context a log artifact belongs to: either a named
// identifier (e.g. a project ID) or no associated context at all. The zero
// value is Unassociated.
type Scope struct {
	name string
}

// Unassociated is the Scope used when no identifier is available.
var Unassociated = Scope{}

// NamedScope creates a Scope for the given identifier. A blank identifier
// yields Unassociated.
func NamedScope(name string) Scope {
	return ScopeFromHint(name)
}

// ScopeFromHint resolves a free-form caller hint into a Scope: the trimmed
// hint when non-empty, else Unassociated.
func ScopeFromHint(hint string) Scope {
	trimmed := strings.TrimSpace(hint)
	if trimmed == "" {
		return Unassociated
	}
	return Scope{name: trimmed}
}

// PathSegment maps the Scope to its object key prefix.
func (s Scope) PathSegment() string {
	if s.name == "" {
		return sentinelScope
	}
	return s.name
}

// Stage identifies where in the pipeline a failure occurred.
type Stage string

const (
	// StageClient covers storage client construction.
	StageClient Stage = "client"
	// StageUpload covers the blob write.
	StageUpload Stage = "upload"
	// StageSign covers minting the signed URL.
	StageSign Stage = "sign"
	// StageInternal covers anything unexpected: serialization failures and
	// recovered panics.
	StageInternal Stage = "internal"
)

// ErrEmptySnapshot signals that there was nothing to upload. It is a no-op
// condition, not a failure: no storage call has been made when it is
// returned.
var ErrEmptySnapshot = errors.New("dashlog: empty breadcrumb snapshot")

// Failure wraps a pipeline error with the stage it occurred in, keeping
// the detail available to internal callers (metrics, tests) that the public
// edge deliberately discards.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("dashlog: %s stage failed: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// ClientFactory produces an authenticated storage client scoped to the log
// bucket. It is invoked once per upload attempt so construction failures
// surface as StageClient failures rather than at wiring time.
type ClientFactory func(ctx context.Context) (storage.Client, error)

// Config wires an Uploader.
type Config struct {
	// ClientFactory is required.
	ClientFactory ClientFactory

	// Primary is the breadcrumb source consulted first. Required.
	Primary breadcrumb.Source

	// Secondary is an optional mirrored source, consulted only when Primary
	// yields nothing.
	Secondary breadcrumb.Source

	// Sanitize defaults to sanitize.Redact().
	Sanitize sanitize.Func

	// Logger defaults to a slog-backed logger tagged with the dashlog
	// component.
	Logger logging.Logger
}

// Uploader runs the capture→sanitize→upload→link-mint pipeline. Safe for
// concurrent use: each call derives its own unique object key and holds no
// mutable state.
type Uploader struct {
	newClient ClientFactory
	primary   breadcrumb.Source
	secondary breadcrumb.Source
	sanitize  sanitize.Func
	logger    logging.Logger

	// Injection points for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewUploader creates an Uploader from cfg.
func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.ClientFactory == nil {
		return nil, fmt.Errorf("dashlog: ClientFactory must not be nil")
	}
	if cfg.Primary == nil {
		return nil, fmt.Errorf("dashlog: Primary source must not be nil")
	}

	san := cfg.Sanitize
	if san == nil {
		san = sanitize.Redact()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSlog(nil, Component)
	}

	return &Uploader{
		newClient: cfg.ClientFactory,
		primary:   cfg.Primary,
		secondary: cfg.Secondary,
		sanitize:  san,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// UploadDashboardLog captures, sanitizes and uploads the current breadcrumb
// snapshot and returns a signed URL for it. The boolean is false when no
// URL is available, either because there was nothing to upload or because
// some stage failed; the caller treats both as "log attachment unavailable".
// It never panics and never returns an error.
func (u *Uploader) UploadDashboardLog(ctx context.Context, scopeHint string) (string, bool) {
	signedURL, err := u.Attempt(ctx, ScopeFromHint(scopeHint))
	if err != nil {
		if errors.Is(err, ErrEmptySnapshot) {
			u.logger.Debug("no breadcrumbs to upload")
			return "", false
		}

		var failure *Failure
		if errors.As(err, &failure) {
			u.logger.Error("dashboard log upload failed", "stage", string(failure.Stage), "error", failure.Err)
		} else {
			u.logger.Error("dashboard log upload failed", "error", err)
		}
		return "", false
	}
	return signedURL, true
}

// Attempt runs a single pass of the pipeline and reports the full failure
// detail. Callers wanting the public never-fails contract use
// UploadDashboardLog, which downgrades this result.
func (u *Uploader) Attempt(ctx context.Context, scope Scope) (signedURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			signedURL = ""
			err = &Failure{Stage: StageInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	records := u.sanitize(breadcrumb.FirstNonEmpty(u.primary, u.secondary))
	if len(records) == 0 {
		return "", ErrEmptySnapshot
	}

	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", &Failure{Stage: StageInternal, Err: err}
	}

	client, err := u.newClient(ctx)
	if err != nil {
		return "", &Failure{Stage: StageClient, Err: err}
	}

	objectName := u.objectName(scope)
	put := &storage.PutRequest{
		ObjectName:   objectName,
		Content:      bytes.NewReader(body),
		ContentType:  artifactContentType,
		CacheControl: artifactCacheControl,
	}
	if err := client.Put(ctx, put); err != nil {
		return "", &Failure{Stage: StageUpload, Err: err}
	}

	signedURL, err = client.SignedURL(ctx, objectName, signedURLExpiry)
	if err != nil {
		return "", &Failure{Stage: StageSign, Err: err}
	}
	if signedURL == "" {
		return "", &Failure{Stage: StageSign, Err: errors.New("backend returned no URL")}
	}

	u.logger.Info("dashboard log uploaded", "object", objectName, "records", len(records))
	return signedURL, nil
}

// objectName derives the unique key the artifact is stored under:
// {scope}/{unix-millis}-{uuid}.json. The timestamp orders artifacts within
// a scope; the UUID alone guarantees two calls never collide.
func (u *Uploader) objectName(scope Scope) string {
	return fmt.Sprintf("%s/%d-%s.json", scope.PathSegment(), u.now().UnixMilli(), u.newID())
}
