package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
	"github.com/tomasbasham/dashlog/internal/dashlog"
	"github.com/tomasbasham/dashlog/internal/storage"
)

type UploadOptions struct {
	records []breadcrumb.Record

	FilePath  string
	ScopeHint string
	Bucket    string
	LocalDir  string

	iooption.IOStreams
}

var (
	uploadLong = templates.LongDesc(`
		Read a breadcrumb snapshot from a JSON file (or stdin), sanitize it
		and upload it as a support-retrievable artifact, printing the signed
		URL on success.`)

	uploadExample = templates.Examples(`
		# Upload breadcrumbs for a project from a file
		dashlog upload --file breadcrumbs.json --scope proj-1 --bucket dashboard-logs

		# Pipe breadcrumbs through stdin and store them locally
		cat breadcrumbs.json | dashlog upload --dir ./artifacts`)
)

func NewUploadOptions(streams iooption.IOStreams) *UploadOptions {
	return &UploadOptions{
		IOStreams: streams,
	}
}

func NewUploadCommand(o *UploadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "upload",
		DisableFlagsInUseLine: true,
		Short:                 "Upload a breadcrumb snapshot and print its signed URL",
		Long:                  uploadLong,
		Example:               uploadExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	// Add persistent config flags.
	pflags := cmd.PersistentFlags()

	pflags.StringVarP(&o.FilePath, "file", "f", "", "JSON file containing an array of breadcrumb records (default: stdin)")
	pflags.StringVarP(&o.ScopeHint, "scope", "s", "", "Scope identifier the artifact is filed under, e.g. a project ID")
	pflags.StringVarP(&o.Bucket, "bucket", "b", "", "GCS bucket name for artifact storage")
	pflags.StringVarP(&o.LocalDir, "dir", "d", "", "Local directory for artifact storage instead of GCS")

	return cmd
}

func (o *UploadOptions) Complete(cmd *cobra.Command, args []string) error {
	in := io.Reader(o.In)
	if o.FilePath != "" {
		f, err := os.Open(o.FilePath)
		if err != nil {
			return fmt.Errorf("failed to open breadcrumb file: %w", err)
		}
		defer f.Close()
		in = f
	}

	if err := json.NewDecoder(in).Decode(&o.records); err != nil {
		return fmt.Errorf("failed to decode breadcrumb records: %w", err)
	}
	return nil
}

func (o *UploadOptions) Validate() error {
	if o.Bucket != "" && o.LocalDir != "" {
		return fmt.Errorf("--bucket and --dir are mutually exclusive")
	}
	return nil
}

func (o *UploadOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := clientFactory(o.Bucket, o.LocalDir)

	uploader, err := dashlog.NewUploader(dashlog.Config{
		ClientFactory: factory,
		Primary:       func() []breadcrumb.Record { return o.records },
	})
	if err != nil {
		return fmt.Errorf("failed to initialise uploader: %w", err)
	}

	signedURL, ok := uploader.UploadDashboardLog(ctx, o.ScopeHint)
	if !ok {
		fmt.Fprintln(o.ErrOut, "Log attachment unavailable")
		return nil
	}

	fmt.Fprintln(o.Out, signedURL)
	return nil
}

// clientFactory selects the storage backend: a local directory when --dir is
// given, otherwise GCS.
func clientFactory(bucket, localDir string) dashlog.ClientFactory {
	if localDir != "" {
		return func(context.Context) (storage.Client, error) {
			return storage.NewDiskClient(localDir)
		}
	}
	return func(ctx context.Context) (storage.Client, error) {
		return storage.NewGCSClient(ctx, bucket)
	}
}
