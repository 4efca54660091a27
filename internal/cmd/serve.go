package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/dashlog/internal/breadcrumb"
	"github.com/tomasbasham/dashlog/internal/dashlog"
	"github.com/tomasbasham/dashlog/internal/logging"
	"github.com/tomasbasham/dashlog/internal/operation"
	"github.com/tomasbasham/dashlog/internal/server"
)

type ServeOptions struct {
	Port           int
	GCSBucket      string
	LocalDir       string
	BufferCapacity int
}

var (
	serveLong = templates.LongDesc(`Start the dashboard log upload HTTP server.`)

	serveExample = templates.Examples(`
		# Start on the default port
		dashlog serve

		# Start on a custom port with a specific GCS bucket
		dashlog serve --port 9090 --bucket my-log-bucket`)
)

func NewServeOptions() *ServeOptions {
	return &ServeOptions{}
}

func NewServeCommand(o *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the dashboard log upload HTTP server",
		Long:    serveLong,
		Example: serveExample,
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

	cmd.Flags().IntVarP(&o.Port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&o.GCSBucket, "bucket", "b", "", "GCS bucket name for artifact storage (default: dashboard-logs)")
	cmd.Flags().StringVarP(&o.LocalDir, "dir", "d", "", "Local directory for artifact storage instead of GCS")
	cmd.Flags().IntVarP(&o.BufferCapacity, "buffer-capacity", "c", breadcrumb.DefaultCapacity, "Maximum breadcrumbs retained in the in-process buffer")

	return cmd
}

func (o *ServeOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *ServeOptions) Validate() error {
	if o.GCSBucket != "" && o.LocalDir != "" {
		return fmt.Errorf("--bucket and --dir are mutually exclusive")
	}
	return nil
}

func (o *ServeOptions) Run() error {
	buffer := breadcrumb.NewBuffer(o.BufferCapacity)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	uploader, err := dashlog.NewUploader(dashlog.Config{
		ClientFactory: clientFactory(o.GCSBucket, o.LocalDir),
		Primary:       buffer.Snapshot,
		Logger:        logging.NewSlog(logger, dashlog.Component),
	})
	if err != nil {
		return fmt.Errorf("failed to initialise uploader: %w", err)
	}

	store := operation.NewMemoryStore()
	srv := server.New(store, uploader, buffer)

	addr := fmt.Sprintf(":%d", o.Port)
	fmt.Printf("Starting dashboard log server on %s\n", addr)
	return srv.ListenAndServe(addr)
}
