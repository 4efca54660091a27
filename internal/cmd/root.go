package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliflag "github.com/tomasbasham/cli-runtime/flag"
	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/printer"
	"github.com/tomasbasham/cli-runtime/templates"
)

var (
	rootLong = templates.LongDesc(`
		Capture, sanitize and upload dashboard breadcrumb logs to blob
		storage, producing a signed URL a support agent can open.`)

	rootExamples = templates.Examples(``)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// DashlogOptions defines the options for the `dashlog` command.
type DashlogOptions struct {
	iooption.IOStreams
}

// NewDashlogOptions provides an initialised DashlogOptions instance.
func NewDashlogOptions(streams iooption.IOStreams) *DashlogOptions {
	return &DashlogOptions{
		IOStreams: streams,
	}
}

// NewRootCommand creates the `dashlog` command with default arguments.
func NewRootCommand() *cobra.Command {
	options := NewDashlogOptions(iooption.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	return NewRootCommandWithArgs(options)
}

// NewRootCommandWithArgs creates the `dashlog` command and its nested
// children.
func NewRootCommandWithArgs(o *DashlogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "dashlog [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Dashboard breadcrumb log upload tool",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}

	printerOpts := printer.WarningPrinterOptions{Color: true}
	printer := printer.NewWarningPrinter(o.ErrOut, printerOpts)
	cmd.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc(printer))

	cmd.AddCommand(NewUploadCommand(NewUploadOptions(o.IOStreams)))
	cmd.AddCommand(NewServeCommand(NewServeOptions()))

	// The globlal normalisation function ensures that all flags specified meet
	// the desired format, changing users' input if necessary.
	cmd.SetGlobalNormalizationFunc(cliflag.WordSepNormalizeFunc())

	return cmd
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
