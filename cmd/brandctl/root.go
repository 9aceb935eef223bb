package main

import (
	"context"
	"os"
	"time"

	"github.com/HerbHall/brandkit/internal/version"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	server  string
	timeout time.Duration
}

func (o *rootOptions) client() *apiClient {
	return newAPIClient(o.server, o.timeout)
}

func (o *rootOptions) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	server := os.Getenv("BRANDCTL_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd := &cobra.Command{
		Use:   "brandctl",
		Short: "Inspect and edit branding on a brandingd daemon",
		Long: `brandctl talks to the branding API of a running brandingd.

Examples:
  brandctl show
  brandctl set --primary "#1e6b52" --app-name "Acme CRM"
  brandctl export --format yaml > branding.yaml
  brandctl convert "#ff0000"`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "brandingd base URL (env BRANDCTL_SERVER)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	cmd.AddCommand(
		newShowCommand(opts),
		newSetCommand(opts),
		newResetCommand(opts),
		newRefreshCommand(opts),
		newExportCommand(opts),
		newConvertCommand(),
		newUploadCommand(opts),
	)
	return cmd
}
