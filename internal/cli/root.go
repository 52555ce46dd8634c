// Package cli implements notifyctl, the command line client for notify-relay.
package cli

import (
	"time"

	"github.com/spf13/cobra"
	"notify_relay/internal/client"
)

var (
	version = "dev"
	commit  = "none"
)

const defaultBackend = "http://localhost:8000"

type rootOptions struct {
	backend string
	timeout time.Duration
}

func (o *rootOptions) client() *client.HTTPClient {
	return client.NewHTTPClient(o.backend, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Send desktop notifications through a notify-relay server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", defaultBackend, "Backend API URL to use")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "HTTP timeout, including the wait for a reply")

	cmd.AddCommand(newHealthCmd(opts))
	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newPublishCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func Execute() error {
	return newRootCmd().Execute()
}
