package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var title, message string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Queue a notification through RabbitMQ without waiting for the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.client().Publish(cmd.Context(), title, message); err != nil {
				return fmt.Errorf("publish notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "queued")
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "notification title")
	cmd.Flags().StringVarP(&message, "message", "m", "", "notification message")
	return cmd
}
