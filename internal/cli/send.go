package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var title, message string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Show a notification and print the reply",
		Long:  "Show a notification on the relay's desktop and wait for the user's reply. An empty line means the notification timed out or was dismissed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := opts.client().Notify(cmd.Context(), title, message, asJSON)
			if err != nil {
				return fmt.Errorf("send notification: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "notification title")
	cmd.Flags().StringVarP(&message, "message", "m", "", "notification message")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full JSON result")
	return cmd
}
