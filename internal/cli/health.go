package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var host string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := host
			if target == "" {
				target = opts.backend
			}
			if err := opts.client().Healthy(cmd.Context(), target); err != nil {
				return fmt.Errorf("backend %s not healthy: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend is healthy %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "host to ping for health (defaults to --backend)")
	return cmd
}
