package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	var username, serverID string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a sync token via the session servers",
		Long: `Obtain a sync token by presenting a completed join-server handshake.

The join-server request must have been sent to the session servers first;
--server-id is the hash from that handshake.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("username", username)
			query.Set("serverId", serverID)

			var result AuthResult
			if err := client.Get("/api/v2/auth?"+query.Encode(), &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username (required)")
	cmd.Flags().StringVar(&serverID, "server-id", "", "Join-server hash (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("server-id")

	return cmd
}
