package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rebaseAttempts bounds how many times push --rebase retries after a conflict
const rebaseAttempts = 3

// syncPushRequest matches the API request body
type syncPushRequest struct {
	BaseVersion int64  `json:"base_version"`
	Payload     []byte `json:"payload"`
	DeviceHint  string `json:"device_hint,omitempty"`
}

func newFetchCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "fetch <uuid>",
		Short: "Fetch the stored profile for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Profile
			if err := client.Get("/api/v2/sync/"+args[0], &result); err != nil {
				return err
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, result.Payload, 0600); err != nil {
					return fmt.Errorf("failed to write payload: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Write the raw payload to this file")

	return cmd
}

func newPushCmd() *cobra.Command {
	var (
		file        string
		baseVersion int64
		deviceHint  string
		rebase      bool
	)

	cmd := &cobra.Command{
		Use:   "push <uuid>",
		Short: "Push a profile payload for a player",
		Long: `Push a profile payload for a player.

The push must carry the version last observed from the server. If
--base-version is not given, the current version is fetched first. On a
version conflict, --rebase re-fetches and retries a bounded number of times.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playerID := args[0]

			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read payload file: %w", err)
			}

			base := baseVersion
			if !cmd.Flags().Changed("base-version") {
				var current Profile
				if err := client.Get("/api/v2/sync/"+playerID, &current); err != nil {
					return err
				}
				base = current.Version
			}

			var result Profile
			for attempt := 0; ; attempt++ {
				req := syncPushRequest{
					BaseVersion: base,
					Payload:     payload,
					DeviceHint:  deviceHint,
				}

				err := client.Post("/api/v2/sync/"+playerID, req, &result)
				if err == nil {
					break
				}

				var conflict *ConflictError
				if rebase && errors.As(err, &conflict) && attempt < rebaseAttempts {
					base = conflict.Version
					continue
				}
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "File containing the payload to push (required)")
	cmd.Flags().Int64Var(&baseVersion, "base-version", 0, "Version last observed from the server")
	cmd.Flags().StringVar(&deviceHint, "device-hint", "", "Optional device identifier for diagnostics")
	cmd.Flags().BoolVar(&rebase, "rebase", false, "Re-fetch and retry on version conflict")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
