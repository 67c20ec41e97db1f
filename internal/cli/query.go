package cli

import (
	"github.com/spf13/cobra"
)

func newBulkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <uuid> <uuid> [uuid...]",
		Short: "Query profiles for multiple players at once",
		Args:  cobra.RangeArgs(2, 20),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result BulkResult
			if err := client.Post("/api/v2/bulk-query", args, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show sync server statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result StatsResult
			if err := client.Get("/api/v2/stats", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
