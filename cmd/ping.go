package cmd

import (
	"fmt"

	"github.com/minichat/minichat/internal/backend"
	"github.com/minichat/minichat/internal/chat/config"
	"github.com/spf13/cobra"
)

// pingCmd represents the ping command
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the chat service",
	Long: `Check connectivity to the chat service and its upstream model provider.

The service reports whether it can reach the model API; a non-200 code means
the upstream is unreachable or timing out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		client := backend.NewClient(cfg)
		client.SetDebug(verbose)

		status, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %s", userMessage(err))
		}

		if status.Code == 200 {
			fmt.Printf("OK: %s\n", status.Message)
			return nil
		}
		return fmt.Errorf("service degraded (code %d): %s", status.Code, status.Message)
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
