package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/minichat/minichat/internal/chat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [field]",
	Short: "Display current configuration",
	Long: `Display the current configuration values.
This command shows all configuration values loaded from the config file and environment variables.

If a field name is specified, only that field's value is displayed.
Available fields: configfile, base_url, token, user_id, timeout_seconds, typing_effect, session_message_threshold, session_retention_days

Examples:
  minichat config                  # Show all configuration
  minichat config base_url         # Show only the service base URL
  minichat config token            # Show only the (masked) token
  minichat config typing_effect    # Show only the typing effect setting`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Load configuration from file
		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// If a field is specified, show only that field
		if len(args) > 0 {
			field := strings.ToLower(args[0])
			switch field {
			case "configfile":
				fmt.Println(viper.ConfigFileUsed())
			case "base_url", "baseurl":
				fmt.Println(cfg.BaseURL)
			case "token":
				fmt.Println(maskToken(cfg.Token))
			case "user_id", "userid":
				fmt.Println(cfg.UserID)
			case "timeout_seconds", "timeout":
				fmt.Println(cfg.TimeoutSeconds)
			case "typing_effect", "typingeffect":
				fmt.Println(cfg.TypingEffect)
			case "session_message_threshold":
				fmt.Println(cfg.SessionMessageThreshold)
			case "session_retention_days":
				fmt.Println(cfg.SessionRetentionDays)
			default:
				fmt.Fprintf(os.Stderr, "Unknown field: %s\n", args[0])
				fmt.Fprintf(os.Stderr, "Available fields: configfile, base_url, token, user_id, timeout_seconds, typing_effect, session_message_threshold, session_retention_days\n")
				os.Exit(1)
			}
			return
		}

		// Display all configuration values
		fmt.Printf("ConfigFile: %s\n", viper.ConfigFileUsed())
		fmt.Printf("BaseURL: %s\n", cfg.BaseURL)
		fmt.Printf("Token: %s\n", maskToken(cfg.Token))
		fmt.Printf("UserID: %s\n", cfg.UserID)
		fmt.Printf("TimeoutSeconds: %d\n", cfg.TimeoutSeconds)
		fmt.Printf("TypingEffect: %v\n", cfg.TypingEffect)
		fmt.Printf("SessionMessageThreshold: %d\n", cfg.SessionMessageThreshold)
		fmt.Printf("SessionRetentionDays: %d\n", cfg.SessionRetentionDays)
	},
}

// maskToken returns a masked version of the token for security
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
}
