package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minichat/minichat/internal/chat/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minichat",
	Short: "A CLI client for the minichat completion service",
	Long: `minichat is a command-line client for a remote chat completion service.
It keeps multi-turn conversation history in sessions and can replay the
server's pre-chunked answers with a typing effect.
You can configure the tool using a TOML configuration file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/minichat/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix and automatic env
	viper.SetEnvPrefix("MINICHAT") // Set prefix for environment variables
	viper.AutomaticEnv()           // read in environment variables that match

	// Determine config directory for user config
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)
	userConfigDir := filepath.Join(home, ".config", "minichat")

	defaultConfig := config.NewDefaultConfig()

	// Set default values from the config package
	viper.SetDefault("base_url", defaultConfig.BaseURL)
	viper.SetDefault("token", defaultConfig.Token)
	viper.SetDefault("user_id", defaultConfig.UserID)
	viper.SetDefault("timeout_seconds", defaultConfig.TimeoutSeconds)
	viper.SetDefault("typing_effect", defaultConfig.TypingEffect)
	viper.SetDefault("session_message_threshold", defaultConfig.SessionMessageThreshold)
	viper.SetDefault("session_retention_days", defaultConfig.SessionRetentionDays)

	// Bind environment variables
	viper.BindEnv("base_url", "MINICHAT_BASE_URL")
	viper.BindEnv("token", "MINICHAT_TOKEN")
	viper.BindEnv("user_id", "MINICHAT_USER_ID")
	viper.BindEnv("typing_effect", "MINICHAT_TYPING_EFFECT")
	viper.BindEnv("session_message_threshold", "MINICHAT_SESSION_MESSAGE_THRESHOLD")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Load system-wide config first (lower priority)
		systemConfigPaths := []string{
			"/etc/minichat",
			"/usr/local/etc/minichat",
		}

		systemConfigLoaded := false
		for _, path := range systemConfigPaths {
			viper.AddConfigPath(path)
		}
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		// Try to read system-wide config
		if err := viper.ReadInConfig(); err == nil {
			systemConfigLoaded = true
			if verbose {
				fmt.Fprintln(os.Stderr, "Loaded system-wide config:", viper.ConfigFileUsed())
			}
		}

		// Load user config (higher priority) - merge with system config
		viper.AddConfigPath(userConfigDir)
		if systemConfigLoaded {
			// Merge user config on top of system config
			if err := viper.MergeInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error merging user config file: %v\n", err)
				}
			} else if verbose {
				fmt.Fprintln(os.Stderr, "Merged user config:", viper.ConfigFileUsed())
			}
		} else {
			// No system config, just read user config
			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				}
			}
		}
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		fmt.Fprintln(os.Stderr, "Environment variables:")
		fmt.Fprintln(os.Stderr, "  MINICHAT_BASE_URL:", viper.GetString("base_url"))
		fmt.Fprintln(os.Stderr, "  MINICHAT_USER_ID:", viper.GetString("user_id"))
		fmt.Fprintln(os.Stderr, "  MINICHAT_TYPING_EFFECT:", viper.GetBool("typing_effect"))
	}
}
