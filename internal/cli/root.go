// Package cli wires the pulsedeck commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/pulsedeck/internal/logging"
	"github.com/ppiankov/pulsedeck/internal/model"
)

// Version is set at build time with -ldflags
var Version = "dev"

var (
	cfgFile string
	verbose bool

	logger = logging.Discard()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pulsedeck",
	Short: "Pulsedeck - media monitoring exports to PowerPoint reports",
	Long: `Pulsedeck turns a media-monitoring export into a client report.

It cleans the export, aggregates mention metrics, optionally classifies
mentions into categories, and fills a PowerPoint template whose shapes
carry placeholder tokens (REPORT_CLIENT, SENTIMENT_PIE, ...).

The result is a zip bundle with the filled deck and the cleaned export.
Placeholders the template does not carry are reported, never fatal.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			cfg = model.DefaultConfig()
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger = logging.New(cfg.Logging, os.Stderr)
		if err != nil {
			logger.WithError(err).Warn("Invalid configuration, using defaults")
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of pulsedeck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pulsedeck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pulsedeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// configDir is ~/.pulsedeck
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".pulsedeck"), nil
}

// initConfig reads in .env files, the config file and ENV variables
func initConfig() {
	logging.LoadEnv(logger)

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PULSEDECK_*, with nested keys
	// joined by underscores (PULSEDECK_LLM_PROVIDER)
	viper.SetEnvPrefix("PULSEDECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
