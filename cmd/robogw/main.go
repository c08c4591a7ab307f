// Package main is the robogw binary: the HTTP gateway that powers the
// robot personalities chat app.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	robotgateway "github.com/robotalk-labs/robot-gateway"
	"github.com/robotalk-labs/robot-gateway/internal/version"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "robogw",
	Short: "Robot chat gateway",
	Long: `robogw serves the robot personalities chat API: it routes kids'
messages to the configured language-model providers, keeps a bounded
in-memory response cache, synthesizes speech, and records conversation
turns.`,
	Version: version.Short(),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfigOrDefault(cfgPath)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Check a configuration file without starting the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := robotgateway.LoadConfig(args[0])
		if err != nil {
			return err
		}
		if err := robotgateway.ValidateConfig(*cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d chat target(s), %d tts vendor(s))\n",
			args[0], len(cfg.Chat.Targets), len(cfg.TTS.Vendors))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "robogw", version.String())
	},
}

// loadConfigOrDefault reads cfgPath when set (falling back to the
// ROBOGW_CONFIG environment variable) and otherwise returns the built-in
// defaults.
func loadConfigOrDefault(path string) (robotgateway.Config, error) {
	if path == "" {
		path = os.Getenv("ROBOGW_CONFIG")
	}
	if path == "" {
		return robotgateway.DefaultConfig(), nil
	}
	cfg, err := robotgateway.LoadConfig(path)
	if err != nil {
		return robotgateway.Config{}, err
	}
	if err := robotgateway.ValidateConfig(*cfg); err != nil {
		return robotgateway.Config{}, err
	}
	return *cfg, nil
}

func init() {
	serveCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML or JSON config file")
	rootCmd.AddCommand(serveCmd, validateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
