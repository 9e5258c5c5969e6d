// package main is the entry point for the release-tools CLI
package main

import (
	"log/slog"
	"os"

	changelogcmd "github.com/alan/release-tools/cmd/changelog"
	configcmd "github.com/alan/release-tools/cmd/config"
	"github.com/alan/release-tools/cmd/currentversion"
	notescmd "github.com/alan/release-tools/cmd/notes"
	"github.com/alan/release-tools/cmd/release"
	"github.com/alan/release-tools/cmd/updateversion"
	"github.com/alan/release-tools/internal/commands"
	"github.com/alan/release-tools/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		commands.ReportError(commands.NewPrinter(os.Stdout, os.Stderr), err)
		os.Exit(commands.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	var manifestPath string
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "release-tools",
		Short: "Release automation for projects versioned by a package manifest",
		Long: `release-tools publishes GitHub releases, regenerates the changelog and keeps
embedded version strings in sync, all driven by the version in the project's
manifest (package.json by default).`,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(logLevel, logFormat)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".release-tools.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest to read the version from (overrides the config file)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "Log format (text, json)")

	// Create commands with access to the global flags
	rootCmd.AddCommand(configcmd.NewConfigCmd(&configFile, &manifestPath, config.ReadConfig, config.SaveConfig))
	rootCmd.AddCommand(release.NewReleaseCmd(&configFile, &manifestPath, config.LoadConfig))
	rootCmd.AddCommand(notescmd.NewNotesCmd(&configFile, &manifestPath, config.LoadConfig))
	rootCmd.AddCommand(changelogcmd.NewChangelogCmd(&configFile, &manifestPath, config.LoadConfig))
	rootCmd.AddCommand(updateversion.NewUpdateVersionCmd(&configFile, &manifestPath, config.LoadConfig))
	rootCmd.AddCommand(currentversion.NewCurrentVersionCmd(&configFile, &manifestPath, config.LoadConfig))

	return rootCmd
}

func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
