// Package commands wires the domainwatch CLI.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"domainwatch/internal/config"
	"domainwatch/internal/logging"
	"domainwatch/internal/notify"
)

var version = "dev"

var (
	configPath    string
	watchlistPath string
	logFile       string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "domainwatch",
	Short: "Watch a domain list and mail an alert when one becomes available",
	Long: `domainwatch checks every domain on a watchlist against WHOIS and sends a
single email when any of them can be registered. It runs once per invocation;
scheduling belongs to cron or CI.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and maps any error to a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&watchlistPath, "watchlist", "", "watchlist file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// loadConfig assembles the run configuration, with flags taking precedence
// over file and environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if watchlistPath != "" {
		cfg.Watchlist = watchlistPath
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return logging.Setup(cfg.LogFile, level)
}

// mailConfig maps the SMTP section onto the notifier's settings.
func mailConfig(cfg config.Config) notify.Config {
	return notify.Config{
		Server:   cfg.SMTP.Server,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
		Timeout:  time.Duration(cfg.SMTP.Timeout),
	}
}
