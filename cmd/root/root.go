// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/container"
	"fjacquet/receipt-bot/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
	LogFormat  string
	Timezone   string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "receipt-bot",
		Short: "A Telegram bot that records receipts and reports spending.",
		Long: `receipt-bot is a Telegram bot for a household expense group.
Members submit receipts through a guided conversation, raw JSON or a photo,
and the bot sends daily, weekly, monthly and yearly spending reports.

The same data can be inspected and maintained from the command line.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to receipt-bot!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.Warnf("Failed to close container: %v", err)
				}
			}
		},
	}

	// Flags holds the persistent flag values.
	Flags = GlobalFlags{}

	appConfig    *config.Config
	appContainer *container.Container
	initOnce     sync.Once
)

// Init registers the persistent flags. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentFlags().StringVarP(&Flags.ConfigFile, "config", "c", "", "Config file (default searches $HOME/.receipt-bot, .receipt-bot and .)")
		Cmd.PersistentFlags().StringVarP(&Flags.DataDir, "data-dir", "d", "", "Directory holding the receipt files")
		Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
		Cmd.PersistentFlags().StringVar(&Flags.LogFormat, "log-format", "", "Log format (text, json)")
		Cmd.PersistentFlags().StringVar(&Flags.Timezone, "timezone", "", "IANA timezone used to bucket receipts by day")
	})
}

func initialize(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadEnv(); err != nil {
		Log.Debugf("No .env file loaded: %v", err)
	}

	cfg, err := config.InitializeConfigFromFile(Flags.ConfigFile)
	if err != nil {
		return err
	}
	if err := ApplyFlags(cfg, Flags); err != nil {
		return err
	}

	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainerWithLogger(cfg, logging.NewLogrusAdapterFromLogger(Log))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appConfig = cfg
	appContainer = c
	return nil
}

// ApplyFlags overrides configuration values with non-empty flags and
// validates the result.
func ApplyFlags(cfg *config.Config, flags GlobalFlags) error {
	if flags.DataDir != "" {
		cfg.Data.Directory = flags.DataDir
	}
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.Log.Format = flags.LogFormat
	}
	if flags.Timezone != "" {
		cfg.Timezone = flags.Timezone
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetLogrusAdapter returns the command logger behind the logging.Logger interface.
func GetLogrusAdapter() logging.Logger {
	return logging.NewLogrusAdapterFromLogger(Log)
}

// GetConfig returns the configuration loaded for the running command.
func GetConfig() *config.Config {
	return appConfig
}

// GetContainer returns the dependency container built for the running command.
func GetContainer() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return appContainer, nil
}
