package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/receipt-bot/cmd/categories"
	"fjacquet/receipt-bot/cmd/export"
	"fjacquet/receipt-bot/cmd/fixdates"
	"fjacquet/receipt-bot/cmd/gendata"
	"fjacquet/receipt-bot/cmd/recurring"
	"fjacquet/receipt-bot/cmd/report"
	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/cmd/serve"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	loadEnvSilently()

	// 2. Honor LOG_LEVEL before the configuration is read
	root.Log.SetLevel(configureLogLevelDirectly())

	// 3. Initialize root command
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(recurring.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(fixdates.Cmd)
	root.Cmd.AddCommand(gendata.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

// configureLogLevelDirectly sets the global log level for all logrus instances
// and returns the configured level
func configureLogLevelDirectly() logrus.Level {
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(logLevelStr))
	if err != nil {
		logLevel = logrus.InfoLevel
	}

	logrus.SetLevel(logLevel)
	return logLevel
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
