// Package config loads the bot configuration from defaults, an optional
// config.yaml, .env files and environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultPromptTemplate is shown by /prompt and sent along with receipt photos.
const DefaultPromptTemplate = `Please help convert this receipt photo into the following JSON format:
{
    "date": "YYYY-MM-DDTHH:mm:ss",
    "amount": number,
    "store": "store name",
    "items": [
        {
            "name": "item name",
            "price": number,
            "category": "category name"
        }
    ]
}`

// DefaultPalette is the slice color cycle for charts.
var DefaultPalette = []string{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0",
	"#9966FF", "#FF9F40", "#33FF99", "#FF99CC",
	"#99CCFF", "#FFFF99", "#FF99FF", "#99FFCC",
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelegramConfig holds the chat transport settings.
type TelegramConfig struct {
	Token       string `mapstructure:"token" yaml:"-"` // never serialize the token
	ChatID      int64  `mapstructure:"chat_id" yaml:"chat_id"`
	PollTimeout int    `mapstructure:"poll_timeout" yaml:"poll_timeout"`
	Proxy       string `mapstructure:"proxy" yaml:"proxy"`
}

// DataConfig locates the receipt files.
type DataConfig struct {
	Directory      string `mapstructure:"directory" yaml:"directory"`
	RecurringFile  string `mapstructure:"recurring_file" yaml:"recurring_file"`
	CategoriesFile string `mapstructure:"categories_file" yaml:"categories_file"`
	StrictReads    bool   `mapstructure:"strict_reads" yaml:"strict_reads"`
}

// ChartConfig styles rendered charts.
type ChartConfig struct {
	Width           int      `mapstructure:"width" yaml:"width"`
	Height          int      `mapstructure:"height" yaml:"height"`
	BackgroundColor string   `mapstructure:"background_color" yaml:"background_color"`
	TextColor       string   `mapstructure:"text_color" yaml:"text_color"`
	Palette         []string `mapstructure:"palette" yaml:"palette"`
}

// ScheduleConfig holds the cron expressions for the periodic jobs. An empty
// expression disables that job.
type ScheduleConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	DailyReport   string `mapstructure:"daily_report" yaml:"daily_report"`
	WeeklyReport  string `mapstructure:"weekly_report" yaml:"weekly_report"`
	MonthlyReport string `mapstructure:"monthly_report" yaml:"monthly_report"`
	Recurring     string `mapstructure:"recurring" yaml:"recurring"`
}

// AIConfig controls receipt photo recognition.
type AIConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"-"` // never serialize the API key
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	PromptTemplate string `mapstructure:"prompt_template" yaml:"prompt_template"`
}

// ReportConfig controls report text.
type ReportConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig         `mapstructure:"log" yaml:"log"`
	Telegram   TelegramConfig    `mapstructure:"telegram" yaml:"telegram"`
	Data       DataConfig        `mapstructure:"data" yaml:"data"`
	Timezone   string            `mapstructure:"timezone" yaml:"timezone"`
	Categories []models.Category `mapstructure:"categories" yaml:"categories"`
	Chart      ChartConfig       `mapstructure:"chart" yaml:"chart"`
	Schedule   ScheduleConfig    `mapstructure:"schedule" yaml:"schedule"`
	AI         AIConfig          `mapstructure:"ai" yaml:"ai"`
	Report     ReportConfig      `mapstructure:"report" yaml:"report"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file.
// An empty path searches the default locations.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.receipt-bot")
		v.AddConfigPath(".receipt-bot")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RECEIPT_BOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// Unprefixed variables kept for existing deployments.
	bindings := map[string]string{
		"telegram.token":   "BOT_TOKEN",
		"telegram.chat_id": "GROUP_ID",
		"ai.api_key":       "GEMINI_API_KEY",
		"timezone":         "TIME_ZONE",
		"data.directory":   "DATA_DIR",
		"log.level":        "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "RECEIPT_BOT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.proxy", "")

	v.SetDefault("data.directory", "./data")
	v.SetDefault("data.recurring_file", models.RecurringFileName)
	v.SetDefault("data.categories_file", "")
	v.SetDefault("data.strict_reads", false)

	v.SetDefault("timezone", "America/Chicago")

	categories := make([]map[string]interface{}, 0, len(models.DefaultCategories()))
	for _, c := range models.DefaultCategories() {
		categories = append(categories, map[string]interface{}{"key": c.Key, "name": c.Name, "display_name": c.DisplayName})
	}
	v.SetDefault("categories", categories)

	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 600)
	v.SetDefault("chart.background_color", "#000000")
	v.SetDefault("chart.text_color", "#ffffff")
	v.SetDefault("chart.palette", DefaultPalette)

	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.daily_report", "0 21 * * *")
	v.SetDefault("schedule.weekly_report", "0 21 * * 0")
	v.SetDefault("schedule.monthly_report", "0 21 1 * *")
	v.SetDefault("schedule.recurring", "0 0 1 * *")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.prompt_template", DefaultPromptTemplate)

	v.SetDefault("report.currency_symbol", "$")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if _, err := dateutils.LoadLocation(config.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	if strings.TrimSpace(config.Data.Directory) == "" {
		return fmt.Errorf("data.directory must not be empty")
	}

	if len(config.Categories) == 0 {
		return fmt.Errorf("at least one category must be configured")
	}
	seen := make(map[string]bool, len(config.Categories))
	for _, c := range config.Categories {
		key := strings.ToUpper(strings.TrimSpace(c.Key))
		if key == "" {
			return fmt.Errorf("category %q has an empty key", c.Name)
		}
		if len(key) > models.MaxCategoryKeyLength {
			return fmt.Errorf("category key %s is longer than %d bytes", key, models.MaxCategoryKeyLength)
		}
		if seen[key] {
			return fmt.Errorf("duplicate category key: %s", key)
		}
		seen[key] = true
	}

	if config.Chart.Width < 100 || config.Chart.Height < 100 {
		return fmt.Errorf("chart dimensions must be at least 100x100, got: %dx%d", config.Chart.Width, config.Chart.Height)
	}

	if config.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout must not be negative, got: %d", config.Telegram.PollTimeout)
	}

	for name, spec := range config.Schedule.Jobs() {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid schedule.%s %q: %w", name, spec, err)
		}
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// Validate re-checks the configuration, e.g. after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// ValidateForServe checks the settings only the bot itself needs.
func (c *Config) ValidateForServe() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("BOT_TOKEN is required to run the bot")
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("GROUP_ID is required to run the bot")
	}
	return nil
}

// Jobs maps schedule names to their cron expressions.
func (s ScheduleConfig) Jobs() map[string]string {
	return map[string]string{
		"daily_report":   s.DailyReport,
		"weekly_report":  s.WeeklyReport,
		"monthly_report": s.MonthlyReport,
		"recurring":      s.Recurring,
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := dateutils.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AITimeout is the per-request deadline for the AI client.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
