package root_test

import (
	"testing"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "receipt-bot", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Telegram bot")
	assert.Contains(t, root.Cmd.Long, "spending reports")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRun)
}

func TestGetContainer_BeforeInitialization(t *testing.T) {
	_, err := root.GetContainer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
	assert.Nil(t, root.GetConfig())
}

func TestRootCommand_Flags(t *testing.T) {
	root.Init()
	root.Init()

	for _, name := range []string{"config", "data-dir", "log-level", "log-format", "timezone"} {
		assert.NotNil(t, root.Cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "c", root.Cmd.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, "d", root.Cmd.PersistentFlags().Lookup("data-dir").Shorthand)
}

func baseConfig() *config.Config {
	return &config.Config{
		Log:        config.LogConfig{Level: "info", Format: "text"},
		Data:       config.DataConfig{Directory: "./data"},
		Timezone:   "America/Chicago",
		Categories: models.DefaultCategories(),
		Chart:      config.ChartConfig{Width: 800, Height: 600},
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := baseConfig()
	err := root.ApplyFlags(cfg, root.GlobalFlags{DataDir: "/srv/receipts", LogLevel: "debug", LogFormat: "json", Timezone: "Europe/Zurich"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/receipts", cfg.Data.Directory)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "Europe/Zurich", cfg.Timezone)

	cfg = baseConfig()
	require.NoError(t, root.ApplyFlags(cfg, root.GlobalFlags{}))
	assert.Equal(t, "./data", cfg.Data.Directory)

	err = root.ApplyFlags(baseConfig(), root.GlobalFlags{Timezone: "Mars/Olympus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	err = root.ApplyFlags(baseConfig(), root.GlobalFlags{LogFormat: "xml"})
	require.Error(t, err)
}

func TestRootCommand_ExecuteBuildsContainer(t *testing.T) {
	root.Init()
	dir := t.TempDir()
	root.Cmd.SetArgs([]string{"--data-dir", dir, "--timezone", "UTC"})
	t.Cleanup(func() { root.Cmd.SetArgs(nil) })

	require.NoError(t, root.Cmd.Execute())

	c, err := root.GetContainer()
	require.NoError(t, err)
	assert.Equal(t, dir, c.GetConfig().Data.Directory)
	assert.Equal(t, "UTC", root.GetConfig().Timezone)
	assert.NotNil(t, root.GetLogrusAdapter())
}
