// Package container provides dependency injection for the receipt bot.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/receipt-bot/internal/bot"
	"fjacquet/receipt-bot/internal/chart"
	"fjacquet/receipt-bot/internal/config"
	"fjacquet/receipt-bot/internal/exporter"
	"fjacquet/receipt-bot/internal/extractor"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/recurring"
	"fjacquet/receipt-bot/internal/report"
	"fjacquet/receipt-bot/internal/scheduler"
	"fjacquet/receipt-bot/internal/store"
	"fjacquet/receipt-bot/internal/telegram"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	location   *time.Location
	catalog    *models.CategoryCatalog
	categories *store.CategoryStore
	receipts   *store.ReceiptStore
	recurring  *recurring.Service
	charts     *chart.Renderer
	reports    *report.Generator
	extractor  *extractor.Extractor
	exporter   *exporter.Exporter
	dispatcher *bot.Dispatcher
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger is NewContainer with a caller-supplied logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	loc := cfg.Location()

	categoriesPath := cfg.Data.CategoriesFile
	if categoriesPath != "" && !filepath.IsAbs(categoriesPath) {
		categoriesPath = filepath.Join(cfg.Data.Directory, categoriesPath)
	}
	categoryStore := store.NewCategoryStore(categoriesPath, logger)
	categories, err := categoryStore.LoadCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		categories = cfg.Categories
	}
	if len(categories) == 0 {
		categories = models.DefaultCategories()
	}
	catalog := models.NewCategoryCatalog(categories)

	receipts := store.NewReceiptStore(cfg.Data.Directory, loc, logger, store.WithStrictReads(cfg.Data.StrictReads))
	recurringFile := store.NewRecurringFile(cfg.Data.Directory, cfg.Data.RecurringFile, logger)
	recurringService := recurring.NewService(receipts, recurringFile, loc, logger, nil)

	charts := chart.NewRenderer(chart.Options{
		Width:           cfg.Chart.Width,
		Height:          cfg.Chart.Height,
		BackgroundColor: cfg.Chart.BackgroundColor,
		TextColor:       cfg.Chart.TextColor,
		Palette:         cfg.Chart.Palette,
		CurrencySymbol:  cfg.Report.CurrencySymbol,
	})
	reports := report.NewGenerator(receipts, charts, catalog, loc, cfg.Report.CurrencySymbol, logger)

	// A typed nil would make the dispatcher think photo recognition is on.
	var receiptExtractor bot.ReceiptExtractor
	var ext *extractor.Extractor
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		ext, err = extractor.New(context.Background(), cfg.AI, catalog, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create receipt extractor: %w", err)
		}
		receiptExtractor = ext
		logger.Info("AI receipt recognition enabled", logging.F(logging.FieldModel, cfg.AI.Model))
	} else {
		logger.Info("AI receipt recognition disabled")
	}

	dispatcher := bot.NewDispatcher(receipts, recurringService, reports, receiptExtractor, bot.Options{
		ChatID:         cfg.Telegram.ChatID,
		Location:       loc,
		Catalog:        catalog,
		CurrencySymbol: cfg.Report.CurrencySymbol,
		PromptTemplate: cfg.AI.PromptTemplate,
	}, logger)

	logger.Info("Container initialized successfully",
		logging.F("data_dir", cfg.Data.Directory),
		logging.F("timezone", loc.String()),
		logging.F("categories_count", len(catalog.All())),
		logging.F("ai_enabled", ext != nil))

	return &Container{
		logger:     logger,
		config:     cfg,
		location:   loc,
		catalog:    catalog,
		categories: categoryStore,
		receipts:   receipts,
		recurring:  recurringService,
		charts:     charts,
		reports:    reports,
		extractor:  ext,
		exporter:   exporter.New(catalog, loc, 0, logger),
		dispatcher: dispatcher,
	}, nil
}

// NewTelegramClient connects to Telegram and routes updates to the dispatcher.
func (c *Container) NewTelegramClient() (*telegram.Client, error) {
	if err := c.config.ValidateForServe(); err != nil {
		return nil, err
	}
	return telegram.NewClient(c.config.Telegram, c.dispatcher, c.logger)
}

// NewScheduler builds the periodic jobs, sending their output through exec.
func (c *Container) NewScheduler(exec scheduler.Executor) (*scheduler.Scheduler, error) {
	return scheduler.New(c.config.Schedule, c.location, scheduler.Deps{
		Reports:   c.dispatcher,
		Executor:  exec,
		Recurring: c.recurring,
		ChatID:    c.config.Telegram.ChatID,
	}, c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLocation returns the timezone receipts are bucketed in.
func (c *Container) GetLocation() *time.Location {
	return c.location
}

// GetCatalog returns the active category catalog.
func (c *Container) GetCatalog() *models.CategoryCatalog {
	return c.catalog
}

// GetCategoryStore returns the optional categories file store.
func (c *Container) GetCategoryStore() *store.CategoryStore {
	return c.categories
}

// GetReceiptStore returns the day-file receipt store.
func (c *Container) GetReceiptStore() *store.ReceiptStore {
	return c.receipts
}

// GetRecurringService returns the recurring expense service.
func (c *Container) GetRecurringService() *recurring.Service {
	return c.recurring
}

// GetChartRenderer returns the chart renderer.
func (c *Container) GetChartRenderer() *chart.Renderer {
	return c.charts
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}

// GetExtractor returns the photo extractor, or nil when AI is disabled.
func (c *Container) GetExtractor() *extractor.Extractor {
	return c.extractor
}

// GetExporter returns the CSV/XLSX exporter.
func (c *Container) GetExporter() *exporter.Exporter {
	return c.exporter
}

// GetDispatcher returns the bot dispatcher.
func (c *Container) GetDispatcher() *bot.Dispatcher {
	return c.dispatcher
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	if c.extractor != nil {
		if err := c.extractor.Close(); err != nil {
			return fmt.Errorf("failed to close extractor: %w", err)
		}
	}
	c.logger.Info("Container closed")
	return nil
}
