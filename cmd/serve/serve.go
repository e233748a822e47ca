// Package serve runs the Telegram bot and its scheduled jobs
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/receipt-bot/cmd/root"
	"fjacquet/receipt-bot/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot and the scheduled report and recurring-expense jobs.

The bot only answers in the configured group (GROUP_ID) and needs BOT_TOKEN.
It stops cleanly on SIGINT or SIGTERM.

Example:
  receipt-bot serve --data-dir ./data`,
	RunE: serveFunc,
}

var noSchedule bool

func init() {
	Cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Do not run the scheduled jobs")
}

// runner is a long-running component stopped by cancelling its context.
type runner interface {
	Run(ctx context.Context) error
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	logger := c.GetLogger()

	if err := c.GetReceiptStore().EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	client, err := c.NewTelegramClient()
	if err != nil {
		return fmt.Errorf("failed to start Telegram client: %w", err)
	}
	if err := client.RegisterCommands(); err != nil {
		logger.Warn("Failed to register bot commands", logging.F(logging.FieldError, err.Error()))
	}

	runners := []runner{client}
	if c.GetConfig().Schedule.Enabled && !noSchedule {
		sched, err := c.NewScheduler(client)
		if err != nil {
			return err
		}
		runners = append(runners, sched)
	} else {
		logger.Info("Scheduled jobs disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Receipt bot started", logging.F(logging.FieldChatID, c.GetConfig().Telegram.ChatID))
	return runAll(ctx, runners...)
}

// runAll runs every runner until ctx is cancelled or one of them returns,
// which stops the others.
func runAll(ctx context.Context, runners ...runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(func() error {
			defer cancel()
			return r.Run(ctx)
		})
	}
	return g.Wait()
}
