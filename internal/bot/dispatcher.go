// Package bot is the conversational core: it turns chat events into
// outbound actions and drives the multi-step receipt and recurring-expense
// flows. It performs no network I/O of its own.
package bot

import (
	"context"
	"errors"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/report"
)

// ReceiptStore is the storage the bot writes to.
type ReceiptStore interface {
	SaveReceipt(r models.Receipt) error
	GetRecentReceipts(n int) ([]models.RecentReceipt, error)
	DeleteReceiptRef(ref models.ReceiptRef) (bool, error)
}

// RecurringService manages recurring expenses.
type RecurringService interface {
	GetRecurringExpenses() ([]models.RecurringExpense, error)
	AddRecurringExpense(e models.RecurringExpense) error
	DeleteRecurringExpense(index int) (bool, error)
	AddMonthlyExpenses() (int, error)
}

// ReportService builds the reports the bot sends.
type ReportService interface {
	DailyReport(date time.Time) (*report.Report, error)
	WeeklyReport(date time.Time) (*report.Report, error)
	MonthlyReport(date time.Time) (*report.Report, error)
	YearlyReport(date time.Time) (*report.Report, error)
	YearlyDetailReport(date time.Time) (*report.Report, error)
}

// ReceiptExtractor reads a receipt photo and answers with a JSON submission.
type ReceiptExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Options configures a Dispatcher.
type Options struct {
	// ChatID is the only chat whose commands are handled.
	ChatID         int64
	Location       *time.Location
	Catalog        *models.CategoryCatalog
	CurrencySymbol string
	PromptTemplate string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Dispatcher routes events for all chats. It is safe for concurrent use;
// per-chat state lives in its StateStore.
type Dispatcher struct {
	receipts  ReceiptStore
	recurring RecurringService
	reports   ReportService
	extractor ReceiptExtractor
	states    *StateStore
	opts      Options
	logger    logging.Logger
}

// NewDispatcher wires a Dispatcher. extractor may be nil, in which case
// photos are ignored.
func NewDispatcher(receipts ReceiptStore, recurring RecurringService, reports ReportService, extractor ReceiptExtractor, opts Options, logger logging.Logger) *Dispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Catalog == nil {
		opts.Catalog = models.NewCategoryCatalog(models.DefaultCategories())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Dispatcher{
		receipts:  receipts,
		recurring: recurring,
		reports:   reports,
		extractor: extractor,
		states:    NewStateStore(),
		opts:      opts,
		logger:    logger.WithField(logging.FieldComponent, "bot"),
	}
}

// States exposes the conversation table.
func (d *Dispatcher) States() *StateStore { return d.states }

// ChatID is the configured chat.
func (d *Dispatcher) ChatID() int64 { return d.opts.ChatID }

// AcceptsPhotos reports whether a photo from chatID would reach the
// extractor. The transport skips downloads otherwise.
func (d *Dispatcher) AcceptsPhotos(chatID int64) bool {
	return chatID == d.opts.ChatID && d.extractor != nil
}

// Recover clears chatID's conversation after an update failed outside the
// normal error path and returns the generic failure reply.
func (d *Dispatcher) Recover(chatID int64) []Action {
	d.states.Clear(chatID)
	return []Action{say(msgGenericFailure)}
}

// Dispatch handles one event and returns the actions to perform, in order.
func (d *Dispatcher) Dispatch(ctx context.Context, chatID int64, ev Event) []Action {
	log := d.logger.WithFields(
		logging.F(logging.FieldChatID, chatID),
		logging.F(logging.FieldEvent, ev.eventName()))

	if _, ok := ev.(MemberJoined); ok {
		return []Action{mainMenu()}
	}
	if chatID != d.opts.ChatID {
		log.Debug("Ignoring event from unconfigured chat")
		return nil
	}

	switch e := ev.(type) {
	case TextMessage:
		return d.handleText(ctx, chatID, e.Text, log)
	case CallbackQuery:
		actions := []Action{AnswerCallback{QueryID: e.QueryID}}
		return append(actions, d.handleCallback(chatID, e, log.WithField(logging.FieldCallback, e.Data))...)
	case Photo:
		return d.handlePhoto(ctx, chatID, e, log)
	}
	return nil
}

func (d *Dispatcher) handleText(ctx context.Context, chatID int64, input string, log logging.Logger) []Action {
	cmd := ParseCommand(input)
	switch cmd {
	case CommandUnrecognized:
		log.Debug("Unrecognized command", logging.F(logging.FieldCommand, input))
		return nil
	case CommandText:
		if conv, ok := d.states.Get(chatID); ok {
			return d.handleFlowInput(chatID, conv, input, log.WithField(logging.FieldStep, conv.Step.String()))
		}
		return d.handleFreeJSON(input, log)
	}
	return d.handleCommand(ctx, chatID, cmd, log.WithField(logging.FieldCommand, cmd.String()))
}

func (d *Dispatcher) handleCommand(_ context.Context, chatID int64, cmd Command, log logging.Logger) []Action {
	switch cmd {
	case CommandStart:
		return []Action{mainMenu()}
	case CommandDay, CommandWeek, CommandMonth, CommandYear:
		actions, err := d.ReportActions(commandKinds[cmd], d.opts.Now())
		if err != nil {
			return d.fail(chatID, err, log)
		}
		return actions
	case CommandAdd:
		return d.startReceipt(chatID)
	case CommandDelete:
		return d.showDeleteList(chatID, log)
	case CommandRecurring:
		return []Action{recurringMenu()}
	case CommandJSON:
		d.states.Put(chatID, Conversation{Step: StepAwaitingJSON})
		return []Action{say(msgAskJSON + SubmissionExample)}
	case CommandPrompt:
		return []Action{say(msgPromptHeader + d.opts.PromptTemplate)}
	case CommandCancel:
		d.states.Clear(chatID)
		return []Action{say(msgCancelled)}
	}
	return nil
}

var commandKinds = map[Command]report.Kind{
	CommandDay:   report.KindDaily,
	CommandWeek:  report.KindWeekly,
	CommandMonth: report.KindMonthly,
	CommandYear:  report.KindYearly,
}

// fail maps err to a user message and ends the chat's flow.
func (d *Dispatcher) fail(chatID int64, err error, log logging.Logger) []Action {
	d.states.Clear(chatID)

	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		log.Info("Input rejected", logging.F(logging.FieldReason, ve.Reason))
		return []Action{say("❌ " + ve.Reason)}
	}
	log.WithError(err).Error("Failed to handle event")
	return []Action{say(msgGenericFailure)}
}

func mainMenu() Action {
	return SendText{
		Text: msgMainMenu,
		Reply: ReplyKeyboard{
			{"/day", "/week"},
			{"/month", "/year"},
			{"/add", "/delete"},
		},
	}
}

func (d *Dispatcher) categoryKeyboard(prefix string) InlineKeyboard {
	var kb InlineKeyboard
	for i, c := range d.opts.Catalog.All() {
		if i%2 == 0 {
			kb = append(kb, nil)
		}
		kb[len(kb)-1] = append(kb[len(kb)-1], Button{Text: c.Label(), Data: prefix + c.Key})
	}
	return kb
}
