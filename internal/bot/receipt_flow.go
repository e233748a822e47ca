package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/validation"
)

func (d *Dispatcher) startReceipt(chatID int64) []Action {
	d.states.Put(chatID, Conversation{Step: StepAwaitingDate})
	return []Action{SendText{
		Text:   msgAskDate,
		Inline: InlineKeyboard{{{Text: "🕒 Now", Data: cbTimeNow}}},
	}}
}

// handleFlowInput feeds free text to the step the chat is waiting on.
// Unparsable input re-prompts and keeps the state.
func (d *Dispatcher) handleFlowInput(chatID int64, conv Conversation, input string, log logging.Logger) []Action {
	input = strings.TrimSpace(input)

	switch conv.Step {
	case StepAwaitingDate:
		date, err := dateutils.ParseUserDate(input, d.opts.Location)
		if err != nil {
			log.Debug("Unparsable receipt date", logging.F(logging.FieldReason, err.Error()))
			return []Action{say(msgInvalidDate)}
		}
		return d.setReceiptDate(chatID, conv, date.UTC())

	case StepAwaitingStore:
		if input == "" {
			return []Action{say(msgEmptyStore)}
		}
		conv.Receipt.Store = input
		conv.Step = StepAwaitingItemName
		d.states.Put(chatID, conv)
		return []Action{say(msgAskItemName)}

	case StepAwaitingItemName:
		if input == "" {
			return []Action{say(msgEmptyItemName)}
		}
		conv.PendingName = input
		conv.Step = StepAwaitingItemPrice
		d.states.Put(chatID, conv)
		return []Action{say(msgAskItemPrice)}

	case StepAwaitingItemPrice:
		price, err := currencyutils.ParseAmount(input)
		if err != nil || price.IsNegative() {
			return []Action{say(msgInvalidPrice)}
		}
		conv.Receipt.Items = append(conv.Receipt.Items, models.Item{Name: conv.PendingName, Price: price})
		conv.CurrentItem = len(conv.Receipt.Items) - 1
		conv.PendingName = ""
		conv.Step = StepAwaitingCategory
		d.states.Put(chatID, conv)
		return []Action{SendText{Text: msgAskCategory, Inline: d.categoryKeyboard(cbCategory)}}

	case StepAwaitingCategory, StepAwaitingNextAction, StepAwaitingRecurringCategory:
		return []Action{say(msgUseButtons)}

	case StepAwaitingRecurringStore, StepAwaitingRecurringAmount, StepAwaitingRecurringDescription:
		return d.handleRecurringInput(chatID, conv, input)

	case StepAwaitingJSON:
		d.states.Clear(chatID)
		r, err := DecodeSubmission(input, d.opts.Catalog, d.opts.Location)
		if apperror.IsMalformed(err) {
			log.Debug("Invalid JSON submission", logging.F(logging.FieldReason, err.Error()))
			return []Action{say(msgInvalidJSON)}
		}
		if err != nil {
			return d.fail(chatID, err, log)
		}
		return d.save(chatID, r, log)
	}

	d.states.Clear(chatID)
	return nil
}

func (d *Dispatcher) setReceiptDate(chatID int64, conv Conversation, date time.Time) []Action {
	conv.Receipt = models.Receipt{Date: date}
	conv.Step = StepAwaitingStore
	d.states.Put(chatID, conv)
	return []Action{say(fmt.Sprintf("Date set to: %s\n\n%s", dateutils.FormatLocal(date, d.opts.Location), msgAskStore))}
}

func (d *Dispatcher) onTimeNow(chatID int64, conv Conversation) []Action {
	if conv.Step != StepAwaitingDate {
		return []Action{say(msgStaleButton)}
	}
	return d.setReceiptDate(chatID, conv, d.opts.Now().UTC())
}

func (d *Dispatcher) onCategory(chatID int64, conv Conversation, key string, log logging.Logger) []Action {
	if conv.Step != StepAwaitingCategory {
		return []Action{say(msgStaleButton)}
	}
	cat, ok := d.opts.Catalog.ByKey(key)
	if !ok || conv.CurrentItem < 0 || conv.CurrentItem >= len(conv.Receipt.Items) {
		return d.fail(chatID, fmt.Errorf("no item awaiting category %q", key), log)
	}
	conv.Receipt.Items[conv.CurrentItem].Category = cat.Key
	conv.Step = StepAwaitingNextAction
	d.states.Put(chatID, conv)
	return []Action{SendText{
		Text: msgItemAdded,
		Inline: InlineKeyboard{
			{{Text: "➕ Add another item", Data: cbAddItem}},
			{{Text: "✅ Finish", Data: cbFinish}},
			{{Text: "❌ Cancel", Data: cbCancel}},
		},
	}}
}

func (d *Dispatcher) onAddItem(chatID int64, conv Conversation) []Action {
	if conv.Step != StepAwaitingNextAction {
		return []Action{say(msgStaleButton)}
	}
	conv.Step = StepAwaitingItemName
	d.states.Put(chatID, conv)
	return []Action{say(msgAskItemName)}
}

// onFinish recomputes the amount, validates and saves. The flow ends
// whatever the outcome.
func (d *Dispatcher) onFinish(chatID int64, conv Conversation, log logging.Logger) []Action {
	if conv.Step != StepAwaitingNextAction {
		return []Action{say(msgStaleButton)}
	}
	d.states.Clear(chatID)
	r := conv.Receipt.WithComputedAmount()
	if err := validation.ValidateSubmission(r, d.opts.Catalog); err != nil {
		return d.fail(chatID, err, log)
	}
	return d.save(chatID, r, log)
}

func (d *Dispatcher) save(chatID int64, r models.Receipt, log logging.Logger) []Action {
	if err := d.receipts.SaveReceipt(r); err != nil {
		return d.fail(chatID, err, log)
	}
	return []Action{say(fmt.Sprintf("✅ Receipt saved! %s %s", r.Store, currencyutils.FormatAmount(r.Amount, d.opts.CurrencySymbol)))}
}

// handleFreeJSON tries text sent outside any flow as a JSON receipt. Text
// that is not JSON is not a receipt and is ignored.
func (d *Dispatcher) handleFreeJSON(input string, log logging.Logger) []Action {
	r, err := DecodeSubmission(input, d.opts.Catalog, d.opts.Location)
	if apperror.IsMalformed(err) {
		log.Debug("Ignoring non-JSON message")
		return nil
	}
	if err != nil {
		return d.fail(d.opts.ChatID, err, log)
	}
	return d.save(d.opts.ChatID, r, log)
}

func (d *Dispatcher) handlePhoto(ctx context.Context, chatID int64, p Photo, log logging.Logger) []Action {
	if d.extractor == nil {
		log.Debug("Ignoring photo, extraction disabled")
		return nil
	}
	reply, err := d.extractor.Extract(ctx, p.Image, p.MIMEType)
	if err != nil {
		log.WithError(err).Error("Receipt extraction failed")
		return []Action{say(msgPhotoFailed)}
	}
	r, err := DecodeSubmission(reply, d.opts.Catalog, d.opts.Location)
	if apperror.IsMalformed(err) {
		log.WithError(err).Warn("Extractor returned unreadable JSON")
		return []Action{say(msgPhotoFailed)}
	}
	if err != nil {
		return d.fail(chatID, err, log)
	}
	return d.save(chatID, r, log)
}
