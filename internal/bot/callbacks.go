package bot

import (
	"strings"

	"fjacquet/receipt-bot/internal/logging"
)

func (d *Dispatcher) handleCallback(chatID int64, q CallbackQuery, log logging.Logger) []Action {
	conv, _ := d.states.Get(chatID)

	switch {
	case q.Data == cbTimeNow:
		return d.onTimeNow(chatID, conv)
	case strings.HasPrefix(q.Data, cbCategory):
		return d.onCategory(chatID, conv, strings.TrimPrefix(q.Data, cbCategory), log)
	case q.Data == cbAddItem:
		return d.onAddItem(chatID, conv)
	case q.Data == cbFinish:
		return d.onFinish(chatID, conv, log)
	case q.Data == cbCancel:
		d.states.Clear(chatID)
		return []Action{say(msgCancelled)}
	case strings.HasPrefix(q.Data, cbDeleteReceipt):
		return d.onDeleteReceipt(chatID, q, log)
	case q.Data == cbRecurringList:
		return d.onRecurringList(chatID, log)
	case q.Data == cbRecurringAdd:
		d.states.Put(chatID, Conversation{Step: StepAwaitingRecurringStore})
		return []Action{say(msgAskRecurringStore)}
	case q.Data == cbRecurringDelete:
		return d.onRecurringDeleteList(chatID, log)
	case q.Data == cbRecurringMonthly:
		return d.onRecurringApply(chatID, log)
	case strings.HasPrefix(q.Data, cbDeleteRecurring):
		return d.onDeleteRecurring(chatID, strings.TrimPrefix(q.Data, cbDeleteRecurring), log)
	case strings.HasPrefix(q.Data, cbRecurringCat):
		return d.onRecurringCategory(chatID, conv, strings.TrimPrefix(q.Data, cbRecurringCat), log)
	case q.Data == cbYearlyDetail:
		return d.onYearlyDetail(chatID, log)
	}

	log.Debug("Unknown callback data")
	return []Action{say(msgStaleButton)}
}
