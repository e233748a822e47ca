package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/receipt-bot/internal/apperror"
	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/dateutils"
	"fjacquet/receipt-bot/internal/logging"
	"fjacquet/receipt-bot/internal/models"
	"fjacquet/receipt-bot/internal/store"
)

const refDayLayout = "20060102"

// encodeRef packs a receipt reference into callback data:
// del_receipt_<YYYYMMDD>_<index>.
func encodeRef(ref models.ReceiptRef) string {
	day := strings.ReplaceAll(ref.Day, "-", "")
	return fmt.Sprintf("%s%s_%d", cbDeleteReceipt, day, ref.Index)
}

func decodeRef(data string) (models.ReceiptRef, error) {
	rest := strings.TrimPrefix(data, cbDeleteReceipt)
	day, idx, ok := strings.Cut(rest, "_")
	if !ok {
		return models.ReceiptRef{}, fmt.Errorf("malformed receipt reference %q", data)
	}
	t, err := time.Parse(refDayLayout, day)
	if err != nil {
		return models.ReceiptRef{}, fmt.Errorf("malformed receipt day %q: %w", day, err)
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 0 {
		return models.ReceiptRef{}, fmt.Errorf("malformed receipt index %q", idx)
	}
	return models.ReceiptRef{Day: t.Format(dateutils.DateLayoutISO), Index: index}, nil
}

func (d *Dispatcher) deleteKeyboard(recent []models.RecentReceipt) InlineKeyboard {
	kb := make(InlineKeyboard, 0, len(recent))
	for _, rr := range recent {
		label := fmt.Sprintf("%s %s (%s)",
			dateutils.FormatLocal(rr.Receipt.Date, d.opts.Location),
			rr.Receipt.Store,
			currencyutils.FormatAmount(rr.Receipt.Amount, d.opts.CurrencySymbol))
		kb = append(kb, []Button{{Text: label, Data: encodeRef(rr.Ref)}})
	}
	return kb
}

func (d *Dispatcher) showDeleteList(chatID int64, log logging.Logger) []Action {
	recent, err := d.receipts.GetRecentReceipts(store.DefaultRecentLimit)
	if err != nil {
		return d.fail(chatID, err, log)
	}
	if len(recent) == 0 {
		return []Action{say(msgNothingToDelete)}
	}
	return []Action{SendText{Text: msgChooseDelete, Inline: d.deleteKeyboard(recent)}}
}

// onDeleteReceipt deletes the referenced receipt and rewrites the list
// message with what is left.
func (d *Dispatcher) onDeleteReceipt(chatID int64, q CallbackQuery, log logging.Logger) []Action {
	ref, err := decodeRef(q.Data)
	if err != nil {
		log.Debug("Bad delete reference", logging.F(logging.FieldReason, err.Error()))
		return []Action{say(msgStaleButton)}
	}

	var actions []Action
	err = d.removeReceipt(ref)
	deleted := err == nil
	switch {
	case apperror.IsNotFound(err):
		log.Info("Receipt to delete is gone", logging.F(logging.FieldReason, err.Error()))
		actions = append(actions, say(msgReceiptGone))
	case err != nil:
		return d.fail(chatID, err, log)
	}

	remaining, err := d.receipts.GetRecentReceipts(store.DefaultRecentLimit)
	if err != nil {
		return append(actions, d.fail(chatID, err, log)...)
	}

	switch {
	case len(remaining) == 0 && deleted:
		actions = append(actions, EditText{MessageID: q.MessageID, Text: msgDeletedLast})
	case len(remaining) == 0:
		actions = append(actions, EditText{MessageID: q.MessageID, Text: msgNothingToDelete})
	case deleted:
		actions = append(actions, EditText{MessageID: q.MessageID, Text: msgDeletedMore, Keyboard: d.deleteKeyboard(remaining)})
	default:
		actions = append(actions, EditText{MessageID: q.MessageID, Text: msgChooseDelete, Keyboard: d.deleteKeyboard(remaining)})
	}
	return actions
}

// removeReceipt deletes ref. A receipt that is no longer there is reported
// as a NotFoundError.
func (d *Dispatcher) removeReceipt(ref models.ReceiptRef) error {
	deleted, err := d.receipts.DeleteReceiptRef(ref)
	if err != nil {
		return err
	}
	if !deleted {
		return &apperror.NotFoundError{Resource: "receipt", Key: ref.String()}
	}
	return nil
}
