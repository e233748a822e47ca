package bot

import (
	"fmt"
	"strconv"
	"strings"

	"fjacquet/receipt-bot/internal/currencyutils"
	"fjacquet/receipt-bot/internal/logging"
)

func recurringMenu() Action {
	return SendText{
		Text: msgRecurringMenu,
		Inline: InlineKeyboard{
			{{Text: "📋 List", Data: cbRecurringList}},
			{{Text: "➕ Add recurring expense", Data: cbRecurringAdd}},
			{{Text: "❌ Delete recurring expense", Data: cbRecurringDelete}},
			{{Text: "🔄 Apply for this month", Data: cbRecurringMonthly}},
		},
	}
}

func (d *Dispatcher) handleRecurringInput(chatID int64, conv Conversation, input string) []Action {
	switch conv.Step {
	case StepAwaitingRecurringStore:
		if input == "" {
			return []Action{say(msgEmptyStore)}
		}
		conv.Recurring.Store = input
		conv.Step = StepAwaitingRecurringAmount
		d.states.Put(chatID, conv)
		return []Action{say(msgAskRecurringAmount)}

	case StepAwaitingRecurringAmount:
		amount, err := currencyutils.ParsePositiveAmount(input)
		if err != nil {
			return []Action{say(msgInvalidAmount)}
		}
		conv.Recurring.Amount = amount
		conv.Step = StepAwaitingRecurringDescription
		d.states.Put(chatID, conv)
		return []Action{say(msgAskRecurringDesc)}

	case StepAwaitingRecurringDescription:
		if input == "" {
			return []Action{say(msgEmptyDescription)}
		}
		conv.Recurring.Description = input
		conv.Step = StepAwaitingRecurringCategory
		d.states.Put(chatID, conv)
		return []Action{SendText{Text: msgAskCategory, Inline: d.categoryKeyboard(cbRecurringCat)}}
	}
	return nil
}

func (d *Dispatcher) onRecurringCategory(chatID int64, conv Conversation, key string, log logging.Logger) []Action {
	if conv.Step != StepAwaitingRecurringCategory {
		return []Action{say(msgStaleButton)}
	}
	cat, ok := d.opts.Catalog.ByKey(key)
	if !ok {
		return d.fail(chatID, fmt.Errorf("unknown category %q", key), log)
	}
	d.states.Clear(chatID)
	conv.Recurring.Category = cat.Key
	if err := d.recurring.AddRecurringExpense(conv.Recurring); err != nil {
		return d.fail(chatID, err, log)
	}
	return []Action{say(msgRecurringAdded)}
}

func (d *Dispatcher) onRecurringList(chatID int64, log logging.Logger) []Action {
	expenses, err := d.recurring.GetRecurringExpenses()
	if err != nil {
		return d.fail(chatID, err, log)
	}
	if len(expenses) == 0 {
		return []Action{say(msgNoRecurring)}
	}
	var b strings.Builder
	b.WriteString("📋 Recurring expenses:\n\n")
	for i, e := range expenses {
		label, _ := d.opts.Catalog.DisplayLabel(e.Category)
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Store)
		fmt.Fprintf(&b, "   💰 Amount: %s\n", currencyutils.FormatAmount(e.Amount, d.opts.CurrencySymbol))
		fmt.Fprintf(&b, "   📝 Description: %s\n", e.Description)
		fmt.Fprintf(&b, "   🏷️ Category: %s\n\n", label)
	}
	return []Action{say(strings.TrimRight(b.String(), "\n"))}
}

func (d *Dispatcher) onRecurringDeleteList(chatID int64, log logging.Logger) []Action {
	expenses, err := d.recurring.GetRecurringExpenses()
	if err != nil {
		return d.fail(chatID, err, log)
	}
	if len(expenses) == 0 {
		return []Action{say(msgNoRecurringDelete)}
	}
	kb := make(InlineKeyboard, 0, len(expenses))
	for i, e := range expenses {
		kb = append(kb, []Button{{
			Text: fmt.Sprintf("%d. %s (%s)", i+1, e.Store, currencyutils.FormatAmount(e.Amount, d.opts.CurrencySymbol)),
			Data: cbDeleteRecurring + strconv.Itoa(i),
		}})
	}
	return []Action{SendText{Text: msgChooseRecurring, Inline: kb}}
}

func (d *Dispatcher) onDeleteRecurring(chatID int64, raw string, log logging.Logger) []Action {
	index, err := strconv.Atoi(raw)
	if err != nil {
		return []Action{say(msgStaleButton)}
	}
	deleted, err := d.recurring.DeleteRecurringExpense(index)
	if err != nil {
		return d.fail(chatID, err, log)
	}
	if !deleted {
		log.Info("Recurring expense to delete is gone", logging.F(logging.FieldIndex, index))
		return []Action{say(msgRecurringGone)}
	}
	return []Action{say(msgRecurringDeleted)}
}

func (d *Dispatcher) onRecurringApply(chatID int64, log logging.Logger) []Action {
	added, err := d.recurring.AddMonthlyExpenses()
	if err != nil {
		return d.fail(chatID, err, log)
	}
	return []Action{say(fmt.Sprintf("✅ Added %d recurring expense(s) for this month", added))}
}
