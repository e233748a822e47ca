package telegram

import (
	"fjacquet/receipt-bot/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const chartFileName = "chart.png"

func inlineMarkup(kb bot.InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func replyMarkup(kb bot.ReplyKeyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// toChattable converts a bot action into the Bot API request for chatID.
// The boolean reports whether the request goes through Request rather than
// Send, which is the case for calls that do not return a message.
func toChattable(chatID int64, action bot.Action) (tgbotapi.Chattable, bool) {
	switch a := action.(type) {
	case bot.SendText:
		msg := tgbotapi.NewMessage(chatID, a.Text)
		msg.ParseMode = string(a.ParseMode)
		switch {
		case len(a.Inline) > 0:
			msg.ReplyMarkup = inlineMarkup(a.Inline)
		case len(a.Reply) > 0:
			msg.ReplyMarkup = replyMarkup(a.Reply)
		}
		return msg, false
	case bot.SendPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: chartFileName, Bytes: a.Image})
		photo.Caption = a.Caption
		return photo, false
	case bot.EditText:
		if len(a.Keyboard) > 0 {
			return tgbotapi.NewEditMessageTextAndMarkup(chatID, a.MessageID, a.Text, inlineMarkup(a.Keyboard)), false
		}
		return tgbotapi.NewEditMessageText(chatID, a.MessageID, a.Text), false
	case bot.AnswerCallback:
		return tgbotapi.NewCallback(a.QueryID, ""), true
	}
	return nil, false
}

func actionName(action bot.Action) string {
	switch action.(type) {
	case bot.SendText:
		return "sendMessage"
	case bot.SendPhoto:
		return "sendPhoto"
	case bot.EditText:
		return "editMessageText"
	case bot.AnswerCallback:
		return "answerCallbackQuery"
	}
	return "unknown"
}

// largestPhoto picks the highest resolution variant Telegram offers.
func largestPhoto(sizes []tgbotapi.PhotoSize) (tgbotapi.PhotoSize, bool) {
	if len(sizes) == 0 {
		return tgbotapi.PhotoSize{}, false
	}
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best, true
}

func commandList() tgbotapi.SetMyCommandsConfig {
	commands := make([]tgbotapi.BotCommand, 0, len(bot.MenuCommands))
	for _, c := range bot.MenuCommands {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	return tgbotapi.NewSetMyCommands(commands...)
}
