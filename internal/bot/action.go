package bot

// Action is an outbound side effect produced by the dispatcher. The
// transport edge executes actions in order.
type Action interface {
	actionName() string
}

// ParseMode selects Telegram message formatting.
type ParseMode string

const (
	ParseModeNone ParseMode = ""
	ParseModeHTML ParseMode = "HTML"
)

// Button is one inline button.
type Button struct {
	Text string
	Data string
}

// InlineKeyboard is attached below a message; presses come back as CallbackQuery.
type InlineKeyboard [][]Button

// ReplyKeyboard replaces the user's keyboard; presses send the button text.
type ReplyKeyboard [][]string

// SendText posts a new message. At most one keyboard is set.
type SendText struct {
	Text      string
	ParseMode ParseMode
	Inline    InlineKeyboard
	Reply     ReplyKeyboard
}

// SendPhoto posts a PNG image.
type SendPhoto struct {
	Image   []byte
	Caption string
}

// EditText rewrites a message previously sent by the bot. A nil Keyboard
// removes the inline keyboard.
type EditText struct {
	MessageID int
	Text      string
	Keyboard  InlineKeyboard
}

// AnswerCallback acknowledges a CallbackQuery so the client stops spinning.
type AnswerCallback struct {
	QueryID string
}

func (SendText) actionName() string       { return "send_text" }
func (SendPhoto) actionName() string      { return "send_photo" }
func (EditText) actionName() string       { return "edit_text" }
func (AnswerCallback) actionName() string { return "answer_callback" }

func say(msg string) Action {
	return SendText{Text: msg}
}
