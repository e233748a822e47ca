package bot

// Event is something the chat platform delivered for a chat.
type Event interface {
	eventName() string
}

// TextMessage is a plain text message.
type TextMessage struct {
	Text string
}

// CallbackQuery is an inline-button press on a message the bot sent.
type CallbackQuery struct {
	QueryID   string
	Data      string
	MessageID int
}

// MemberJoined is fired when someone joins a chat the bot is in.
type MemberJoined struct{}

// Photo is an image sent to the chat, already downloaded.
type Photo struct {
	Image    []byte
	MIMEType string
}

func (TextMessage) eventName() string   { return "text" }
func (CallbackQuery) eventName() string { return "callback" }
func (MemberJoined) eventName() string  { return "member_joined" }
func (Photo) eventName() string         { return "photo" }
