package bot

import "strings"

// Command is the parsed meaning of an incoming text message.
type Command int

const (
	// CommandText is free text: flow input or a pasted JSON receipt.
	CommandText Command = iota
	// CommandUnrecognized is a slash command the bot does not know.
	CommandUnrecognized
	CommandStart
	CommandDay
	CommandWeek
	CommandMonth
	CommandYear
	CommandAdd
	CommandDelete
	CommandRecurring
	CommandJSON
	CommandPrompt
	CommandCancel
)

var commandNames = map[string]Command{
	"start":     CommandStart,
	"menu":      CommandStart,
	"day":       CommandDay,
	"week":      CommandWeek,
	"month":     CommandMonth,
	"year":      CommandYear,
	"add":       CommandAdd,
	"delete":    CommandDelete,
	"recurring": CommandRecurring,
	"json":      CommandJSON,
	"prompt":    CommandPrompt,
	"cancel":    CommandCancel,
}

func (c Command) String() string {
	switch c {
	case CommandText:
		return "text"
	case CommandUnrecognized:
		return "unrecognized"
	}
	for name, cmd := range commandNames {
		if cmd == c && name != "menu" {
			return name
		}
	}
	return "unknown"
}

// ParseCommand classifies text. Slash commands are case-insensitive and may
// carry a "@botname" suffix and trailing arguments, which are ignored.
func ParseCommand(text string) Command {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "/") {
		return CommandText
	}
	word := strings.Fields(s[1:])
	if len(word) == 0 {
		return CommandUnrecognized
	}
	name := strings.ToLower(word[0])
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if cmd, ok := commandNames[name]; ok {
		return cmd
	}
	return CommandUnrecognized
}

// MenuCommands are registered with the chat platform as the command list.
var MenuCommands = []struct {
	Name        string
	Description string
}{
	{"start", "Show the main menu"},
	{"day", "Today's expenses"},
	{"week", "Last 7 days"},
	{"month", "This month"},
	{"year", "This year"},
	{"add", "Add a receipt"},
	{"delete", "Delete a recent receipt"},
	{"recurring", "Manage recurring expenses"},
	{"json", "Submit a receipt as JSON"},
	{"prompt", "Show the AI extraction prompt"},
	{"cancel", "Abort the current entry"},
}
