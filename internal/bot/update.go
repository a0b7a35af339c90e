package bot

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Update is the slice of a Telegram update the API reacts to.
type Update struct {
	ChatID   int64
	Username string
	Text     string
	Command  string
	// Payload is the text after the command, e.g. the link token in
	// "/start <token>".
	Payload string
}

// ParseUpdate reads a webhook body. ok is false for anything that is not a
// text message.
func ParseUpdate(body []byte) (Update, bool) {
	if !gjson.ValidBytes(body) {
		return Update{}, false
	}
	msg := gjson.GetBytes(body, "message")
	if !msg.Exists() {
		msg = gjson.GetBytes(body, "edited_message")
	}
	chat := msg.Get("chat.id")
	text := msg.Get("text")
	if !chat.Exists() || !text.Exists() {
		return Update{}, false
	}

	u := Update{
		ChatID:   chat.Int(),
		Username: msg.Get("from.username").String(),
		Text:     strings.TrimSpace(text.String()),
	}
	if strings.HasPrefix(u.Text, "/") {
		cmd, rest, _ := strings.Cut(u.Text, " ")
		// "/start@MyBot" addresses a specific bot in group chats
		cmd, _, _ = strings.Cut(cmd, "@")
		u.Command = strings.ToLower(strings.TrimPrefix(cmd, "/"))
		u.Payload = strings.TrimSpace(rest)
	}
	return u, true
}
