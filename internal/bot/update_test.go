package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
		want Update
	}{
		{
			name: "start with token",
			body: `{"update_id":1,"message":{"message_id":5,"from":{"id":9,"username":"ayse"},"chat":{"id":12345},"text":"/start abc.def.ghi"}}`,
			ok:   true,
			want: Update{ChatID: 12345, Username: "ayse", Text: "/start abc.def.ghi", Command: "start", Payload: "abc.def.ghi"},
		},
		{
			name: "addressed command",
			body: `{"message":{"chat":{"id":-100},"text":"/Help@betzone_bot"}}`,
			ok:   true,
			want: Update{ChatID: -100, Text: "/Help@betzone_bot", Command: "help"},
		},
		{
			name: "plain text",
			body: `{"message":{"chat":{"id":1},"text":"  hi  "}}`,
			ok:   true,
			want: Update{ChatID: 1, Text: "hi"},
		},
		{name: "callback query", body: `{"callback_query":{"id":"x"}}`},
		{name: "sticker", body: `{"message":{"chat":{"id":1},"sticker":{}}}`},
		{name: "garbage", body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseUpdate([]byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
