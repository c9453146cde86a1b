package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Token
		wantOK  bool
	}{
		{name: "finish", content: "~match finish", want: Token{Kind: TokenFinish}, wantOK: true},
		{name: "giveup with spacing", content: "  ~match   giveup ", want: Token{Kind: TokenGiveUp}, wantOK: true},
		{name: "update uppercase", content: "~MATCH UPDATE", want: Token{Kind: TokenUpdate}, wantOK: true},
		{name: "accept mention", content: "~accept <@123456>", want: Token{Kind: TokenAccept, Target: "123456"}, wantOK: true},
		{name: "accept nickname mention", content: "~accept <@!42>", want: Token{Kind: TokenAccept, Target: "42"}, wantOK: true},
		{name: "missing prefix", content: "match finish"},
		{name: "unknown action", content: "~match surrender"},
		{name: "trailing words", content: "~match finish now"},
		{name: "accept without mention", content: "~accept bob"},
		{name: "accept non numeric mention", content: "~accept <@bob>"},
		{name: "empty", content: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseToken("~", tt.content)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTokenName(t *testing.T) {
	kind, ok := ParseTokenName("giveup")
	assert.True(t, ok)
	assert.Equal(t, TokenGiveUp, kind)

	_, ok = ParseTokenName("accept")
	assert.False(t, ok)
}

func TestMentionRoundTrip(t *testing.T) {
	id, ok := ParseMention(Mention("987"))
	assert.True(t, ok)
	assert.Equal(t, "987", id)
}
