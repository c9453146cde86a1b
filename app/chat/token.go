package chat

import (
	"strings"
)

// TokenKind is a recognised control token.
type TokenKind int

const (
	TokenNone TokenKind = iota
	TokenFinish
	TokenGiveUp
	TokenUpdate
	TokenAccept
)

func (k TokenKind) String() string {
	switch k {
	case TokenFinish:
		return "finish"
	case TokenGiveUp:
		return "giveup"
	case TokenUpdate:
		return "update"
	case TokenAccept:
		return "accept"
	default:
		return "none"
	}
}

// Token is a parsed control token. Target is the mentioned user for TokenAccept.
type Token struct {
	Kind   TokenKind
	Target string
}

// ParseTokenName maps a bare trigger name to its kind.
func ParseTokenName(name string) (TokenKind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "finish":
		return TokenFinish, true
	case "giveup", "give-up":
		return TokenGiveUp, true
	case "update":
		return TokenUpdate, true
	default:
		return TokenNone, false
	}
}

// ParseToken recognises "<prefix>match finish|giveup|update" and
// "<prefix>accept <@id>" in a chat message.
func ParseToken(prefix, content string) (Token, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return Token{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) != 2 {
		return Token{}, false
	}

	switch strings.ToLower(fields[0]) {
	case "match":
		kind, ok := ParseTokenName(fields[1])
		if !ok {
			return Token{}, false
		}
		return Token{Kind: kind}, true
	case "accept":
		target, ok := ParseMention(fields[1])
		if !ok {
			return Token{}, false
		}
		return Token{Kind: TokenAccept, Target: target}, true
	default:
		return Token{}, false
	}
}

// ParseMention extracts the user id from "<@id>" or "<@!id>".
func ParseMention(s string) (string, bool) {
	if !strings.HasPrefix(s, "<@") || !strings.HasSuffix(s, ">") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(s, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" {
		return "", false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return id, true
}

// Mention formats a user mention.
func Mention(userID string) string {
	return "<@" + userID + ">"
}
