package tokens

import (
	"strings"
	"time"
)

// Token описывает OAuth токен чата.
type Token struct {
	Access    string
	ExpiresAt time.Time
}

// TokenStore описывает хранилище токена чата.
type TokenStore interface {
	LoadChatToken() (*Token, error)
}

// IRCPassword возвращает токен в виде, который ожидает Twitch IRC ("oauth:...").
func (t Token) IRCPassword() string {
	if strings.HasPrefix(t.Access, "oauth:") {
		return t.Access
	}
	return "oauth:" + t.Access
}

// Expired сообщает, истёк ли токен к моменту now. Токен без срока не истекает.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}
