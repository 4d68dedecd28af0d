// Package filter отбрасывает сообщения пользователей из списка игнорирования.
package filter

import (
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"twitch-chat-overlay/model"
)

// Ignore хранит glob-шаблоны игнорируемых ников (например, "*bot", "streamelements").
type Ignore struct {
	mu       sync.RWMutex
	patterns []glob.Glob
}

// NewIgnore компилирует шаблоны; ники сравниваются без учёта регистра.
func NewIgnore(patterns []string) (*Ignore, error) {
	f := &Ignore{}
	if err := f.Set(patterns); err != nil {
		return nil, err
	}
	return f, nil
}

// Set заменяет список шаблонов (используется при перезагрузке конфигурации).
func (f *Ignore) Set(patterns []string) error {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return errors.Wrapf(err, "filter: compile pattern %q", p)
		}
		compiled = append(compiled, g)
	}

	f.mu.Lock()
	f.patterns = compiled
	f.mu.Unlock()
	return nil
}

// Allow сообщает, нужно ли показывать запись. Записи не от пользователей проходят всегда.
func (f *Ignore) Allow(msg model.Message) bool {
	user, ok := msg.(model.UserMessage)
	if !ok {
		return true
	}
	return !f.Match(user.Username)
}

// Match проверяет ник по шаблонам.
func (f *Ignore) Match(username string) bool {
	name := strings.ToLower(username)

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, g := range f.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
