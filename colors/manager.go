package colors

import (
	"math/rand"
	"sync"
	"time"
)

// Palette — цвета, которые выдаются пользователям без собственного цвета в Twitch.
var Palette = [...]string{
	"#ff0000", // red
	"#ff4500", // orange red
	"#ff69b4", // hot pink
	"#0000ff", // blue
	"#2e8b57", // sea green
	"#8a2be2", // blue violet
	"#008000", // green
	"#daa520", // goldenrod
	"#00ff7f", // spring green
	"#b22222", // firebrick
	"#d2691e", // chocolate
	"#ff7f50", // coral
	"#5f9ea0", // cadet blue
	"#9acd32", // yellow green
	"#1e90ff", // dodger blue
}

// Manager хранит цвета ников за время жизни чат-сессии.
type Manager struct {
	mu     sync.Mutex
	colors map[string]string
	rnd    *rand.Rand
}

// Option настраивает Manager.
type Option func(*Manager)

// WithRand подменяет источник случайности (для детерминированных тестов).
func WithRand(rnd *rand.Rand) Option {
	return func(m *Manager) {
		m.rnd = rnd
	}
}

// NewManager создаёт пустую таблицу цветов.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		colors: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m
}

// RandomColor возвращает случайный цвет палитры.
func (m *Manager) RandomColor() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Palette[m.rnd.Intn(len(Palette))]
}

// AddUserColor сохраняет (или перезаписывает) цвет пользователя.
func (m *Manager) AddUserColor(username, color string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.colors[username] = color
}

// UserColor возвращает сохранённый цвет пользователя.
func (m *Manager) UserColor(username string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color, ok := m.colors[username]
	return color, ok
}

// UserColors возвращает копию всей таблицы.
func (m *Manager) UserColors() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.colors))
	for k, v := range m.colors {
		out[k] = v
	}
	return out
}

// ColorFor возвращает сохранённый цвет пользователя, а при первой встрече
// назначает и запоминает случайный цвет палитры.
func (m *Manager) ColorFor(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if color, ok := m.colors[username]; ok {
		return color
	}
	color := Palette[m.rnd.Intn(len(Palette))]
	m.colors[username] = color
	return color
}
