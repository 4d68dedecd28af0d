package model

// Kind различает типы записей, которые парсер отдаёт рендереру.
type Kind int

const (
	KindChat Kind = iota
	KindRoomState
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindRoomState:
		return "roomstate"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Message — общая часть всех записей чата.
type Message interface {
	Channel() string
	Content() string
	Kind() Kind
}

// EmoteResolver разрешает позиции эмоутов в картинки. Парсер его не вызывает,
// а только передаёт рендереру вместе с UserMessage.
type EmoteResolver interface {
	EmoteURL(id string) string
}

// BadgeResolver разрешает идентификаторы бейджей в картинки.
type BadgeResolver interface {
	BadgeURL(badge string) string
}

// ChatMessage — простая строка чата канала.
type ChatMessage struct {
	ChannelName string
	Text        string
}

func (m ChatMessage) Channel() string { return m.ChannelName }
func (m ChatMessage) Content() string { return m.Text }
func (m ChatMessage) Kind() Kind      { return KindChat }

// RoomStateMessage — строка статуса канала (slow, sub-only и т.д.).
// Новая строка заменяет предыдущую строку статуса того же канала.
type RoomStateMessage struct {
	ChatMessage
}

func (m RoomStateMessage) Kind() Kind { return KindRoomState }

// UserMessage — сообщение пользователя с ником, цветом, бейджами и эмоутами.
type UserMessage struct {
	ChatMessage

	// Badges — идентификаторы вида "subscriber/12" в исходном порядке.
	Badges []string
	// Emotes — диапазоны вида "id:start-end,start-end".
	Emotes   []string
	Username string
	// Color всегда скорректирован и имеет вид #rrggbb.
	Color  string
	Action bool

	EmoteResolver EmoteResolver
	BadgeResolver BadgeResolver
}

func (m UserMessage) Kind() Kind { return KindUser }
