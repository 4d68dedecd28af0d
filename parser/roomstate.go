package parser

import (
	"strconv"
	"strings"
)

// RoomMode — один включённый режим канала из ROOMSTATE.
type RoomMode interface {
	Label() string
}

type (
	// BroadcasterLang — язык трансляции.
	BroadcasterLang string
	// EmoteOnly — только эмоуты.
	EmoteOnly struct{}
	// FollowersOnly — только фолловеры, минимальный стаж в минутах.
	FollowersOnly int
	// R9K — уникальные сообщения.
	R9K struct{}
	// Slow — задержка между сообщениями в секундах.
	Slow int
	// SubsOnly — только подписчики.
	SubsOnly struct{}
)

func (m BroadcasterLang) Label() string { return string(m) }
func (EmoteOnly) Label() string         { return "EMOTE-ONLY" }
func (m FollowersOnly) Label() string   { return "FOLLOW " + strconv.Itoa(int(m)) + "m" }
func (R9K) Label() string               { return "R9K" }
func (m Slow) Label() string            { return "SLOW " + strconv.Itoa(int(m)) + "s" }
func (SubsOnly) Label() string          { return "SUB" }

// ParseRoomModes возвращает включённые режимы в порядке следования тегов.
// Нечисловые значения slow/followers-only пропускаются.
func ParseRoomModes(block string) []RoomMode {
	var modes []RoomMode
	eachTag(block, func(key, value string) {
		switch key {
		case "broadcaster-lang":
			modes = append(modes, BroadcasterLang(value))
		case "emote-only":
			if value == "1" {
				modes = append(modes, EmoteOnly{})
			}
		case "followers-only":
			if n, err := strconv.Atoi(value); err == nil && n != -1 {
				modes = append(modes, FollowersOnly(n))
			}
		case "r9k":
			if value == "1" {
				modes = append(modes, R9K{})
			}
		case "slow":
			if n, err := strconv.Atoi(value); err == nil && n != 0 {
				modes = append(modes, Slow(n))
			}
		case "subs-only":
			if value == "1" {
				modes = append(modes, SubsOnly{})
			}
		}
	})
	return modes
}

// FormatRoomModes склеивает режимы в строку статуса, каждый с двумя пробелами после.
func FormatRoomModes(modes []RoomMode) string {
	var sb strings.Builder
	for _, m := range modes {
		sb.WriteString(m.Label())
		sb.WriteString("  ")
	}
	return sb.String()
}
