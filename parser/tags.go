package parser

import (
	"strings"
)

// Tags — теги сообщения Twitch, которые нужны оверлею.
// Пустые значения и записи без '=' считаются отсутствующими.
type Tags struct {
	Color       string
	DisplayName string
	Login       string
	Emotes      []string
	Badges      []string
	SystemMsg   string
	EmoteSets   []string
	ID          string
	MsgID       string
}

// ParseTags разбирает блок тегов "key=value;key=value" (без ведущего '@').
func ParseTags(block string) Tags {
	var tags Tags
	eachTag(block, func(key, value string) {
		switch key {
		case "color":
			tags.Color = value
		case "display-name":
			tags.DisplayName = value
		case "login":
			tags.Login = value
		case "emotes":
			tags.Emotes = strings.Split(value, "/")
		case "badges":
			tags.Badges = strings.Split(value, ",")
		case "system-msg":
			tags.SystemMsg = strings.ReplaceAll(value, `\s`, " ")
		case "emote-sets":
			tags.EmoteSets = strings.Split(value, ",")
		case "id":
			tags.ID = value
		case "msg-id":
			tags.MsgID = value
		}
	})
	return tags
}

// eachTag вызывает fn для каждого непустого тега в порядке следования в строке.
func eachTag(block string, fn func(key, value string)) {
	block = strings.TrimPrefix(block, "@")
	for _, entry := range strings.Split(block, ";") {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" {
			continue
		}
		fn(key, value)
	}
}
