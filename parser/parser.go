package parser

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/model"
)

// fallbackColor используется, только если не удалось скорректировать даже цвет палитры.
const fallbackColor = "#acacbf"

// ErrUnhandledLine — строку невозможно разобрать как команду IRC.
var ErrUnhandledLine = errors.New("unhandled line")

// UnhandledLineError описывает строку, которую парсер пропустил.
// Вызывающий логирует её и продолжает со следующей строки.
type UnhandledLineError struct {
	Line string
	Err  error
}

func (e *UnhandledLineError) Error() string {
	return fmt.Sprintf("parser: %v: %q", e.Err, e.Line)
}

func (e *UnhandledLineError) Unwrap() error { return e.Err }

func (e *UnhandledLineError) Is(target error) bool { return target == ErrUnhandledLine }

// ColorTable — таблица цветов ников на время сессии.
type ColorTable interface {
	ColorFor(username string) string
	Correct(hex string) (string, error)
}

// Result — итог разбора одной строки.
type Result struct {
	Command  Command
	Channel  string
	Messages []model.Message
}

// Parser разбирает строки IRC Twitch в записи для оверлея.
type Parser struct {
	colors ColorTable
	emotes model.EmoteResolver
	badges model.BadgeResolver
}

// New создаёт Parser. emotes и badges только передаются в UserMessage.
func New(colors ColorTable, emotes model.EmoteResolver, badges model.BadgeResolver) *Parser {
	return &Parser{colors: colors, emotes: emotes, badges: badges}
}

// ParseMessage разбирает одну строку и возвращает записи в порядке генерации.
func (p *Parser) ParseMessage(raw string) ([]model.Message, error) {
	res, err := p.Parse(raw)
	return res.Messages, err
}

// Parse — как ParseMessage, но дополнительно возвращает команду и канал.
func (p *Parser) Parse(raw string) (Result, error) {
	l, err := tokenize(raw)
	if err != nil {
		return Result{}, &UnhandledLineError{Line: raw, Err: err}
	}

	res := Result{
		Command: commandOf(l.command),
		Channel: l.channel(),
	}

	switch {
	case res.Command == CommandWhisper:
		// Шёпот оверлей не показывает.
		return res, nil
	case res.Command == CommandGlobalUserState:
		return res, nil
	case res.Channel == "":
		return res, nil
	}

	switch res.Command {
	case CommandJoin, CommandPart, CommandNames, CommandEndOfNames, CommandMode:
	case CommandUserState, CommandClearChat, CommandHostTarget:
	case CommandRoomState:
		res.Messages = p.parseRoomState(l, res.Channel)
	case CommandUserNotice:
		res.Messages = p.parseUserNotice(l, res.Channel)
	case CommandNotice:
		res.Messages = p.parseNotice(l, res.Channel)
	case CommandPrivmsg:
		if l.tagged {
			res.Messages = p.parsePrivmsg(l, res.Channel)
		} else {
			res.Messages = p.parseNotice(l, res.Channel)
		}
	case CommandUnknown:
		log.WithFields(log.Fields{
			"command": l.command,
			"channel": res.Channel,
		}).Debug("parser: неизвестная команда, строка передана как есть")
		res.Messages = []model.Message{model.ChatMessage{ChannelName: res.Channel, Text: l.raw}}
	}

	return res, nil
}

func (p *Parser) parseRoomState(l line, channel string) []model.Message {
	status := FormatRoomModes(ParseRoomModes(l.tagBlock))
	return []model.Message{
		model.RoomStateMessage{ChatMessage: model.ChatMessage{ChannelName: channel, Text: status}},
	}
}

func (p *Parser) parseUserNotice(l line, channel string) []model.Message {
	tags := ParseTags(l.tagBlock)

	text := ""
	if tags.SystemMsg != "" {
		text = tags.SystemMsg + " "
	}
	out := []model.Message{model.ChatMessage{ChannelName: channel, Text: text}}

	body := l.body()
	if body == "" {
		return out
	}

	login := strings.ToLower(tags.DisplayName)
	if login == "" {
		login = tags.Login
	}
	if login == "" {
		return append(out, model.ChatMessage{ChannelName: channel, Text: body})
	}
	return append(out, p.userMessage(tags, login, body, channel))
}

func (p *Parser) parseNotice(l line, channel string) []model.Message {
	return []model.Message{model.ChatMessage{ChannelName: channel, Text: l.body()}}
}

func (p *Parser) parsePrivmsg(l line, channel string) []model.Message {
	tags := ParseTags(l.tagBlock)
	return []model.Message{p.userMessage(tags, l.nick(), l.body(), channel)}
}

func (p *Parser) userMessage(tags Tags, login, body, channel string) model.UserMessage {
	username := login
	if tags.DisplayName != "" {
		username = tags.DisplayName
	}

	text, action := unwrapAction(body)

	return model.UserMessage{
		ChatMessage:   model.ChatMessage{ChannelName: channel, Text: text},
		Badges:        tags.Badges,
		Emotes:        tags.Emotes,
		Username:      username,
		Color:         p.userColor(tags, login),
		Action:        action,
		EmoteResolver: p.emotes,
		BadgeResolver: p.badges,
	}
}

// userColor: цвет из тега используется как есть и в таблицу не попадает;
// без тега берётся (или назначается) цвет из таблицы по логину.
func (p *Parser) userColor(tags Tags, login string) string {
	if tags.Color != "" {
		if c, err := p.colors.Correct(tags.Color); err == nil {
			return c
		}
		log.WithField("color", tags.Color).Debug("parser: некорректный цвет в теге, используется таблица")
	}

	c, err := p.colors.Correct(p.colors.ColorFor(login))
	if err != nil {
		return fallbackColor
	}
	return c
}

const ctcpAction = "\x01ACTION"

func unwrapAction(body string) (string, bool) {
	if !strings.HasPrefix(body, ctcpAction) {
		return body, false
	}
	text := strings.TrimPrefix(body[len(ctcpAction):], " ")
	return strings.TrimSuffix(text, "\x01"), true
}
