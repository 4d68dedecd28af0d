package parser

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/pkg/errors"
)

// line — одна строка протокола, разобранная на части.
type line struct {
	raw    string
	fields []string

	tagged   bool
	tagBlock string

	source  string
	command string
	params  []string
}

func tokenize(raw string) (line, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(raw) == "" {
		return line{}, errors.New("empty line")
	}

	l := line{
		raw:    raw,
		fields: strings.Split(raw, " "),
	}

	rest := raw
	// Встречаются строки с лишним ':' перед блоком тегов.
	if strings.HasPrefix(rest, ":@") {
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "@") {
		block, after, _ := strings.Cut(rest[1:], " ")
		// Источник, приклеенный к тегам: "...;system-msg=;:nick!nick@host PRIVMSG".
		if i := strings.Index(block, ";:"); i >= 0 {
			after = block[i+1:] + " " + after
			block = block[:i]
		}
		l.tagged = true
		l.tagBlock = block
		rest = after
	}

	msg, err := ircmsg.ParseLine(rest)
	if err != nil {
		return l, errors.Wrap(err, "parse irc line")
	}

	l.source = msg.Source
	l.command = strings.ToUpper(msg.Command)
	l.params = msg.Params
	return l, nil
}

// channel возвращает имя канала из первого поля, начинающегося с '#'.
func (l line) channel() string {
	for _, f := range l.fields {
		if strings.HasPrefix(f, "#") {
			return strings.TrimSpace(f[1:])
		}
	}
	return ""
}

// nick — логин отправителя из "nick!user@host".
func (l line) nick() string {
	nick, _, _ := strings.Cut(l.source, "!")
	return nick
}

// body — всё, что идёт после канала.
func (l line) body() string {
	if len(l.params) < 2 {
		return ""
	}
	return strings.Join(l.params[1:], " ")
}
