package parser

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitch-chat-overlay/colors"
	"twitch-chat-overlay/model"
)

type stubResolver struct{}

func (stubResolver) EmoteURL(id string) string    { return "emote/" + id }
func (stubResolver) BadgeURL(badge string) string { return "badge/" + badge }

func newTestParser(t *testing.T) (*Parser, *colors.Manager) {
	t.Helper()
	m := colors.NewManager(colors.WithRand(rand.New(rand.NewSource(1))))
	return New(m, stubResolver{}, stubResolver{}), m
}

func corrected(t *testing.T, hex string) string {
	t.Helper()
	c, err := colors.Correct(hex)
	require.NoError(t, err)
	return c
}

func parseOne(t *testing.T, p *Parser, raw string) model.Message {
	t.Helper()
	msgs, err := p.ParseMessage(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	return msgs[0]
}

func TestParsePrivmsgWithGluedSource(t *testing.T) {
	p, _ := newTestParser(t)

	msg := parseOne(t, p, `:@badges=;color=#FF0000;display-name=Foo;emotes=;;system-msg=;:foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :Hello world`)

	user, ok := msg.(model.UserMessage)
	require.True(t, ok, "expected UserMessage, got %T", msg)
	assert.Equal(t, "bar", user.Channel())
	assert.Equal(t, "Hello world", user.Content())
	assert.Equal(t, "Foo", user.Username)
	assert.Equal(t, corrected(t, "#FF0000"), user.Color)
	assert.False(t, user.Action)
	assert.Empty(t, user.Badges)
	assert.Empty(t, user.Emotes)
}

func TestParsePrivmsg(t *testing.T) {
	p, _ := newTestParser(t)

	raw := "@badge-info=subscriber/14;badges=moderator/1,subscriber/12;color=#1E90FF;display-name=Foo;emotes=25:0-4,12-16/1902:6-10;id=abc;mod=1 :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :Kappa Keepo Kappa"
	user := parseOne(t, p, raw).(model.UserMessage)

	assert.Equal(t, "bar", user.Channel())
	assert.Equal(t, "Kappa Keepo Kappa", user.Content())
	assert.Equal(t, []string{"moderator/1", "subscriber/12"}, user.Badges)
	assert.Equal(t, []string{"25:0-4,12-16", "1902:6-10"}, user.Emotes)
	assert.Equal(t, corrected(t, "#1E90FF"), user.Color)
	assert.Equal(t, stubResolver{}, user.EmoteResolver)
	assert.Equal(t, stubResolver{}, user.BadgeResolver)
}

func TestParsePrivmsgWithoutDisplayNameUsesLogin(t *testing.T) {
	p, _ := newTestParser(t)

	user := parseOne(t, p, "@badges=;color=#00FF7F :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hi").(model.UserMessage)
	assert.Equal(t, "foo", user.Username)
}

func TestParsePrivmsgAction(t *testing.T) {
	p, _ := newTestParser(t)

	user := parseOne(t, p, "@color=#0000FF;display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :\x01ACTION waves hello\x01").(model.UserMessage)
	assert.True(t, user.Action)
	assert.Equal(t, "waves hello", user.Content())
}

func TestEmptyColorAssignsAndReusesTableColor(t *testing.T) {
	p, m := newTestParser(t)

	first := parseOne(t, p, "@color=;display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :one").(model.UserMessage)

	stored, ok := m.UserColor("foo")
	require.True(t, ok)
	assert.Contains(t, colors.Palette[:], stored)
	assert.Equal(t, corrected(t, stored), first.Color)

	second := parseOne(t, p, "@color=;display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :two").(model.UserMessage)
	assert.Equal(t, first.Color, second.Color)
}

func TestMissingColorTagUsesTable(t *testing.T) {
	p, m := newTestParser(t)

	m.AddUserColor("foo", "#8a2be2")
	user := parseOne(t, p, "@display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hi").(model.UserMessage)
	assert.Equal(t, corrected(t, "#8a2be2"), user.Color)
}

func TestRandomColorThenAddMatchesExtraction(t *testing.T) {
	p, m := newTestParser(t)

	c := m.RandomColor()
	m.AddUserColor("newbie", c)

	for i := 0; i < 2; i++ {
		user := parseOne(t, p, "@color= :newbie!newbie@newbie.tmi.twitch.tv PRIVMSG #bar :hi").(model.UserMessage)
		assert.Equal(t, corrected(t, c), user.Color)
	}
}

func TestTwitchColorDoesNotTouchTable(t *testing.T) {
	p, m := newTestParser(t)

	user := parseOne(t, p, "@color=#1a1a1a;display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hi").(model.UserMessage)
	assert.Equal(t, corrected(t, "#1a1a1a"), user.Color)

	_, ok := m.UserColor("foo")
	assert.False(t, ok)

	m.AddUserColor("foo", "#ff0000")
	parseOne(t, p, "@color=#1a1a1a;display-name=Foo :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hi")
	stored, _ := m.UserColor("foo")
	assert.Equal(t, "#ff0000", stored)
}

func TestInvalidTwitchColorFallsBackToTable(t *testing.T) {
	p, m := newTestParser(t)

	m.AddUserColor("foo", "#2e8b57")
	user := parseOne(t, p, "@color=notacolor :foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hi").(model.UserMessage)
	assert.Equal(t, corrected(t, "#2e8b57"), user.Color)
}

func TestParseRoomState(t *testing.T) {
	p, _ := newTestParser(t)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "slow and subs",
			raw:  "@slow=10;subs-only=1 :tmi.twitch.tv ROOMSTATE #bar",
			want: "SLOW 10s  SUB  ",
		},
		{
			name: "all modes in source order",
			raw:  "@broadcaster-lang=en;emote-only=1;followers-only=10;r9k=1;room-id=1;slow=120;subs-only=1 :tmi.twitch.tv ROOMSTATE #bar",
			want: "en  EMOTE-ONLY  FOLLOW 10m  R9K  SLOW 120s  SUB  ",
		},
		{
			name: "disabled modes",
			raw:  "@emote-only=0;followers-only=-1;r9k=0;rituals=0;room-id=1;slow=0;subs-only=0 :tmi.twitch.tv ROOMSTATE #bar",
			want: "",
		},
		{
			name: "followers only without minimum",
			raw:  "@followers-only=0;room-id=1 :tmi.twitch.tv ROOMSTATE #bar",
			want: "FOLLOW 0m  ",
		},
		{
			name: "non numeric values skipped",
			raw:  "@slow=abc;followers-only=;subs-only=1 :tmi.twitch.tv ROOMSTATE #bar",
			want: "SUB  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := parseOne(t, p, tt.raw)
			rs, ok := msg.(model.RoomStateMessage)
			require.True(t, ok, "expected RoomStateMessage, got %T", msg)
			assert.Equal(t, "bar", rs.Channel())
			assert.Equal(t, tt.want, rs.Content())
		})
	}
}

func TestParseUserNoticeWithoutBody(t *testing.T) {
	p, _ := newTestParser(t)

	msg := parseOne(t, p, `@badges=;color=;display-name=Foo;login=foo;msg-id=sub;system-msg=Foo\ssubscribed :tmi.twitch.tv USERNOTICE #bar`)
	assert.Equal(t, model.ChatMessage{ChannelName: "bar", Text: "Foo subscribed "}, msg)
}

func TestParseUserNoticeWithoutSystemMessage(t *testing.T) {
	p, _ := newTestParser(t)

	msg := parseOne(t, p, `@display-name=Foo;msg-id=raid :tmi.twitch.tv USERNOTICE #bar`)
	assert.Equal(t, model.ChatMessage{ChannelName: "bar", Text: ""}, msg)
}

func TestParseUserNoticeWithBody(t *testing.T) {
	p, m := newTestParser(t)

	raw := `@badges=subscriber/0;color=;display-name=Foo;emotes=;login=foo;msg-id=resub;system-msg=Foo\ssubscribed\sfor\s2\smonths! :tmi.twitch.tv USERNOTICE #bar :Great stream`
	msgs, err := p.ParseMessage(raw)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, model.ChatMessage{ChannelName: "bar", Text: "Foo subscribed for 2 months! "}, msgs[0])

	user, ok := msgs[1].(model.UserMessage)
	require.True(t, ok)
	assert.Equal(t, "bar", user.Channel())
	assert.Equal(t, "Great stream", user.Content())
	assert.Equal(t, "Foo", user.Username)
	assert.Equal(t, []string{"subscriber/0"}, user.Badges)

	stored, ok := m.UserColor("foo")
	require.True(t, ok)
	assert.Equal(t, corrected(t, stored), user.Color)
}

func TestParseUserNoticeBodyWithTwitchColor(t *testing.T) {
	p, _ := newTestParser(t)

	msgs, err := p.ParseMessage(`@color=#B22222;display-name=Foo;system-msg=Foo\sresubscribed :tmi.twitch.tv USERNOTICE #bar :hey`)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, corrected(t, "#B22222"), msgs[1].(model.UserMessage).Color)
}

func TestParseNotice(t *testing.T) {
	p, _ := newTestParser(t)

	msg := parseOne(t, p, "@msg-id=slow_on :tmi.twitch.tv NOTICE #bar :This room is now in slow mode.")
	assert.Equal(t, model.ChatMessage{ChannelName: "bar", Text: "This room is now in slow mode."}, msg)
}

func TestParseUntaggedPrivmsgIsPlainLine(t *testing.T) {
	p, _ := newTestParser(t)

	msg := parseOne(t, p, ":foo!foo@foo.tmi.twitch.tv PRIVMSG #bar :hello world")
	assert.Equal(t, model.ChatMessage{ChannelName: "bar", Text: "hello world"}, msg)
}

func TestUnknownCommandWrapsRawLine(t *testing.T) {
	p, _ := newTestParser(t)

	raw := "@login=foo;target-msg-id=abc :tmi.twitch.tv CLEARMSG #bar :bad words"
	res, err := p.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, CommandUnknown, res.Command)
	assert.Equal(t, []model.Message{model.ChatMessage{ChannelName: "bar", Text: raw}}, res.Messages)
}

func TestIgnoredLines(t *testing.T) {
	p, _ := newTestParser(t)

	tests := map[string]string{
		"join":            ":foo!foo@foo.tmi.twitch.tv JOIN #bar",
		"part":            ":foo!foo@foo.tmi.twitch.tv PART #bar",
		"names":           ":foo.tmi.twitch.tv 353 foo = #bar :foo baz qux",
		"end of names":    ":foo.tmi.twitch.tv 366 foo #bar :End of /NAMES list",
		"mode":            ":jtv MODE #bar +o foo",
		"userstate":       "@badges=;color=;display-name=Foo;mod=0 :tmi.twitch.tv USERSTATE #bar",
		"clearchat":       "@ban-duration=600;room-id=1 :tmi.twitch.tv CLEARCHAT #bar :spammer",
		"hosttarget":      ":tmi.twitch.tv HOSTTARGET #bar :baz 10",
		"whisper":         "@badges=;color=;display-name=Foo :foo!foo@foo.tmi.twitch.tv WHISPER baz :see #bar",
		"globaluserstate": "@badges=;color=;display-name=Foo;emote-sets=0,33 :tmi.twitch.tv GLOBALUSERSTATE",
		"no channel":      ":tmi.twitch.tv 001 foo :Welcome, GLHF!",
		"ping":            "PING :tmi.twitch.tv",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			msgs, err := p.ParseMessage(raw)
			require.NoError(t, err)
			assert.Empty(t, msgs)
		})
	}
}

func TestParseReportsCommandAndChannel(t *testing.T) {
	p, _ := newTestParser(t)

	res, err := p.Parse(":foo!foo@foo.tmi.twitch.tv JOIN #bar")
	require.NoError(t, err)
	assert.Equal(t, CommandJoin, res.Command)
	assert.Equal(t, "bar", res.Channel)
}

func TestUnhandledLines(t *testing.T) {
	p, _ := newTestParser(t)

	for _, raw := range []string{"", "   ", "@badges=;color=", "\r\n"} {
		msgs, err := p.ParseMessage(raw)
		assert.Nil(t, msgs)
		require.Error(t, err, "line %q", raw)
		assert.True(t, errors.Is(err, ErrUnhandledLine))

		var unhandled *UnhandledLineError
		require.True(t, errors.As(err, &unhandled))
		assert.Equal(t, raw, unhandled.Line)
	}
}

func TestParseContinuesAfterUnhandledLine(t *testing.T) {
	p, _ := newTestParser(t)

	_, err := p.ParseMessage("")
	require.Error(t, err)

	msg := parseOne(t, p, "@msg-id=subs_on :tmi.twitch.tv NOTICE #bar :This room is now in subscribers-only mode.")
	assert.Equal(t, "bar", msg.Channel())
}
