package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitch-chat-overlay/model"
	"twitch-chat-overlay/storage"
)

func TestJSONSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)

	sink.Line(context.Background(), storage.NewLine(model.UserMessage{
		ChatMessage: model.ChatMessage{ChannelName: "bar", Text: "dances"},
		Badges:      []string{"subscriber/12"},
		Username:    "Foo",
		Color:       "#ff7f7f",
		Action:      true,
	}))
	sink.RoomState(context.Background(), model.RoomStateMessage{
		ChatMessage: model.ChatMessage{ChannelName: "bar", Text: "R9K  "},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var user map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &user))
	assert.Equal(t, "user", user["kind"])
	assert.Equal(t, "Foo", user["username"])
	assert.Equal(t, "#ff7f7f", user["color"])
	assert.Equal(t, true, user["action"])
	assert.NotEmpty(t, user["id"])

	var state map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &state))
	assert.Equal(t, "roomstate", state["kind"])
	assert.Equal(t, "R9K  ", state["content"])
	assert.NotContains(t, state, "username")
}
