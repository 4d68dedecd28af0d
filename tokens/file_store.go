package tokens

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const TOKEN_FILE = ".secrets/twitch_tokens.json"

// ErrEmptyToken — в файле нет токена.
var ErrEmptyToken = errors.New("token file has no access token")

// FileTokenStore читает токен чата из JSON файла.
type FileTokenStore struct {
	Path string
}

type fileToken struct {
	Access    string `json:"access"`
	ExpiresAt string `json:"expires_at"`
}

func (store FileTokenStore) tokenPath() string {
	if strings.TrimSpace(store.Path) == "" {
		return TOKEN_FILE
	}
	return store.Path
}

// LoadChatToken загружает OAuth токен чата из JSON файла. expires_at необязателен.
func (store FileTokenStore) LoadChatToken() (*Token, error) {
	path := store.tokenPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load chat token: read file")
	}

	var payload fileToken
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, "load chat token: decode json")
	}

	access := strings.TrimSpace(payload.Access)
	if access == "" {
		return nil, errors.Wrap(ErrEmptyToken, "load chat token")
	}

	token := &Token{Access: access}
	if payload.ExpiresAt != "" {
		expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
		if err != nil {
			return nil, errors.Wrap(err, "load chat token: parse expires_at")
		}
		token.ExpiresAt = expiresAt
	}

	return token, nil
}
