package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"twitch-chat-overlay/tokens"
)

// Config агрегирует значения конфигурации из переменных окружения и файла.
type Config struct {
	Twitch   TwitchConfig
	Postgres PostgresConfig
	Batch    BatchConfig
	Overlay  OverlayConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// TwitchConfig содержит учётные данные и каналы для Twitch IRC клиента.
// Без Username/OAuthToken клиент подключается анонимно (только чтение).
type TwitchConfig struct {
	Username   string
	OAuthToken string
	TokenFile  string
	Channels   []string
}

// Anonymous сообщает, что учётные данные не заданы.
func (t TwitchConfig) Anonymous() bool {
	return t.Username == "" && t.OAuthToken == ""
}

// PostgresConfig хранит параметры подключения к пулу базы данных.
type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
}

// Enabled сообщает, что хранилище настроено.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// DSN собирает строку подключения для pgx/pgxpool.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

// BatchConfig задаёт параметры батчинга и флашей при записи чатов.
type BatchConfig struct {
	MaxBatch      int
	FlushEvery    time.Duration
	ChanBuffer    int
	StatsLogEvery time.Duration
	FlushTimeout  time.Duration
}

// OverlayConfig — настройки отображения.
type OverlayConfig struct {
	// IgnoreUsers — glob-шаблоны ников, чьи сообщения не показываются.
	IgnoreUsers []string
}

// LogConfig — уровень и формат логов logrus.
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig — адрес HTTP для /metrics; пустой адрес отключает сервер.
type MetricsConfig struct {
	Addr string
}

// Loader читает конфигурацию через viper и умеет следить за файлом.
type Loader struct {
	v *viper.Viper
	// store переопределяет файл токена (в тестах).
	store tokens.TokenStore
}

// NewLoader подгружает .env (если есть), настраивает viper и читает CONFIG_FILE.
func NewLoader() (*Loader, error) {
	envFile := os.Getenv("DOTENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "load %s", envFile)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("batch_max", 100)
	v.SetDefault("batch_flush_every", 1500*time.Millisecond)
	v.SetDefault("batch_chan_buffer", 4096)
	v.SetDefault("batch_stats_log_every", 5*time.Minute)
	v.SetDefault("batch_flush_timeout", 5*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	return &Loader{v: v}, nil
}

// Load читает переменные окружения и возвращает валидированную Config.
func Load() (Config, error) {
	l, err := NewLoader()
	if err != nil {
		return Config{}, err
	}
	return l.Load()
}

// Load собирает Config из текущего состояния viper.
func (l *Loader) Load() (Config, error) {
	v := l.v

	cfg := Config{
		Twitch: TwitchConfig{
			Username:   strings.TrimSpace(v.GetString("twitch_username")),
			OAuthToken: strings.TrimSpace(v.GetString("twitch_oauth_token")),
			TokenFile:  strings.TrimSpace(v.GetString("twitch_token_file")),
			Channels:   stringList(v, "twitch_channels", "#"),
		},
		Postgres: PostgresConfig{
			Host:     strings.TrimSpace(v.GetString("postgres_host")),
			Port:     strings.TrimSpace(v.GetString("postgres_port")),
			DB:       strings.TrimSpace(v.GetString("postgres_db")),
			User:     strings.TrimSpace(v.GetString("postgres_user")),
			Password: strings.TrimSpace(v.GetString("postgres_password")),
		},
		Batch: BatchConfig{
			MaxBatch:      v.GetInt("batch_max"),
			FlushEvery:    v.GetDuration("batch_flush_every"),
			ChanBuffer:    v.GetInt("batch_chan_buffer"),
			StatsLogEvery: v.GetDuration("batch_stats_log_every"),
			FlushTimeout:  v.GetDuration("batch_flush_timeout"),
		},
		Overlay: OverlayConfig{
			IgnoreUsers: stringList(v, "ignore_users", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		},
		Metrics: MetricsConfig{
			Addr: strings.TrimSpace(v.GetString("metrics_addr")),
		},
	}

	if cfg.Twitch.OAuthToken == "" && cfg.Twitch.TokenFile != "" {
		var store tokens.TokenStore = tokens.FileTokenStore{Path: cfg.Twitch.TokenFile}
		if l.store != nil {
			store = l.store
		}
		token, err := store.LoadChatToken()
		if err != nil {
			return Config{}, errors.Wrap(err, "twitch token file")
		}
		if token.Expired(time.Now()) {
			log.WithField("expires_at", token.ExpiresAt).Warn("config: токен чата из файла истёк")
		}
		cfg.Twitch.OAuthToken = token.IRCPassword()
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Watch вызывает fn с новой конфигурацией при каждом изменении CONFIG_FILE.
// Без файла конфигурации ничего не делает.
func (l *Loader) Watch(fn func(Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.WithField("file", e.Name).Info("config: файл конфигурации изменён")
		cfg, err := l.Load()
		if err != nil {
			log.WithError(err).Error("config: новая конфигурация отклонена")
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (c Config) validate() error {
	if c.Twitch.Username == "" && c.Twitch.OAuthToken != "" {
		return errors.New("требуется TWITCH_USERNAME")
	}
	if c.Twitch.Username != "" && c.Twitch.OAuthToken == "" {
		return errors.New("требуется TWITCH_OAUTH_TOKEN")
	}
	if len(c.Twitch.Channels) == 0 {
		return errors.New("требуется TWITCH_CHANNELS")
	}

	if c.Postgres != (PostgresConfig{}) {
		if c.Postgres.Host == "" {
			return errors.New("требуется POSTGRES_HOST")
		}
		if c.Postgres.Port == "" {
			return errors.New("требуется POSTGRES_PORT")
		}
		if c.Postgres.DB == "" {
			return errors.New("требуется POSTGRES_DB")
		}
		if c.Postgres.User == "" {
			return errors.New("требуется POSTGRES_USER")
		}
		if c.Postgres.Password == "" {
			return errors.New("требуется POSTGRES_PASSWORD")
		}
	}

	if c.Batch.MaxBatch <= 0 {
		return errors.New("Batch.MaxBatch должен быть больше нуля")
	}
	if c.Batch.FlushEvery <= 0 {
		return errors.New("Batch.FlushEvery должен быть больше нуля")
	}
	if c.Batch.ChanBuffer <= 0 {
		return errors.New("Batch.ChanBuffer должен быть больше нуля")
	}
	if c.Batch.StatsLogEvery <= 0 {
		return errors.New("Batch.StatsLogEvery должен быть больше нуля")
	}
	if c.Batch.FlushTimeout <= 0 {
		return errors.New("Batch.FlushTimeout должен быть больше нуля")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.Errorf("LOG_FORMAT должен быть text или json, получено %q", c.Log.Format)
	}

	return nil
}

// stringList читает список из строки "a, b" (переменная окружения) или из
// массива в файле конфигурации.
func stringList(v *viper.Viper, key, trimPrefix string) []string {
	var parts []string
	switch raw := v.Get(key).(type) {
	case []interface{}, []string:
		parts = v.GetStringSlice(key)
	case string:
		parts = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), trimPrefix))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
