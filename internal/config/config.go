// Package config загружает конфигурацию питомца из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища сохранений.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Pet ---
	PetName    string `envconfig:"PET_NAME" default:"Алгокот"`
	PetSaveKey string `envconfig:"PET_SAVE_KEY" default:"algo-pet-save"`
	// Как часто применять распад без действий пользователя
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"5m"`
	// Через сколько закрывать решённую викторину
	QuizAutoClose time.Duration `envconfig:"QUIZ_AUTO_CLOSE" default:"1200ms"`
	ShopFoodPrice int           `envconfig:"SHOP_FOOD_PRICE" default:"10"`

	// --- Streak ---
	StreakReminderThreshold int    `envconfig:"STREAK_REMINDER_THRESHOLD" default:"3"`
	StreakReminderSchedule  string `envconfig:"STREAK_REMINDER_SCHEDULE" default:"0 * * * *"`

	// --- Storage ---
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"data/algopet.db"`

	// --- Database (только для STORAGE_DRIVER=postgres) ---
	// В Docker дефолт "postgres" — имя сервиса в docker-compose, для локалки DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"algopet"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"algopet"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"4"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"1"`

	// --- Telegram ---
	FeatureBotEnabled bool   `envconfig:"FEATURE_BOT_ENABLED" default:"false"`
	TelegramBotToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// Чат хозяина: туда идут мысли и напоминания, и только оттуда принимаются команды
	OwnerChatID       int64   `envconfig:"OWNER_CHAT_ID"`
	AllowedUserIDsRaw string  `envconfig:"ALLOWED_USER_IDS"`
	AllowedUserIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"8"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PetSaveKey) == "" {
		return fmt.Errorf("PET_SAVE_KEY не задан")
	}
	if c.TickInterval < time.Second {
		return fmt.Errorf("TICK_INTERVAL должен быть не меньше 1s")
	}
	if c.QuizAutoClose <= 0 {
		return fmt.Errorf("QUIZ_AUTO_CLOSE должен быть > 0")
	}
	if c.ShopFoodPrice <= 0 {
		return fmt.Errorf("SHOP_FOOD_PRICE должен быть > 0")
	}
	if c.StreakReminderThreshold < 1 {
		return fmt.Errorf("STREAK_REMINDER_THRESHOLD должен быть >= 1")
	}

	switch c.StorageDriver {
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH не задан")
		}
	case StoragePostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.FeatureBotEnabled {
		if c.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN обязателен при FEATURE_BOT_ENABLED=true")
		}
		if c.OwnerChatID == 0 {
			return fmt.Errorf("OWNER_CHAT_ID не задан или равен 0")
		}
		if c.BotMaxInflight <= 0 {
			return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
		}
		if c.BotUpdateTimeoutSeconds <= 0 {
			return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
		}
		if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
		}
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AllowedUserIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ALLOWED_USER_IDS parse: %w", err)
	}
	cfg.AllowedUserIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
