// Package sqlite хранит сохранение питомца в локальном файле SQLite.
// Используется чистый Go-драйвер modernc.org/sqlite, CGO не нужен.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"serotonyl.ru/algopet/internal/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS pet_saves (
	save_key   TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Open открывает (и при необходимости создаёт) файл базы и схему.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать папку базы: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть SQLite: %w", err)
	}
	// Писатель один, второе соединение дало бы только SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("SQLite недоступна: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}

	log.WithField("path", path).Info("Подключение к SQLite установлено")
	return db, nil
}

// SaveRepository читает и пишет блоб сохранения по ключу.
type SaveRepository struct {
	db  *sql.DB
	key string
}

// NewSaveRepository создаёт репозиторий для ключа key.
func NewSaveRepository(db *sql.DB, key string) *SaveRepository {
	return &SaveRepository{db: db, key: key}
}

// Load возвращает сохранённый блоб или common.ErrNoSave.
func (r *SaveRepository) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM pet_saves WHERE save_key = ?`, r.key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сохранения: %w", err)
	}
	return []byte(data), nil
}

// Save записывает блоб, заменяя предыдущий (последний писатель побеждает).
func (r *SaveRepository) Save(ctx context.Context, blob []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_saves (save_key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(save_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		r.key, string(blob), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи сохранения: %w", err)
	}
	return nil
}
