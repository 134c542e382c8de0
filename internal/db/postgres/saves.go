package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/algopet/internal/common"
)

// SaveRepository хранит блоб сохранения в JSONB-колонке.
type SaveRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewSaveRepository создаёт репозиторий для ключа key.
func NewSaveRepository(pool *pgxpool.Pool, key string) *SaveRepository {
	return &SaveRepository{pool: pool, key: key}
}

// Load возвращает сохранённый блоб или common.ErrNoSave.
func (r *SaveRepository) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := r.pool.QueryRow(ctx,
		`SELECT data::text FROM pet_saves WHERE save_key = $1`, r.key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сохранения: %w", err)
	}
	return []byte(data), nil
}

// Save записывает блоб (upsert по ключу).
// Версия схемы дублируется в колонку, чтобы её было видно без разбора JSON.
func (r *SaveRepository) Save(ctx context.Context, blob []byte) error {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(blob, &head); err != nil {
		return fmt.Errorf("сохранение не является JSON: %w", err)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO pet_saves (save_key, data, schema_version, updated_at)
		VALUES ($1, $2::jsonb, $3, NOW())
		ON CONFLICT (save_key) DO UPDATE
		SET data = EXCLUDED.data,
		    schema_version = EXCLUDED.schema_version,
		    updated_at = NOW()`,
		r.key, string(blob), head.Version,
	)
	if err != nil {
		return fmt.Errorf("ошибка записи сохранения: %w", err)
	}
	return nil
}
