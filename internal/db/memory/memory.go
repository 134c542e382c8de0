// Package memory — хранилище сохранения в памяти процесса.
// Используется в тестах и при STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"serotonyl.ru/algopet/internal/common"
)

// SaveRepository держит один блоб сохранения.
type SaveRepository struct {
	mu    sync.Mutex
	blob  []byte
	saves int
	err   error
}

// NewSaveRepository создаёт пустое хранилище.
func NewSaveRepository() *SaveRepository {
	return &SaveRepository{}
}

// Load возвращает копию блоба или ErrNoSave.
func (r *SaveRepository) Load(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.blob == nil {
		return nil, common.ErrNoSave
	}
	return append([]byte(nil), r.blob...), nil
}

// Save заменяет блоб копией blob.
func (r *SaveRepository) Save(_ context.Context, blob []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.blob = append([]byte(nil), blob...)
	r.saves++
	return nil
}

// Put кладёт блоб напрямую, минуя счётчик записей.
func (r *SaveRepository) Put(blob []byte) {
	r.mu.Lock()
	r.blob = append([]byte(nil), blob...)
	r.mu.Unlock()
}

// Saves возвращает число успешных Save.
func (r *SaveRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// FailWith заставляет Load и Save возвращать err (nil — снова работать).
func (r *SaveRepository) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}
