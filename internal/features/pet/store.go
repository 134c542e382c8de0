// Package pet — store.go хранит изменяемую запись питомца.
// Хранилище отдаёт копии, принимает изменения через Update/Replace
// и уведомляет подписчиков (сохранение, интерфейс) о каждом изменении.
package pet

import "sync"

// ChangeHook вызывается после каждого изменения с копией новой записи.
type ChangeHook func(PetState)

// Store владеет единственной записью PetState.
type Store struct {
	mu    sync.RWMutex
	state PetState
	hooks []ChangeHook
}

// NewStore создаёт хранилище с начальной записью.
func NewStore(initial PetState) *Store {
	initial = initial.Clone()
	initial.Normalize()
	return &Store{state: initial}
}

// OnChange регистрирует подписчика на изменения.
func (s *Store) OnChange(hook ChangeHook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// Get возвращает копию текущей записи.
func (s *Store) Get() PetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace полностью заменяет запись (загрузка, сброс).
func (s *Store) Replace(next PetState) PetState {
	next = next.Clone()
	next.Normalize()

	s.mu.Lock()
	s.state = next
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.mu.Unlock()

	s.notify(hooks, next)
	return next.Clone()
}

// Update применяет fn к записи под блокировкой.
// После fn запись нормализуется и подписчики получают её копию.
func (s *Store) Update(fn func(*PetState)) PetState {
	s.mu.Lock()
	fn(&s.state)
	s.state.Normalize()
	snapshot := s.state.Clone()
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.mu.Unlock()

	s.notify(hooks, snapshot)
	return snapshot.Clone()
}

func (s *Store) notify(hooks []ChangeHook, snapshot PetState) {
	for _, h := range hooks {
		h(snapshot.Clone())
	}
}
