// memory предоставляет реализацию storage.Storage в памяти процесса.
// Используется в окружении local и в юнит-тестах; данные не переживают рестарт.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-single-use-links/internal/models"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

type Storage struct {
	mu   sync.Mutex
	data map[uuid.UUID]models.AccessToken
}

// New создаёт пустое хранилище в памяти.
func New() *Storage {
	return &Storage{
		data: make(map[uuid.UUID]models.AccessToken),
	}
}

// SaveToken сохраняет новую запись токена.
func (s *Storage) SaveToken(_ context.Context, token *models.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[token.ID]; ok {
		return storage.ErrAlreadyExists
	}

	s.data[token.ID] = *token
	return nil
}

// ConsumeToken атомарно изымает запись токена: проверка наличия и удаление
// выполняются под одним захватом мьютекса, поэтому из конкурентных вызовов
// с одним id запись достаётся ровно одному.
func (s *Storage) ConsumeToken(_ context.Context, id uuid.UUID) (*models.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	delete(s.data, id)
	return &token, nil
}

// DeleteExpiredTokens удаляет просроченные записи.
func (s *Storage) DeleteExpiredTokens(_ context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, token := range s.data {
		if !token.ExpiresAt.After(now) {
			delete(s.data, id)
		}
	}

	return nil
}

// Close освобождает ресурсы (для памяти — no-op).
func (s *Storage) Close() {}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
