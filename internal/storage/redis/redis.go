// redis предоставляет реализацию storage.Storage на базе Redis.
//
// Запись хранится как JSON-значение по ключу <prefix><id> с TTL до момента
// истечения токена: Redis сам вычищает просроченные ключи, поэтому отдельная
// фоновая очистка здесь не нужна. Атомарность погашения обеспечивает команда
// GETDEL — чтение и удаление одним шагом на стороне сервера.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-single-use-links/internal/models"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

const defaultPrefix = "links:token:"

type Storage struct {
	rdb    *redis.Client
	prefix string
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "links:token:".
func New(ctx context.Context, redisURL, prefix string) (*Storage, error) {
	const op = "storage.redis.New"

	if prefix == "" {
		prefix = defaultPrefix
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{rdb: rdb, prefix: prefix}, nil
}

func (s *Storage) key(id uuid.UUID) string { return s.prefix + id.String() }

// record — формат хранения токена в Redis.
type record struct {
	Resource  string `json:"resource"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// SaveToken сохраняет новую запись токена.
// SET NX исключает молчаливую перезапись существующего id.
func (s *Storage) SaveToken(ctx context.Context, token *models.AccessToken) error {
	const op = "storage.redis.SaveToken"

	raw, err := json.Marshal(record{
		Resource:  token.Resource,
		CreatedAt: token.CreatedAt.Unix(),
		ExpiresAt: token.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	ok, err := s.rdb.SetNX(ctx, s.key(token.ID), raw, ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	return nil
}

// ConsumeToken атомарно изымает запись токена.
// GETDEL возвращает и удаляет значение одной командой, так что при конкурентных
// погашениях одного id значение достаётся ровно одному вызову.
func (s *Storage) ConsumeToken(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	const op = "storage.redis.ConsumeToken"

	raw, err := s.rdb.GetDel(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AccessToken{
		ID:        id,
		Resource:  rec.Resource,
		CreatedAt: time.Unix(rec.CreatedAt, 0).UTC(),
		ExpiresAt: time.Unix(rec.ExpiresAt, 0).UTC(),
	}, nil
}

// DeleteExpiredTokens — no-op: ключи несут TTL, Redis вычищает их сам.
func (s *Storage) DeleteExpiredTokens(_ context.Context, _ time.Time) error {
	return nil
}

// Close закрывает клиент Redis.
func (s *Storage) Close() {
	_ = s.rdb.Close()
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)
