package models

import (
	"time"

	"github.com/google/uuid"
)

// IssuedLink — результат выпуска одноразовой подписанной ссылки.
//
// Описание:
//   - ID — идентификатор выпущенного токена (встроен в URL параметром id);
//   - URL — готовая подписанная ссылка для клиента;
//   - ExpiresAt — момент истечения ссылки (UTC).
type IssuedLink struct {
	ID        uuid.UUID
	URL       string
	ExpiresAt time.Time
}
