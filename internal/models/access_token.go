package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken — запись одноразового токена доступа в хранилище.
//
// Запись создаётся ровно один раз при выпуске ссылки, никогда не обновляется
// и исчезает либо при погашении (атомарный consume), либо при фоновой очистке
// после истечения срока.
type AccessToken struct {
	// ID — непредсказуемый идентификатор токена (capability, а не порядковый ключ).
	ID uuid.UUID
	// Resource — путь защищаемого ресурса, к которому токен даёт доступ.
	Resource string
	// CreatedAt — момент выпуска (UTC).
	CreatedAt time.Time
	// ExpiresAt — момент истечения (UTC); устанавливается один раз при выпуске.
	ExpiresAt time.Time
}
