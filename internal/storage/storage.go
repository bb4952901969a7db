// storage задаёт контракт хранилища одноразовых токенов доступа.
//
// Хранилище — единственный разделяемый мутабельный ресурс системы и якорь
// консистентности: вся взаимная блокировка конкурентных погашений живёт внутри
// операции ConsumeToken, слои выше ничего не блокируют сами.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-single-use-links/internal/models"
)

var (
	// ErrNotFound — токен с таким id отсутствует (уже погашен, вычищен или не выпускался).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности id при сохранении токена.
	ErrAlreadyExists = errors.New("already exists")
)

// TokenStorage выполняет операции над записями одноразовых токенов.
type TokenStorage interface {
	// SaveToken сохраняет новую запись токена. Повторный id — ErrAlreadyExists;
	// молчаливая перезапись запрещена.
	SaveToken(ctx context.Context, token *models.AccessToken) error

	// ConsumeToken атомарно изымает запись по id и возвращает её прежнее содержимое.
	//
	// Ключевой контракт системы: при конкурентных вызовах с одним и тем же id
	// ровно один вызов получает запись, остальные — ErrNotFound. Реализация
	// обязана быть одной условной операцией удаления (DELETE ... RETURNING,
	// GETDEL и т.п.), а не парой «прочитать, затем удалить»: два раздельных
	// запроса позволяют двум клиентам увидеть запись до того, как кто-то из них
	// её удалит, что ломает гарантию одноразовости.
	//
	// Ошибка хранилища (сеть/таймаут) возвращается как есть и никогда не
	// подменяется ErrNotFound: временный сбой не должен выглядеть как
	// «токен уже использован».
	ConsumeToken(ctx context.Context, id uuid.UUID) (*models.AccessToken, error)

	// DeleteExpiredTokens удаляет просроченные непогашенные записи.
	// Фоновая оптимизация объёма хранилища; корректность одноразовости и
	// проверка истечения от неё не зависят.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// Storage задаёт контракт работы с хранилищем.
type Storage interface {
	TokenStorage
	Close()
}
