// service содержит бизнес-логику сервиса одноразовых подписанных ссылок:
// выпуск ссылки (issue) и погашение токена (redeem) поверх интерфейсов
// хранилища (storage) и подписанта (signer).
//
// Основные аспекты:
//   - Экземпляр Service не хранит состояние запроса и безопасен для
//     конкурентного использования из разных горутин при условии, что
//     переданное хранилище потокобезопасно; вся взаимная блокировка
//     конкурентных погашений живёт внутри storage.ConsumeToken.
//   - Ошибки возвращаются сентинелами и далее маппятся транспортом
//     на HTTP-ответы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"
	"time"

	"github.com/pribylovaa/go-single-use-links/internal/config"
	"github.com/pribylovaa/go-single-use-links/internal/signer"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

var (
	// ErrEmptyResource — не задан ресурс при выпуске ссылки.
	// Транспорт: 400.
	ErrEmptyResource = errors.New("resource is empty")

	// ErrInvalidLifetime — неположительное время жизни ссылки.
	// Транспорт: 400.
	ErrInvalidLifetime = errors.New("lifetime must be positive")

	// ErrEmptyTokenID — в запросе погашения нет параметра id или он пуст.
	// Ошибка клиента, а не «токен не найден»: до хранилища дело не доходит.
	// Транспорт: 400.
	ErrEmptyTokenID = errors.New("token id is empty")

	// ErrInvalidTokenID — параметр id не разбирается как идентификатор токена.
	// Транспорт: 400.
	ErrInvalidTokenID = errors.New("token id is malformed")

	// ErrTokenNotFound — записи с таким id нет: уже погашена, вычищена или
	// не выпускалась. Наружу эти случаи неразличимы. Транспорт: редирект
	// на fallback.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired — запись нашлась, но срок истёк; сама запись при этом
	// уже изъята атомарным consume и повторно не погасится.
	// Транспорт: редирект на fallback.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenCollision — сгенерированный id уже занят в хранилище.
	// При случайных идентификаторах это фатальный сбой выпуска, а не повод
	// для молчаливой перезаписи. Транспорт: 500.
	ErrTokenCollision = errors.New("token id collision")
)

// Service описывает бизнес-логику сервиса одноразовых ссылок.
type Service struct {
	storage storage.Storage
	signer  signer.Signer
	cfg     config.LinksConfig
	now     func() time.Time
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, signer signer.Signer, cfg config.LinksConfig) *Service {
	return &Service{
		storage: storage,
		signer:  signer,
		cfg:     cfg,
		now:     time.Now,
	}
}

// WithNow подменяет источник времени (для тестов).
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}
