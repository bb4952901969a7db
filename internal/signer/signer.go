// signer выпускает и проверяет подписанные ссылки на защищаемые ресурсы.
//
// Подпись удостоверяет только подлинность параметров ссылки (ресурс, id токена,
// срок): решение об истечении принимает редимер по записи в хранилище, поэтому
// Verify намеренно не проверяет exp. Истёкшая, но подлинная ссылка должна дойти
// до погашения, чтобы запись токена была изъята атомарно вместе с отказом.
package signer

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-single-use-links/internal/config"
)

var (
	// ErrBadSignature — подпись ссылки отсутствует или не сходится.
	ErrBadSignature = errors.New("signature mismatch")
)

// Signer — контракт подписи ссылок.
type Signer interface {
	// Sign возвращает полную подписанную ссылку на resource со встроенным
	// параметром id и сроком действия expiresAt.
	Sign(resource string, id uuid.UUID, expiresAt time.Time) (string, error)
	// Verify проверяет подлинность query-параметров входящего запроса
	// на resource с токеном id. Не проверяет истечение срока.
	Verify(resource string, id uuid.UUID, query url.Values) error
}

// Схемы подписи.
const (
	SchemeHMAC = "hmac"
	SchemeJWT  = "jwt"
)

// New собирает Signer по конфигурации.
func New(cfg config.LinksConfig) (Signer, error) {
	const op = "signer.New"

	switch cfg.Scheme {
	case SchemeHMAC, "":
		return NewHMACSigner(cfg.Domain, cfg.ContentPath, cfg.Secret), nil
	case SchemeJWT:
		return NewJWTSigner(cfg.Domain, cfg.ContentPath, cfg.Secret, cfg.Issuer), nil
	default:
		return nil, fmt.Errorf("%s: unknown signing scheme %q", op, cfg.Scheme)
	}
}
