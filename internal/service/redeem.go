package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-single-use-links/internal/models"
	"github.com/pribylovaa/go-single-use-links/internal/pkg/log"
	"github.com/pribylovaa/go-single-use-links/internal/pkg/redact"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

// RedeemToken погашает токен по строковому id из запроса.
//
// Машина состояний одного вызова:
//   - пустой/кривой id -> ошибка клиента, хранилище не трогаем;
//   - consume вернул запись и срок не истёк -> доступ разрешён;
//   - consume вернул запись с истёкшим сроком -> отказ; запись уже изъята тем
//     же атомарным consume, так что повторное предъявление даст ErrTokenNotFound,
//     а не второй ErrTokenExpired. Решение об истечении принимается здесь, а не
//     в хранилище: фоновая очистка — необязательная оптимизация и могла ещё
//     не добраться до записи;
//   - записи нет -> ErrTokenNotFound;
//   - сбой хранилища -> ошибка как есть; она никогда не подменяется
//     ErrTokenNotFound, иначе временный сбой навсегда отнимет легитимное
//     первое использование. Повтор consume внутри запроса не делается:
//     после успешного, но потерянного ответа повтор увидел бы «нет записи»
//     и соврал бы об исходе.
func (s *Service) RedeemToken(ctx context.Context, rawID string) (*models.AccessToken, error) {
	const op = "service.RedeemToken"

	lg := log.From(ctx)

	if rawID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyTokenID)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTokenID)
	}

	token, err := s.storage.ConsumeToken(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("redeem_not_found",
				slog.String("op", op),
				slog.String("token_id", redact.TokenID(rawID)),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrTokenNotFound)
		}

		lg.Error("consume_failed",
			slog.String("op", op),
			slog.String("token_id", redact.TokenID(rawID)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !token.ExpiresAt.After(s.now().UTC()) {
		lg.Warn("redeem_expired",
			slog.String("op", op),
			slog.String("token_id", redact.TokenID(rawID)),
			slog.Int64("expired_at", token.ExpiresAt.Unix()),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}

	lg.Info("redeem_allowed",
		slog.String("op", op),
		slog.String("token_id", redact.TokenID(rawID)),
		slog.String("resource", token.Resource),
	)

	return token, nil
}
