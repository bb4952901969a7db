package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-single-use-links/internal/models"
	"github.com/pribylovaa/go-single-use-links/internal/pkg/log"
	"github.com/pribylovaa/go-single-use-links/internal/pkg/redact"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

// IssueLink выпускает одноразовую подписанную ссылку на ресурс.
//
// Порядок фиксирован: сначала подпись, затем запись токена, и только после
// подтверждённой записи ссылка возвращается клиенту. Сбой подписи не оставляет
// сироты в хранилище; сбой записи не раскрывает уже подписанную ссылку —
// иначе быстрый клиент мог бы погасить токен раньше, чем появится запись,
// или предъявить ссылку, которой запись не соответствует вовсе.
func (s *Service) IssueLink(ctx context.Context, resource string, lifetime time.Duration) (*models.IssuedLink, error) {
	const op = "service.IssueLink"

	lg := log.From(ctx)

	if resource == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyResource)
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidLifetime)
	}
	if s.cfg.MaxTTL > 0 && lifetime > s.cfg.MaxTTL {
		lifetime = s.cfg.MaxTTL
	}

	now := s.now().UTC()
	expiresAt := now.Add(lifetime)
	id := uuid.New()

	signedURL, err := s.signer.Sign(resource, id, expiresAt)
	if err != nil {
		lg.Error("sign_failed",
			slog.String("op", op),
			slog.String("resource", resource),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token := &models.AccessToken{
		ID:        id,
		Resource:  resource,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := s.storage.SaveToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Error("token_id_collision",
				slog.String("op", op),
				slog.String("token_id", redact.TokenID(id.String())),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrTokenCollision)
		}

		lg.Error("save_token_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("link_issued",
		slog.String("op", op),
		slog.String("token_id", redact.TokenID(id.String())),
		slog.String("resource", resource),
		slog.Int64("valid_until", expiresAt.Unix()),
	)

	return &models.IssuedLink{
		ID:        id,
		URL:       signedURL,
		ExpiresAt: expiresAt,
	}, nil
}
