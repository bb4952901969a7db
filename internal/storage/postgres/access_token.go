package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-single-use-links/internal/models"
	"github.com/pribylovaa/go-single-use-links/internal/storage"
)

// SaveToken сохраняет новую запись токена в БД.
func (s *Storage) SaveToken(ctx context.Context, token *models.AccessToken) error {
	const op = "storage.postgres.SaveToken"

	query := `
        INSERT INTO access_tokens(id, resource, created_at, expires_at)
        VALUES ($1, $2, $3, $4)
    `

	_, err := s.db.Exec(ctx, query,
		token.ID,
		token.Resource,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeToken атомарно изымает запись токена и возвращает её прежнее содержимое.
//
// Одна SQL-команда: DELETE с RETURNING. При конкурентных вызовах с одним id
// Postgres линеаризует удаления сам — ровно один вызов получит строку,
// остальные увидят pgx.ErrNoRows (ErrNotFound). Разносить на SELECT + DELETE
// нельзя: между ними оба клиента успевают увидеть строку живой.
func (s *Storage) ConsumeToken(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	const op = "storage.postgres.ConsumeToken"

	query := `
        DELETE FROM access_tokens
        WHERE id = $1
        RETURNING id, resource, created_at, expires_at
    `

	var token models.AccessToken
	err := s.db.QueryRow(ctx, query, id).Scan(
		&token.ID,
		&token.Resource,
		&token.CreatedAt,
		&token.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &token, nil
}

// DeleteExpiredTokens удаляет все просроченные токены.
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) error {
	const op = "storage.postgres.DeleteExpiredTokens"

	query := `
        DELETE FROM access_tokens
        WHERE expires_at <= $1
    `

	_, err := s.db.Exec(ctx, query, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
