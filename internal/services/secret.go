package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

const MaxSecretLength = 2000

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrSecretExists   = errors.New("you can only have one secret message")
	ErrSecretEmpty    = errors.New("secret message cannot be empty")
	ErrSecretTooLong  = fmt.Errorf("secret message must be at most %d characters", MaxSecretLength)
)

const secretColumns = `id, user_id, message, created_at, updated_at`

type SecretService struct {
	db DBConn
}

func NewSecretService(db DBConn) *SecretService {
	return &SecretService{db: db}
}

func validateSecretMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrSecretEmpty
	}
	if utf8.RuneCountInString(message) > MaxSecretLength {
		return "", ErrSecretTooLong
	}
	return message, nil
}

func (s *SecretService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Secret, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+secretColumns+` FROM secrets WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing secrets: %w", err)
	}
	defer rows.Close()

	secrets := []models.Secret{}
	for rows.Next() {
		var secret models.Secret
		if err := rows.Scan(&secret.ID, &secret.UserID, &secret.Message, &secret.CreatedAt, &secret.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning secret: %w", err)
		}
		secrets = append(secrets, secret)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating secrets: %w", err)
	}

	return secrets, nil
}

// Create stores the user's single secret message. The user row is locked for
// the duration of the check so concurrent creates cannot both succeed.
func (s *SecretService) Create(ctx context.Context, userID uuid.UUID, message string) (*models.Secret, error) {
	message, err := validateSecretMessage(message)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx, "SELECT id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking user: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM secrets WHERE user_id = $1)", userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking existing secret: %w", err)
	}
	if exists {
		return nil, ErrSecretExists
	}

	secret := &models.Secret{}
	err = tx.QueryRow(ctx,
		`INSERT INTO secrets (user_id, message) VALUES ($1, $2) RETURNING `+secretColumns,
		userID, message,
	).Scan(&secret.ID, &secret.UserID, &secret.Message, &secret.CreatedAt, &secret.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating secret: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing secret: %w", err)
	}

	return secret, nil
}

func (s *SecretService) Update(ctx context.Context, userID, secretID uuid.UUID, message string) (*models.Secret, error) {
	message, err := validateSecretMessage(message)
	if err != nil {
		return nil, err
	}

	secret := &models.Secret{}
	err = s.db.QueryRow(ctx,
		`UPDATE secrets SET message = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+secretColumns,
		secretID, userID, message,
	).Scan(&secret.ID, &secret.UserID, &secret.Message, &secret.CreatedAt, &secret.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSecretNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating secret: %w", err)
	}

	return secret, nil
}

func (s *SecretService) Delete(ctx context.Context, userID, secretID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		"DELETE FROM secrets WHERE id = $1 AND user_id = $2",
		secretID, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting secret: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSecretNotFound
	}
	return nil
}

// GetMessage returns the owner's message and whether a row exists.
func (s *SecretService) GetMessage(ctx context.Context, ownerID uuid.UUID) (string, bool, error) {
	var message string
	err := s.db.QueryRow(ctx,
		`SELECT message FROM secrets WHERE user_id = $1 ORDER BY created_at LIMIT 1`,
		ownerID,
	).Scan(&message)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting secret message: %w", err)
	}

	return message, true, nil
}
