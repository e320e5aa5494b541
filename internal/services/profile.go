package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

const (
	MaxDisplayNameLength = 100
	MaxBioLength         = 1000
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileEmpty    = errors.New("please enter at least a display name or bio")
	ErrProfileTooLong  = errors.New("profile field too long")
)

type ProfileService struct {
	db DBConn
}

func NewProfileService(db DBConn) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRow(ctx,
		`SELECT user_id, display_name, bio, updated_at FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&profile.UserID, &profile.DisplayName, &profile.Bio, &profile.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return profile, nil
}

// Upsert creates or replaces the caller's profile. At least one of the two
// fields must be non-blank.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, params models.UpsertProfileParams) (*models.Profile, error) {
	params = params.Normalize()
	if params.IsEmpty() {
		return nil, ErrProfileEmpty
	}
	if utf8.RuneCountInString(params.DisplayName) > MaxDisplayNameLength || utf8.RuneCountInString(params.Bio) > MaxBioLength {
		return nil, ErrProfileTooLong
	}

	profile := &models.Profile{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, display_name, bio)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		   SET display_name = EXCLUDED.display_name,
		       bio = EXCLUDED.bio
		 RETURNING user_id, display_name, bio, updated_at`,
		userID, params.DisplayName, params.Bio,
	).Scan(&profile.UserID, &profile.DisplayName, &profile.Bio, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}

	return profile, nil
}

// ListCandidates returns every other user's profile that has at least one
// completed field.
func (s *ProfileService) ListCandidates(ctx context.Context, excludeUserID uuid.UUID) ([]models.Profile, error) {
	return listCandidateProfiles(ctx, s.db, excludeUserID)
}

func listCandidateProfiles(ctx context.Context, db DBConn, excludeUserID uuid.UUID) ([]models.Profile, error) {
	rows, err := db.Query(ctx,
		`SELECT user_id, display_name, bio, updated_at
		 FROM profiles
		 WHERE user_id != $1
		   AND (display_name <> '' OR bio <> '')
		 ORDER BY LOWER(display_name), user_id`,
		excludeUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.Bio, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return profiles, nil
}
