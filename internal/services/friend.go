package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

var (
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendRequestExists   = errors.New("friend request already exists")
	ErrCannotFriendSelf      = errors.New("cannot send friend request to yourself")
	ErrFriendTargetNotFound  = errors.New("user to befriend not found")
	ErrNotFriend             = errors.New("you are not friends with this user")
)

// SecretReader is the read side of the secret store the friend gate needs.
type SecretReader interface {
	GetMessage(ctx context.Context, ownerID uuid.UUID) (string, bool, error)
}

type FriendService struct {
	db      DBConn
	secrets SecretReader
}

func NewFriendService(db DBConn, secrets SecretReader) *FriendService {
	return &FriendService{db: db, secrets: secrets}
}

// LoadView assembles the caller's friends page: every candidate profile
// classified against the caller's accepted and pending edges.
func (s *FriendService) LoadView(ctx context.Context, userID uuid.UUID) (*models.FriendView, error) {
	profiles, err := listCandidateProfiles(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	friends, err := s.listSummaries(ctx,
		`SELECT f.friend_id, COALESCE(p.display_name, ''), f.created_at
		 FROM friends f
		 LEFT JOIN profiles p ON p.user_id = f.friend_id
		 WHERE f.user_id = $1 AND f.status = 'accepted'
		 ORDER BY f.created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}

	received, err := s.listSummaries(ctx,
		`SELECT f.user_id, COALESCE(p.display_name, ''), f.created_at
		 FROM friends f
		 LEFT JOIN profiles p ON p.user_id = f.user_id
		 WHERE f.friend_id = $1 AND f.status = 'pending'
		 ORDER BY f.created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing received requests: %w", err)
	}

	sent, err := s.listSummaries(ctx,
		`SELECT f.friend_id, COALESCE(p.display_name, ''), f.created_at
		 FROM friends f
		 LEFT JOIN profiles p ON p.user_id = f.friend_id
		 WHERE f.user_id = $1 AND f.status = 'pending'
		 ORDER BY f.created_at`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing sent requests: %w", err)
	}

	return buildFriendView(profiles, friends, received, sent), nil
}

func buildFriendView(profiles []models.Profile, friends, received, sent []models.FriendSummary) *models.FriendView {
	friendSet := make(map[uuid.UUID]bool, len(friends))
	for _, f := range friends {
		friendSet[f.UserID] = true
	}
	receivedSet := make(map[uuid.UUID]bool, len(received))
	for _, r := range received {
		receivedSet[r.UserID] = true
	}
	sentSet := make(map[uuid.UUID]bool, len(sent))
	for _, r := range sent {
		sentSet[r.UserID] = true
	}

	candidates := make([]models.Candidate, 0, len(profiles))
	for _, p := range profiles {
		c := models.NewCandidate(p)
		switch {
		case friendSet[p.UserID]:
			c.State = models.CandidateFriend
		case receivedSet[p.UserID]:
			c.State = models.CandidatePending
			c.Direction = models.RequestReceived
		case sentSet[p.UserID]:
			c.State = models.CandidatePending
			c.Direction = models.RequestSent
		}
		candidates = append(candidates, c)
	}

	return &models.FriendView{
		Candidates:       candidates,
		Friends:          friends,
		RequestsReceived: received,
		RequestsSent:     sent,
	}
}

func (s *FriendService) listSummaries(ctx context.Context, query string, userID uuid.UUID) ([]models.FriendSummary, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.FriendSummary{}
	for rows.Next() {
		var f models.FriendSummary
		if err := rows.Scan(&f.UserID, &f.DisplayName, &f.Since); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		f.Label = models.DisplayLabel(f.DisplayName)
		summaries = append(summaries, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// SendRequest inserts a pending edge from userID to friendID. Any existing
// edge between the two users, in either direction, makes this a conflict.
func (s *FriendService) SendRequest(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendEdge, error) {
	if userID == friendID {
		return nil, ErrCannotFriendSelf
	}

	var targetExists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", friendID).Scan(&targetExists)
	if err != nil {
		return nil, fmt.Errorf("checking target user: %w", err)
	}
	if !targetExists {
		return nil, ErrFriendTargetNotFound
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friends
			WHERE (user_id = $1 AND friend_id = $2)
			   OR (user_id = $2 AND friend_id = $1)
		)`,
		userID, friendID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking friend edge existence: %w", err)
	}
	if exists {
		return nil, ErrFriendRequestExists
	}

	edge := &models.FriendEdge{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friends (user_id, friend_id, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT (user_id, friend_id) DO NOTHING
		 RETURNING id, user_id, friend_id, status, created_at`,
		userID, friendID,
	).Scan(&edge.ID, &edge.UserID, &edge.FriendID, &edge.Status, &edge.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return edge, nil
}

// AcceptRequest marks requesterID's pending edge to userID as accepted and
// writes the reverse accepted edge in the same transaction.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requesterID uuid.UUID) (*models.FriendEdge, error) {
	if userID == requesterID {
		return nil, ErrCannotFriendSelf
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx,
		`UPDATE friends SET status = 'accepted'
		 WHERE user_id = $1 AND friend_id = $2 AND status = 'pending'`,
		requesterID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrFriendRequestNotFound
	}

	edge := &models.FriendEdge{}
	err = tx.QueryRow(ctx,
		`INSERT INTO friends (user_id, friend_id, status)
		 VALUES ($1, $2, 'accepted')
		 ON CONFLICT (user_id, friend_id) DO UPDATE SET status = 'accepted'
		 RETURNING id, user_id, friend_id, status, created_at`,
		userID, requesterID,
	).Scan(&edge.ID, &edge.UserID, &edge.FriendID, &edge.Status, &edge.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating reverse friend edge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing friend acceptance: %w", err)
	}

	return edge, nil
}

// IsFriend reports whether userID holds an accepted edge to otherUserID.
func (s *FriendService) IsFriend(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friends
			WHERE user_id = $1 AND friend_id = $2 AND status = 'accepted'
		)`,
		userID, otherUserID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return ok, nil
}

// FetchSecretMessage reads friendID's secret on behalf of userID. Callers
// without an accepted edge get ErrNotFriend and the secret store is not read.
func (s *FriendService) FetchSecretMessage(ctx context.Context, userID, friendID uuid.UUID) (*models.FriendSecret, error) {
	ok, err := s.IsFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFriend
	}

	message, found, err := s.secrets.GetMessage(ctx, friendID)
	if err != nil {
		return nil, err
	}

	result := &models.FriendSecret{FriendID: friendID, Message: message, Found: found && message != ""}
	if !result.Found {
		result.Message = models.SecretNotFoundMessage
	}
	return result, nil
}
