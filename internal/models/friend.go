package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// FriendEdge is one directed row of the friends graph. A mutual friendship is
// two accepted edges, one in each direction.
type FriendEdge struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	FriendID  uuid.UUID    `json:"friend_id"`
	Status    FriendStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

type CandidateState string

const (
	CandidateFriend  CandidateState = "friend"
	CandidatePending CandidateState = "pending"
	CandidateAddable CandidateState = "addable"
)

type RequestDirection string

const (
	RequestReceived RequestDirection = "received"
	RequestSent     RequestDirection = "sent"
)

const UnnamedUserLabel = "Unnamed User"

// Candidate is another user's profile as seen from the friends page.
type Candidate struct {
	UserID      uuid.UUID        `json:"user_id"`
	DisplayName string           `json:"display_name"`
	Bio         string           `json:"bio"`
	Initials    string           `json:"initials"`
	Label       string           `json:"label"`
	State       CandidateState   `json:"state"`
	Direction   RequestDirection `json:"direction,omitempty"`
}

// NewCandidate builds an addable candidate with derived display fields.
func NewCandidate(p Profile) Candidate {
	return Candidate{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		Initials:    Initials(p.DisplayName),
		Label:       DisplayLabel(p.DisplayName),
		State:       CandidateAddable,
	}
}

// Initials returns the uppercased first letter of every word in name, or "?"
// when name is blank.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		out = append(out, []rune(word)[0])
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

func DisplayLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnnamedUserLabel
	}
	return name
}

// FriendSummary is an accepted friend or a pending counterpart in the view.
type FriendSummary struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Label       string    `json:"label"`
	Since       time.Time `json:"since"`
}

// FriendView is a snapshot of the caller's friends page.
type FriendView struct {
	Candidates       []Candidate     `json:"candidates"`
	Friends          []FriendSummary `json:"friends"`
	RequestsReceived []FriendSummary `json:"requests_received"`
	RequestsSent     []FriendSummary `json:"requests_sent"`
}

// HasFriend reports whether id is among the accepted friends in the view.
func (v *FriendView) HasFriend(id uuid.UUID) bool {
	if v == nil {
		return false
	}
	for _, f := range v.Friends {
		if f.UserID == id {
			return true
		}
	}
	return false
}

type SendFriendRequestParams struct {
	FriendID uuid.UUID `json:"friend_id"`
}

const (
	SecretUnauthorizedMessage = "Unauthorized: You are not allowed to view this secret."
	SecretNotFoundMessage     = "No message found."
)

// FriendSecret is the gated result of reading a friend's secret message.
type FriendSecret struct {
	FriendID uuid.UUID `json:"friend_id"`
	Message  string    `json:"message"`
	Found    bool      `json:"found"`
}
