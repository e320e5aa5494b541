package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpsertProfileParams struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

// Normalize trims surrounding whitespace from both fields.
func (p UpsertProfileParams) Normalize() UpsertProfileParams {
	return UpsertProfileParams{
		DisplayName: strings.TrimSpace(p.DisplayName),
		Bio:         strings.TrimSpace(p.Bio),
	}
}

// IsEmpty reports whether neither field carries any content.
func (p UpsertProfileParams) IsEmpty() bool {
	n := p.Normalize()
	return n.DisplayName == "" && n.Bio == ""
}
