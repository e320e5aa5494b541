package client

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

const OneSecretOnlyMessage = "You can only have one secret message."

// ErrDeleteNotAllowed is returned by Delete on forms built without allowDelete.
var ErrDeleteNotAllowed = errors.New("deleting is not allowed here")

type SecretAPI interface {
	ListSecrets(ctx context.Context) ([]models.Secret, error)
	CreateSecret(ctx context.Context, message string) (*models.Secret, error)
	UpdateSecret(ctx context.Context, id uuid.UUID, message string) (*models.Secret, error)
	DeleteSecret(ctx context.Context, id uuid.UUID) error
}

// SecretForm holds the caller's secret message list and the edit in progress.
// AllowDelete is set only on the owner's management page.
type SecretForm struct {
	api SecretAPI

	AllowDelete bool
	Secrets     []models.Secret
	Draft       string
	Editing     *uuid.UUID
	Error       string
}

func NewSecretForm(api SecretAPI, allowDelete bool) *SecretForm {
	return &SecretForm{api: api, AllowDelete: allowDelete}
}

func (f *SecretForm) Load(ctx context.Context) error {
	secrets, err := f.api.ListSecrets(ctx)
	if err != nil {
		f.Error = MessageOf(err)
		return err
	}
	f.Secrets = secrets
	f.Error = ""
	return nil
}

// StartEdit copies an existing message into the draft.
func (f *SecretForm) StartEdit(id uuid.UUID) bool {
	for _, s := range f.Secrets {
		if s.ID == id {
			editing := id
			f.Editing = &editing
			f.Draft = s.Message
			return true
		}
	}
	return false
}

func (f *SecretForm) CancelEdit() {
	f.Editing = nil
	f.Draft = ""
}

// Submit creates the message, or updates it when an edit is in progress.
// A second message is refused locally without calling the server.
func (f *SecretForm) Submit(ctx context.Context) error {
	if f.Editing == nil && len(f.Secrets) > 0 {
		f.Error = OneSecretOnlyMessage
		return nil
	}
	message := strings.TrimSpace(f.Draft)

	if f.Editing != nil {
		updated, err := f.api.UpdateSecret(ctx, *f.Editing, message)
		if err != nil {
			f.Error = MessageOf(err)
			return err
		}
		for i := range f.Secrets {
			if f.Secrets[i].ID == updated.ID {
				f.Secrets[i] = *updated
			}
		}
		f.CancelEdit()
		f.Error = ""
		return nil
	}

	created, err := f.api.CreateSecret(ctx, message)
	if err != nil {
		f.Error = MessageOf(err)
		return err
	}
	f.Secrets = append(f.Secrets, *created)
	f.Draft = ""
	f.Error = ""
	return nil
}

func (f *SecretForm) Delete(ctx context.Context, id uuid.UUID) error {
	if !f.AllowDelete {
		f.Error = "Deleting is not allowed here."
		return ErrDeleteNotAllowed
	}
	if err := f.api.DeleteSecret(ctx, id); err != nil {
		f.Error = MessageOf(err)
		return err
	}

	kept := f.Secrets[:0]
	for _, s := range f.Secrets {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.Secrets = kept
	if f.Editing != nil && *f.Editing == id {
		f.CancelEdit()
	}
	f.Error = ""
	return nil
}
