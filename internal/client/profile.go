package client

import (
	"context"

	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/models"
)

const (
	ProfileEmptyMessage = "Please enter at least a display name or bio."
	ProfileSavedMessage = "Profile updated successfully!"
)

type ProfileAPI interface {
	GetProfile(ctx context.Context) (*ProfileResult, error)
	SaveProfile(ctx context.Context, params models.UpsertProfileParams) (*ProfileResult, error)
}

// ProfileForm is the editable profile shown on the protected page.
type ProfileForm struct {
	api ProfileAPI

	Email       string
	DisplayName string
	Bio         string
	Message     string
	Loading     bool
}

func NewProfileForm(api ProfileAPI) *ProfileForm {
	return &ProfileForm{api: api}
}

// Load fills the form from the server. Failures leave the fields empty and
// are only logged.
func (f *ProfileForm) Load(ctx context.Context) {
	f.Loading = true
	defer func() { f.Loading = false }()

	result, err := f.api.GetProfile(ctx)
	if err != nil {
		logging.Warn("Error fetching profile", map[string]interface{}{"error": err.Error()})
		f.DisplayName, f.Bio = "", ""
		return
	}

	f.Email = result.Email
	if result.Profile != nil {
		f.DisplayName = result.Profile.DisplayName
		f.Bio = result.Profile.Bio
	}
}

// Save upserts the profile. It reports whether the server accepted it; the
// outcome message is left in Message either way.
func (f *ProfileForm) Save(ctx context.Context) bool {
	params := models.UpsertProfileParams{DisplayName: f.DisplayName, Bio: f.Bio}.Normalize()
	if params.IsEmpty() {
		f.Message = ProfileEmptyMessage
		return false
	}

	f.Loading = true
	defer func() { f.Loading = false }()

	result, err := f.api.SaveProfile(ctx, params)
	if err != nil {
		f.Message = "Error updating profile: " + MessageOf(err)
		return false
	}

	if result.Profile != nil {
		f.DisplayName = result.Profile.DisplayName
		f.Bio = result.Profile.Bio
	}
	f.Message = ProfileSavedMessage
	return true
}
