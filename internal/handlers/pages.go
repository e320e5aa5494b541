package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/HammerMeetNail/secretapp/internal/assets"
	"github.com/HammerMeetNail/secretapp/internal/logging"
	"github.com/HammerMeetNail/secretapp/internal/models"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const csrfHeaderName = "X-CSRF-Token"

// PageServices are the stores the server-rendered pages read from. Any of
// them may be nil, in which case the page renders with empty state.
type PageServices struct {
	Profiles services.ProfileServiceInterface
	Secrets  services.SecretServiceInterface
	Friends  services.FriendServiceInterface
	Assets   *assets.Manifest
}

type PageHandler struct {
	templates *template.Template
	svc       PageServices
}

func NewPageHandler(templatesDir string, svc PageServices) (*PageHandler, error) {
	funcs := template.FuncMap{"asset": svc.Assets.URL}
	templates, err := template.New("pages").Funcs(funcs).ParseGlob(filepath.Join(templatesDir, "*.html"))
	if err != nil {
		return nil, err
	}

	return &PageHandler{templates: templates, svc: svc}, nil
}

type PageData struct {
	Title       string
	User        *models.User
	CSRFToken   string
	Error       string
	Notice      string
	Profile     *models.Profile
	Secrets     []models.Secret
	AllowDelete bool
	Friends     *models.FriendView
}

func (h *PageHandler) newPageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	token := w.Header().Get(csrfHeaderName)
	if token == "" {
		if c, err := r.Cookie("csrf_token"); err == nil {
			token = c.Value
		}
	}
	return PageData{
		Title:     title,
		User:      GetUserFromContext(r.Context()),
		CSRFToken: token,
		Error:     r.URL.Query().Get("error"),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, name string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl := h.templates.Lookup(name)
	if tmpl == nil {
		http.Error(w, "Template not found: "+name, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		logging.Error("Template error", map[string]interface{}{"template": name, "error": err.Error()})
	}
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home.html", http.StatusOK, h.newPageData(w, r, "Secret App"))
}

func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/protected", http.StatusSeeOther)
		return
	}
	h.render(w, "sign-in.html", http.StatusOK, h.newPageData(w, r, "Sign in"))
}

func (h *PageHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/protected", http.StatusSeeOther)
		return
	}
	h.render(w, "sign-up.html", http.StatusOK, h.newPageData(w, r, "Sign up"))
}

// Protected shows the profile form, the caller's secret read-only, and the
// account controls.
func (h *PageHandler) Protected(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(w, r, "Your profile")
	if data.User == nil {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}

	data.Profile = h.loadProfile(r, data.User)
	data.Secrets = h.loadSecrets(r, data.User)
	h.render(w, "protected.html", http.StatusOK, data)
}

func (h *PageHandler) Secrets(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(w, r, "Your secret")
	if data.User == nil {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}

	data.Secrets = h.loadSecrets(r, data.User)
	data.AllowDelete = true
	h.render(w, "secrets.html", http.StatusOK, data)
}

func (h *PageHandler) Friends(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(w, r, "Friends")
	if data.User == nil {
		http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
		return
	}

	data.Friends = &models.FriendView{}
	if h.svc.Friends != nil {
		view, err := h.svc.Friends.LoadView(r.Context(), data.User.ID)
		if err != nil {
			logInternal(r, "Error loading friends page", err)
			data.Error = "Could not load friends. Please try again."
		} else {
			data.Friends = view
		}
	}
	h.render(w, "friends.html", http.StatusOK, data)
}

// loadProfile never fails the page: a missing or unreadable profile renders
// as empty fields.
func (h *PageHandler) loadProfile(r *http.Request, user *models.User) *models.Profile {
	empty := &models.Profile{UserID: user.ID}
	if h.svc.Profiles == nil {
		return empty
	}
	profile, err := h.svc.Profiles.Get(r.Context(), user.ID)
	if err != nil {
		if !errors.Is(err, services.ErrProfileNotFound) {
			logInternal(r, "Error loading profile", err)
		}
		return empty
	}
	return profile
}

func (h *PageHandler) loadSecrets(r *http.Request, user *models.User) []models.Secret {
	if h.svc.Secrets == nil {
		return nil
	}
	secrets, err := h.svc.Secrets.ListByUser(r.Context(), user.ID)
	if err != nil {
		logInternal(r, "Error loading secrets", err)
		return nil
	}
	return secrets
}

// NotFound renders the 404 error page.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if h.templates.Lookup("404.html") == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	h.render(w, "404.html", http.StatusNotFound, h.newPageData(w, r, "Not found"))
}

// InternalError renders the 500 error page.
func (h *PageHandler) InternalError(w http.ResponseWriter, r *http.Request) {
	if h.templates.Lookup("500.html") == nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.render(w, "500.html", http.StatusInternalServerError, h.newPageData(w, r, "Error"))
}
