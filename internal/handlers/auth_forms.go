package handlers

import (
	"net/http"
	"net/url"
)

// Form-post variants of sign-in, sign-up and sign-out used by the
// server-rendered pages. Failures redirect back with an error query param.

func (h *AuthHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/sign-in", msgInvalidBody)
		return
	}

	_, token, failure := h.signIn(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if failure != nil {
		h.redirectFailure(w, r, "/sign-in", failure)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/protected", http.StatusSeeOther)
}

func (h *AuthHandler) SignUpForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/sign-up", msgInvalidBody)
		return
	}

	_, token, failure := h.signUp(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if failure != nil {
		h.redirectFailure(w, r, "/sign-up", failure)
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/protected", http.StatusSeeOther)
}

func (h *AuthHandler) SignOutForm(w http.ResponseWriter, r *http.Request) {
	h.endSession(r)
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
}

func (h *AuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request, path string, f *authFailure) {
	if f.err != nil {
		logInternal(r, "auth form failed", f.err)
	}
	redirectWithError(w, r, path, f.message)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}
