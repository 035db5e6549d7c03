package httpapi

import (
	"errors"
	"net/http"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/services/accounts"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/session"
)

const msgInvalidCredentials = "Invalid email or password"

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()) != "" {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", http.StatusOK, page{Title: "Log in"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	email := r.PostForm.Get("email")

	user, err := h.accounts.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		h.render(w, r, "login", http.StatusOK, page{Title: "Log in", Errors: []string{msgInvalidCredentials}, Form: map[string]string{"email": email}})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.startSession(w, r, user)
}

func (h *Handler) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup", http.StatusOK, page{Title: "Sign up", LoggedIn: session.FromContext(r.Context()) != ""})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	in := accounts.SignUp{
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
		Email:     r.PostForm.Get("email"),
		Password:  r.PostForm.Get("password"),
	}

	user, err := h.accounts.SignUp(r.Context(), in)
	var verrs projects.ValidationErrors
	if errors.As(err, &verrs) {
		h.render(w, r, "signup", http.StatusOK, page{
			Title:  "Sign up",
			Errors: verrs,
			Form:   map[string]string{"first_name": in.FirstName, "last_name": in.LastName, "email": in.Email},
		})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.startSession(w, r, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, user model.User) {
	if err := h.sessions.Issue(w, user.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}
