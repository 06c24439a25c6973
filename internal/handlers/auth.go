package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/ebill/auth"
	"github.com/diewo77/ebill/httpx"
	"github.com/diewo77/ebill/internal/services"
	"github.com/diewo77/ebill/validation"
	"github.com/diewo77/ebill/view"
)

// invalidLogin is shown for any credential mismatch.
const invalidLogin = "Invalid username or password."

type AuthHandler struct {
	auth     *services.AuthService
	sessions *auth.Manager
}

func NewAuthHandler(svc *services.AuthService, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{auth: svc, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if _, ok := auth.UsernameFromContext(r.Context()); ok {
			http.Redirect(w, r, "/bills", http.StatusSeeOther)
			return
		}
		h.renderLogin(w, r, http.StatusOK, "", "")
		return
	}

	var req loginRequest
	if httpx.IsJSONBody(r) {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	// Blank fields get the same answer as a wrong password.
	v := validation.Violations{}
	validation.Required("username", req.Username, v)
	validation.Required("password", req.Password, v)
	if !v.Empty() {
		slog.WarnContext(r.Context(), "login rejected", "violations", v)
		h.rejectLogin(w, r, req.Username)
		return
	}

	user, err := h.auth.Login(r.Context(), h.sessions.Session(w, r), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.rejectLogin(w, r, req.Username)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "login failed", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"username": user.Username})
		return
	}
	http.Redirect(w, r, "/bills", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(h.sessions.Session(w, r))
	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) rejectLogin(w http.ResponseWriter, r *http.Request, username string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	h.renderLogin(w, r, http.StatusOK, username, invalidLogin)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, username, msg string) {
	data := map[string]any{"LoginName": username, "Error": msg}
	if err := view.RenderStatus(w, r, status, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "render failed", "template", "login.html", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
