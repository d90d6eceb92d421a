package api

import (
	"net/http"
	"time"

	"marathon-api/internal/admin"
)

type loginRequest struct {
	Password string `json:"password"`
}

type settingsRequest struct {
	AdminPassword string `json:"admin_password"`
}

type settingsResponse struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tok, err := h.Admin.Login(r.Context(), req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	admin.SetSessionCookie(w, tok, h.Admin.SessionTTL(), h.SecureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged in"})
}

// logout：无会话也返回 200
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.Logout(r.Context(), admin.SessionToken(r)); err != nil {
		writeError(w, r, err)
		return
	}
	admin.ClearSessionCookie(w, h.SecureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *handlers) settings(w http.ResponseWriter, r *http.Request) {
	created, updated, err := h.Admin.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{CreatedAt: created, UpdatedAt: updated})
}

func (h *handlers) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.Admin.UpdatePassword(r.Context(), req.AdminPassword); err != nil {
		writeError(w, r, err)
		return
	}
	h.settings(w, r)
}
