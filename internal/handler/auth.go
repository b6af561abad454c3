package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	"github.com/otpstudio/studio-server-go/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges the admin passcode for a bearer token. Every failure
// path returns the identical 401 body so nothing about the secret leaks.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Passcode == "" {
		writeAccessDenied(w)
		return
	}

	token, err := h.authService.Login(req.Passcode)
	if err != nil {
		log.Error().Err(err).Msg("admin login error")
		writeAccessDenied(w)
		return
	}

	if token == "" {
		audit.Log(r.Context(), audit.Event{
			Type:      audit.EventLoginFailure,
			IP:        r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		writeAccessDenied(w)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type:      audit.EventLoginSuccess,
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
	})
}

func writeAccessDenied(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"message": "Access Denied",
	})
}
