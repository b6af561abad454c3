package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/model"
	"github.com/otpstudio/studio-server-go/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
	isProduction   bool
}

func NewContactHandler(contactService *service.ContactService, isProduction bool) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		isProduction:   isProduction,
	}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Company *string `json:"company"`
		Message string  `json:"message"`
		Source  *string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	_, err := h.contactService.Submit(r.Context(), model.CreateLeadParams{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Message: req.Message,
		Source:  req.Source,
	})
	if err != nil {
		log.Error().Err(err).Msg("contact submission failed")
		writeServiceError(w, err, h.isProduction)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
