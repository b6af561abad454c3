package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	"github.com/otpstudio/studio-server-go/internal/service"
)

type AIHandler struct {
	aiService    *service.AIService
	isProduction bool
}

func NewAIHandler(aiService *service.AIService, isProduction bool) *AIHandler {
	return &AIHandler{
		aiService:    aiService,
		isProduction: isProduction,
	}
}

func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider  string `json:"provider"`
		Prompt    string `json:"prompt"`
		Title     string `json:"title"`
		Archetype string `json:"archetype"`
		Model     string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	content, err := h.aiService.Generate(r.Context(), service.GenerateParams{
		Provider:  req.Provider,
		Prompt:    req.Prompt,
		Title:     req.Title,
		Archetype: req.Archetype,
		Model:     req.Model,
	})
	if err != nil {
		log.Error().Err(err).Str("provider", req.Provider).Msg("generate request failed")
		writeServiceError(w, err, h.isProduction)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type: audit.EventContentGenerate,
		IP:   r.RemoteAddr,
		Details: map[string]interface{}{
			"provider":  req.Provider,
			"archetype": req.Archetype,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    content,
	})
}
