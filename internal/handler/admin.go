package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	"github.com/otpstudio/studio-server-go/internal/service"
)

type AdminHandler struct {
	postService  *service.PostService
	isProduction bool
}

func NewAdminHandler(postService *service.PostService, isProduction bool) *AdminHandler {
	return &AdminHandler{
		postService:  postService,
		isProduction: isProduction,
	}
}

// DeletePost removes a post by id or slug using the privileged credential.
// Zero matched rows is a 404, not a success.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   *int64  `json:"id"`
		Slug *string `json:"slug"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	deleted, err := h.postService.Delete(r.Context(), service.DeletePostParams{
		ID:   req.ID,
		Slug: req.Slug,
	})
	if err != nil {
		log.Warn().Err(err).Msg("delete post failed")
		writeServiceError(w, err, h.isProduction)
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type: audit.EventPostDelete,
		IP:   r.RemoteAddr,
		Details: map[string]interface{}{
			"slug":  deleted[0].Slug,
			"count": len(deleted),
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("deleted %d post(s)", len(deleted)),
		"deleted": deleted,
	})
}
