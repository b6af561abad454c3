package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/audit"
	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
	"github.com/otpstudio/studio-server-go/internal/httputil"
	"github.com/otpstudio/studio-server-go/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	isProduction    bool
}

func NewCheckoutHandler(checkoutService *service.CheckoutService, isProduction bool) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		isProduction:    isProduction,
	}
}

// CreateSession opens a hosted checkout session and returns its id for
// the browser to redirect into.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PackageName   string `json:"packageName"`
		CustomerEmail string `json:"customerEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PackageName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "packageName is required",
		})
		return
	}

	sessionID, err := h.checkoutService.CreateSession(r.Context(), req.PackageName, req.CustomerEmail)
	if err != nil {
		log.Error().Err(err).Str("package", req.PackageName).Msg("checkout session failed")

		appErr, ok := apperrors.AsAppError(err)
		if !ok {
			appErr = apperrors.Internal("Failed to create checkout session")
		}
		message := appErr.Message
		if h.isProduction && appErr.Code != apperrors.ErrCodeInvalidInput {
			message = "Failed to create checkout session"
		}
		writeJSON(w, httputil.StatusFromCode(appErr.Code), map[string]string{"error": message})
		return
	}

	audit.Log(r.Context(), audit.Event{
		Type: audit.EventCheckoutCreate,
		IP:   r.RemoteAddr,
		Details: map[string]interface{}{
			"package": req.PackageName,
		},
	})

	writeJSON(w, http.StatusOK, map[string]string{"id": sessionID})
}
