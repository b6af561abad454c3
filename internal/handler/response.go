package handler

import (
	"net/http"

	apperrors "github.com/otpstudio/studio-server-go/internal/errors"
	"github.com/otpstudio/studio-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

// genericMessages hides internal detail from production callers for
// 500-class failures. Development mode passes the real message through to
// aid local debugging.
var genericMessages = map[apperrors.ErrorCode]string{
	apperrors.ErrCodeConfiguration: "Server configuration error",
	apperrors.ErrCodeUpstream:      "Upstream provider error",
	apperrors.ErrCodeParse:         "Failed to process provider response",
	apperrors.ErrCodeInternal:      "Internal server error",
	apperrors.ErrCodeDatabase:      "Internal server error",
}

func writeServiceError(w http.ResponseWriter, err error, isProduction bool) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("An unexpected error occurred")
	}

	if isProduction {
		if generic, ok := genericMessages[appErr.Code]; ok {
			appErr = apperrors.New(appErr.Code, generic)
		}
	}

	httputil.WriteError(w, appErr)
}
