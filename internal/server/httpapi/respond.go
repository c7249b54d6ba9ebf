package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/gorilla/mux"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps service errors onto status codes and user-facing messages.
// Unexpected errors are logged and reported as a generic 500.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	var (
		verr *common.ValidationError
		derr *common.DuplicateError
	)

	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &derr):
		if derr.Field == "username" {
			writeMessage(w, http.StatusConflict, common.MessageUsernameAlreadyTaken)
			return
		}
		writeMessage(w, http.StatusConflict, derr.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, common.MessageInvalidCredentials)
	case errors.Is(err, common.ErrorTokenRejected):
		writeMessage(w, http.StatusUnauthorized, common.MessageSignInRequired)
	case errors.Is(err, common.ErrorInsufficientPrivilege):
		writeMessage(w, http.StatusForbidden, common.MessageAdminRequired)
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, common.MessageNotFound)
	default:
		logger.Error(ctx, "request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, common.MessageInternalError)
	}
}

// decodeJSON reads the request body into dst. Malformed bodies become a
// ValidationError so they share the 400 path with field validation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}
