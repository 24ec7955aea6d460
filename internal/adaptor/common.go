package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"finance-tracker/internal/usecase"
	"finance-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bindJSON decodes and validates the request body, answering 400 itself
// when either step fails.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeError answers with the status of the error's kind. Internal errors
// are logged in full and reported with a generic message.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) || uerr.Kind == usecase.KindInternal {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" failed", zap.String("kind", string(uerr.Kind)))
	utils.ResponseError(w, uerr.Kind.Status(), string(uerr.Kind), uerr.Message, nil)
}

func currentUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, string(usecase.KindMissingCredential), "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+what+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func deviceInfo(r *http.Request) usecase.DeviceInfo {
	return usecase.DeviceInfo{
		UserAgent: r.UserAgent(),
		IPAddress: utils.ClientIP(r),
	}
}
