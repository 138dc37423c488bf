package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty request body")

// StatusCode maps an application error code to its HTTP status.
func StatusCode(err error) int {
	switch usecase.ErrorCode(err) {
	case usecase.EINVALID:
		return http.StatusBadRequest
	case usecase.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case usecase.EFORBIDDEN:
		return http.StatusForbidden
	case usecase.ENOTFOUND:
		return http.StatusNotFound
	case usecase.ECONFLICT:
		return http.StatusConflict
	case usecase.ERATELIMIT:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes the response for a failed service call. Client
// errors are logged at warn, everything else at error.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	status := StatusCode(err)
	message := usecase.ErrorMessage(err)

	if status == http.StatusInternalServerError {
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, message)
		return
	}

	log.Warn(operation+" failed",
		zap.String("code", usecase.ErrorCode(err)),
		zap.String("message", message))

	var fields any
	if f := usecase.ErrorFields(err); len(f) > 0 {
		fields = f
	}
	utils.ResponseJSON(w, status, false, message, nil, fields)
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}
