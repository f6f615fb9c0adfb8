package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/patience/platform/internal/domain"
)

// maxBodyBytes caps request bodies accepted by DecodeJSON.
const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError writes a JSON error response, detecting domain.AppError for status codes.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Code != domain.CodeInternal && appErr.Code != domain.CodeCorruptLog {
		RespondJSON(w, errorStatus(appErr.Code), map[string]string{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"code":    domain.CodeInternal,
		"message": "internal server error",
	})
}

func errorStatus(code string) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondRejection writes a declined command. The game state is not echoed.
func RespondRejection(w http.ResponseWriter, rej *domain.Rejection) {
	RespondJSON(w, rejectionStatus(rej.Code), rej)
}

func rejectionStatus(code domain.RejectionCode) int {
	switch code {
	case domain.RejectGameNotFound:
		return http.StatusNotFound
	case domain.RejectGameAlreadyForfeited, domain.RejectGameAlreadyCompleted:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// DecodeJSON reads and decodes a JSON request body into dst. Bodies over
// 1 MiB and unknown fields are rejected.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
