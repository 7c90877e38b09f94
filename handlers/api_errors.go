package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/dilip-codes/fingerauthbackend/biometric"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteBiometricError maps the matching core's error taxonomy onto HTTP
// statuses. Unknown errors are logged and reported as internal.
func WriteBiometricError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, biometric.ErrInsufficientFeatures):
		WriteAPIError(w, http.StatusUnprocessableEntity, "insufficient_features", "capture quality too low, try better lighting and retry")
	case errors.Is(err, biometric.ErrAcquisitionFailed):
		WriteAPIError(w, http.StatusUnprocessableEntity, "acquisition_failed", "could not acquire a usable capture image")
	case errors.Is(err, biometric.ErrDuplicateID):
		WriteAPIError(w, http.StatusConflict, "duplicate_id", "subject id is already enrolled")
	case errors.Is(err, biometric.ErrNoEnrolledSubjects):
		WriteAPIError(w, http.StatusConflict, "no_enrolled_subjects", "no registered subjects to authenticate against")
	case errors.Is(err, biometric.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", "subject or template not found")
	case errors.Is(err, biometric.ErrStoreCorrupt):
		log.Printf("handler: corrupt store encountered: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "store_corrupt", "stored biometric data failed to parse")
	default:
		log.Printf("handler: internal error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}
