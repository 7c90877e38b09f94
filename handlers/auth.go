package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
)

// AuthHandler issues bearer sessions for operators. Only the management
// surface (enrollment, attendance reports) requires a session; the kiosk
// authentication endpoint stays open.
type AuthHandler struct {
	OperatorRepo repository.OperatorRepositoryInterface
	SessionTTL   time.Duration
}

func NewAuthHandler(operatorRepo repository.OperatorRepositoryInterface, sessionTTL time.Duration) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{OperatorRepo: operatorRepo, SessionTTL: sessionTTL}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "invalid request payload")
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	operator, err := h.OperatorRepo.GetByUsername(payload.Username)
	if err != nil || !operator.CheckPassword(payload.Password) {
		// same generic message for unknown user and wrong password
		WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		return
	}

	expiresAt := time.Now().Add(h.SessionTTL)
	session := &models.OperatorSession{
		OperatorID: operator.ID,
		Token:      uuid.NewString(),
		ExpiresAt:  expiresAt.Unix(),
	}
	if err := h.OperatorRepo.CreateSession(session); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "session_error", "failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		Username:  operator.Username,
		ExpiresAt: expiresAt,
	})
}
