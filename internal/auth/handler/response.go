package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"community-platform/backend/internal/auth/domain"
	"community-platform/backend/internal/idp"
)

// WriteJSON sends a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("http: encoding response: %v", err)
	}
}

// WriteResult sends an AuthResult using its own status classification as the
// HTTP status code (200/207/400/404/500 are all valid HTTP statuses).
func WriteResult(w http.ResponseWriter, res *domain.AuthResult) {
	WriteJSON(w, res, res.Status)
}

// resultFromError classifies a flow error into the sanitized AuthResult
// contract. Raw provider errors never cross this boundary except the
// human-readable message field.
func resultFromError(err error) *domain.AuthResult {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return &domain.AuthResult{Status: domain.StatusBadRequest, Message: userMessage(err)}
	case errors.Is(err, domain.ErrProviderRejected):
		var pErr *idp.Error
		if errors.As(err, &pErr) {
			return &domain.AuthResult{Status: domain.StatusBadRequest, Message: pErr.Message}
		}
		return &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Oops! something went wrong"}
	case errors.Is(err, domain.ErrVerificationIncomplete):
		return &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Oops! something went wrong, status in complete"}
	case errors.Is(err, domain.ErrAuthenticationIncomplete):
		return &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Additional verification is required to sign in"}
	case errors.Is(err, domain.ErrProvisioningFailed):
		return &domain.AuthResult{Status: domain.StatusBadRequest, Message: "Failed to create user"}
	case errors.Is(err, domain.ErrUserNotProvisioned):
		return &domain.AuthResult{Status: domain.StatusNotFound, Error: "User not found in database"}
	case errors.Is(err, domain.ErrUserNotFound):
		return &domain.AuthResult{Status: domain.StatusNotFound, Error: "User not found"}
	default:
		return &domain.AuthResult{Status: domain.StatusInternalError, Error: "Internal server error"}
	}
}

// userMessage strips the sentinel prefix from a wrapped validation error,
// leaving the field-level message.
func userMessage(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
