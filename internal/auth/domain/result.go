// Package domain holds the auth flow result contract and error taxonomy.
package domain

import "errors"

// Result statuses. These classifications are part of the contract with the
// presentation layer, which branches routing on them.
const (
	StatusOK            = 200 // success
	StatusPartial       = 207 // success with routing info (user already has a group)
	StatusBadRequest    = 400 // bad input or provider rejection; retryable
	StatusNotFound      = 404 // no principal, or principal without a local user
	StatusInternalError = 500 // unexpected failure; detail logged, never exposed
)

// AuthResult is the structured outcome of every flow. On success it carries
// the user's internal id and optional routing targets; on failure a sanitized
// message. How it is surfaced (toast, redirect) is the presentation layer's call.
type AuthResult struct {
	Status    int    `json:"status"`
	ID        string `json:"id,omitempty"`
	Image     string `json:"image,omitempty"`
	Username  string `json:"username,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	// ErrValidation is a local pre-network input failure; never reaches external systems.
	ErrValidation = errors.New("validation failed")
	// ErrProviderRejected is an identity-provider rejection; its message is surfaced verbatim.
	ErrProviderRejected = errors.New("identity provider rejected the request")
	// ErrVerificationIncomplete means the code attempt did not complete; the sign-up stays retryable.
	ErrVerificationIncomplete = errors.New("status in complete")
	// ErrAuthenticationIncomplete means the credential check did not complete (e.g. another factor required).
	ErrAuthenticationIncomplete = errors.New("authentication incomplete")
	// ErrUserNotProvisioned means a principal exists upstream but local provisioning never completed.
	ErrUserNotProvisioned = errors.New("user not found in database")
	// ErrUserNotFound means a successfully authenticated principal has no local user row.
	ErrUserNotFound = errors.New("user not found")
	// ErrProvisioningFailed means the directory write failed after provider-side success.
	ErrProvisioningFailed = errors.New("failed to create user")
	// ErrProviderInvariant means the provider completed verification without a created identity id.
	ErrProviderInvariant = errors.New("provider completed verification without a created user id")
)

// RegistrationPhase is the client-held state of the two-phase sign-up flow.
// The server re-validates all preconditions on each step and never trusts the
// echoed phase on its own.
type RegistrationPhase string

const (
	PhaseCollecting RegistrationPhase = "collecting"
	PhaseCodeSent   RegistrationPhase = "code_sent"
	PhaseVerified   RegistrationPhase = "verified"
)

// RegistrationSession is the transient state spanning the two-phase sign-up.
// It lives in the calling session; nothing is persisted server-side between
// phases, so abandonment needs no cleanup.
type RegistrationSession struct {
	SignUpID string            `json:"signUpId"`
	Phase    RegistrationPhase `json:"phase"`
}
