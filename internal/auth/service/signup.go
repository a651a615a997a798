package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"community-platform/backend/internal/auth/domain"
	"community-platform/backend/internal/idp"
	userdomain "community-platform/backend/internal/user/domain"
)

// StartRegistrationInput carries the collected registration form fields.
// Names are validated here but not persisted until verification completes.
type StartRegistrationInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

// CompleteRegistrationInput carries the verification code plus the name fields
// the client held since the collecting phase.
type CompleteRegistrationInput struct {
	SignUpID  string
	Code      string
	Firstname string
	Lastname  string
}

// RegistrationResult is the outcome of a completed registration: the new local
// user, a platform session token, and the routing decision (always fresh,
// since new users start with no group).
type RegistrationResult struct {
	UserID       string
	SessionToken string
	Route        Route
}

// StartRegistration validates the collected fields, pre-creates the provider
// account, and requests an emailed code challenge. On provider rejection the
// flow stays in the collecting phase and may be retried with corrected input.
// No state is kept server-side; the returned session is held by the caller.
func (s *Service) StartRegistration(ctx context.Context, in StartRegistrationInput) (*domain.RegistrationSession, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validateName("first name", in.Firstname); err != nil {
		return nil, err
	}
	if err := validateName("last name", in.Lastname); err != nil {
		return nil, err
	}

	attempt, err := s.provider.PreCreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return nil, classifyProviderError("pre-create account", err)
	}
	if err := s.provider.RequestCodeChallenge(ctx, attempt.SignUpID); err != nil {
		return nil, classifyProviderError("request code challenge", err)
	}

	return &domain.RegistrationSession{
		SignUpID: attempt.SignUpID,
		Phase:    domain.PhaseCodeSent,
	}, nil
}

// CompleteRegistration submits the verification code and, on provider-side
// completion, provisions the local user and activates the session.
//
// A local user row is created only when the provider reports the attempt
// complete with a non-empty created identity id. If the directory write fails
// the session is NOT activated: the provider-side identity then exists without
// a local counterpart, which the audit entry records for reconciliation (the
// gap also heals on the next sign-in, see EnsureProvisioned).
func (s *Service) CompleteRegistration(ctx context.Context, in CompleteRegistrationInput) (*RegistrationResult, error) {
	if in.SignUpID == "" || in.Code == "" {
		return nil, fmt.Errorf("%w: verification code is required", domain.ErrValidation)
	}
	if err := validateName("first name", in.Firstname); err != nil {
		return nil, err
	}
	if err := validateName("last name", in.Lastname); err != nil {
		return nil, err
	}

	attempt, err := s.provider.AttemptCodeVerification(ctx, in.SignUpID, in.Code)
	if err != nil {
		return nil, classifyProviderError("attempt code verification", err)
	}
	if attempt.Status != idp.StatusComplete {
		return nil, domain.ErrVerificationIncomplete
	}
	if attempt.CreatedUserID == "" {
		log.Printf("registration: provider reported complete without a created user id (sign-up %s)", in.SignUpID)
		return nil, domain.ErrProviderInvariant
	}

	user := &userdomain.User{
		ID:        s.ids(),
		ClerkID:   attempt.CreatedUserID,
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Image:     "",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		log.Printf("registration: provisioning clerk id %s failed after provider-side success: %v", attempt.CreatedUserID, err)
		s.auditEvent(ctx, "", "provisioning_failed", "user", "clerk_id="+attempt.CreatedUserID)
		return nil, fmt.Errorf("%w: %w", domain.ErrProvisioningFailed, err)
	}

	if err := s.provider.ActivateSession(ctx, attempt.SessionID); err != nil {
		log.Printf("registration: activating session for clerk id %s: %v", attempt.CreatedUserID, err)
		return nil, err
	}
	token, err := s.sessions.Issue(ctx, attempt.SessionID, user.ID)
	if err != nil {
		log.Printf("registration: issuing platform session for user %s: %v", user.ID, err)
		return nil, err
	}

	s.auditEvent(ctx, user.ID, "sign_up_complete", "user", "clerk_id="+attempt.CreatedUserID)

	return &RegistrationResult{
		UserID:       user.ID,
		SessionToken: token,
		Route:        Route{}, // new users always start with no group
	}, nil
}

// classifyProviderError wraps provider rejections so the handler can surface
// only the provider's human-readable message; transport errors pass through
// for internal classification.
func classifyProviderError(op string, err error) error {
	var pErr *idp.Error
	if errors.As(err, &pErr) {
		log.Printf("identity provider rejected %s: code=%s message=%q", op, pErr.Code, pErr.Message)
		return fmt.Errorf("%w: %w", domain.ErrProviderRejected, pErr)
	}
	log.Printf("identity provider %s: %v", op, err)
	return err
}
