package service

import (
	"context"
	"errors"
	"testing"

	"community-platform/backend/internal/auth/domain"
	"community-platform/backend/internal/idp"
)

func validSignUp() StartRegistrationInput {
	return StartRegistrationInput{
		Firstname: "Jane",
		Lastname:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1",
	}
}

func TestStartRegistrationRejectsInvalidInputBeforeProvider(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StartRegistrationInput)
	}{
		{"bad email", func(in *StartRegistrationInput) { in.Email = "nope" }},
		{"short password", func(in *StartRegistrationInput) { in.Password = "short" }},
		{"password charset", func(in *StartRegistrationInput) { in.Password = "p@ssword1" }},
		{"short first name", func(in *StartRegistrationInput) { in.Firstname = "Jo" }},
		{"short last name", func(in *StartRegistrationInput) { in.Lastname = "D" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			in := validSignUp()
			tt.mutate(&in)

			_, err := env.svc.StartRegistration(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("StartRegistration = %v, want validation error", err)
			}
			if env.provider.preCreateCalls != 0 {
				t.Errorf("provider called %d times for invalid input, want 0", env.provider.preCreateCalls)
			}
		})
	}
}

func TestStartRegistration(t *testing.T) {
	env := newTestEnv()
	var codeRequested string
	env.provider.requestCodeFn = func(signUpID string) error {
		codeRequested = signUpID
		return nil
	}

	sess, err := env.svc.StartRegistration(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}
	if sess.SignUpID != "sua_1" {
		t.Errorf("SignUpID = %q, want sua_1", sess.SignUpID)
	}
	if sess.Phase != domain.PhaseCodeSent {
		t.Errorf("Phase = %q, want %q", sess.Phase, domain.PhaseCodeSent)
	}
	if codeRequested != "sua_1" {
		t.Errorf("code challenge requested for %q, want sua_1", codeRequested)
	}
}

func TestStartRegistrationProviderRejection(t *testing.T) {
	env := newTestEnv()
	env.provider.preCreateFn = func(email, password string) (*idp.SignUpAttempt, error) {
		return nil, &idp.Error{Code: "form_identifier_exists", Message: "That email address is taken."}
	}

	_, err := env.svc.StartRegistration(context.Background(), validSignUp())
	if !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("StartRegistration = %v, want provider rejection", err)
	}
	var pErr *idp.Error
	if !errors.As(err, &pErr) || pErr.Message != "That email address is taken." {
		t.Errorf("provider message lost: %v", err)
	}
}

func TestCompleteRegistrationRequiresCode(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.CompleteRegistration(context.Background(), CompleteRegistrationInput{
		SignUpID: "sua_1", Code: "", Firstname: "Jane", Lastname: "Doe",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("CompleteRegistration = %v, want validation error", err)
	}
}

func TestCompleteRegistrationIncompleteVerification(t *testing.T) {
	env := newTestEnv()
	env.provider.attemptCodeFn = func(signUpID, code string) (*idp.SignUpAttempt, error) {
		return &idp.SignUpAttempt{SignUpID: signUpID, Status: idp.StatusIncomplete}, nil
	}

	_, err := env.svc.CompleteRegistration(context.Background(), CompleteRegistrationInput{
		SignUpID: "sua_1", Code: "000000", Firstname: "Jane", Lastname: "Doe",
	})
	if !errors.Is(err, domain.ErrVerificationIncomplete) {
		t.Fatalf("CompleteRegistration = %v, want incomplete verification", err)
	}
	if env.users.createCount() != 0 {
		t.Error("user created despite incomplete verification")
	}
	if got := env.provider.activatedSessions(); len(got) != 0 {
		t.Errorf("sessions activated %v despite incomplete verification", got)
	}
	if env.sessions.issuedCount() != 0 {
		t.Error("platform session issued despite incomplete verification")
	}
}

func TestCompleteRegistration(t *testing.T) {
	env := newTestEnv()
	env.provider.attemptCodeFn = func(signUpID, code string) (*idp.SignUpAttempt, error) {
		return &idp.SignUpAttempt{
			SignUpID:      signUpID,
			Status:        idp.StatusComplete,
			CreatedUserID: "clerk_123",
			SessionID:     "sess_123",
		}, nil
	}

	res, err := env.svc.CompleteRegistration(context.Background(), CompleteRegistrationInput{
		SignUpID: "sua_1", Code: "424242", Firstname: "Jane", Lastname: "Doe",
	})
	if err != nil {
		t.Fatalf("CompleteRegistration: %v", err)
	}
	if res.SessionToken == "" {
		t.Error("no platform session token issued")
	}
	if res.Route.HasGroup {
		t.Error("new user should have no group route")
	}

	user, _ := env.users.GetByClerkID(context.Background(), "clerk_123")
	if user == nil {
		t.Fatal("user not provisioned")
	}
	if user.Firstname != "Jane" || user.Lastname != "Doe" {
		t.Errorf("user names = %q %q, want Jane Doe", user.Firstname, user.Lastname)
	}
	if got := env.provider.activatedSessions(); len(got) != 1 || got[0] != "sess_123" {
		t.Errorf("activated sessions = %v, want [sess_123]", got)
	}
	if !env.audit.has("sign_up_complete") {
		t.Error("sign_up_complete audit event missing")
	}
}

func TestCompleteRegistrationProvisioningFailure(t *testing.T) {
	env := newTestEnv()
	env.users.createErr = errors.New("connection refused")
	env.provider.attemptCodeFn = func(signUpID, code string) (*idp.SignUpAttempt, error) {
		return &idp.SignUpAttempt{
			SignUpID: signUpID, Status: idp.StatusComplete,
			CreatedUserID: "clerk_123", SessionID: "sess_123",
		}, nil
	}

	_, err := env.svc.CompleteRegistration(context.Background(), CompleteRegistrationInput{
		SignUpID: "sua_1", Code: "424242", Firstname: "Jane", Lastname: "Doe",
	})
	if !errors.Is(err, domain.ErrProvisioningFailed) {
		t.Fatalf("CompleteRegistration = %v, want provisioning failure", err)
	}
	// The session must not be activated when the directory write failed: the
	// audit trail plus the next sign-in's reconciliation close the gap.
	if got := env.provider.activatedSessions(); len(got) != 0 {
		t.Errorf("activated sessions = %v, want none", got)
	}
	if !env.audit.has("provisioning_failed") {
		t.Error("provisioning_failed audit event missing")
	}
}

func TestCompleteRegistrationMissingCreatedUserID(t *testing.T) {
	env := newTestEnv()
	env.provider.attemptCodeFn = func(signUpID, code string) (*idp.SignUpAttempt, error) {
		return &idp.SignUpAttempt{SignUpID: signUpID, Status: idp.StatusComplete}, nil
	}

	_, err := env.svc.CompleteRegistration(context.Background(), CompleteRegistrationInput{
		SignUpID: "sua_1", Code: "424242", Firstname: "Jane", Lastname: "Doe",
	})
	if !errors.Is(err, domain.ErrProviderInvariant) {
		t.Fatalf("CompleteRegistration = %v, want provider invariant error", err)
	}
	if env.users.createCount() != 0 {
		t.Error("user created without a provider identity id")
	}
}
