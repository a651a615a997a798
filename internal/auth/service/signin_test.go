package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"community-platform/backend/internal/auth/domain"
	groupdomain "community-platform/backend/internal/group/domain"
	"community-platform/backend/internal/idp"
	userdomain "community-platform/backend/internal/user/domain"
)

func completeSignIn(clerkID string) func(identifier, password string) (*idp.SignInAttempt, error) {
	return func(identifier, password string) (*idp.SignInAttempt, error) {
		return &idp.SignInAttempt{Status: idp.StatusComplete, SessionID: "sess_1", UserID: clerkID}, nil
	}
}

func provisioned(env *testEnv, clerkID string) *userdomain.User {
	u := &userdomain.User{ID: "u1", ClerkID: clerkID, Firstname: "Jane", Lastname: "Doe", CreatedAt: time.Now()}
	if err := env.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func TestSignInValidatesBeforeProvider(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.SignIn(context.Background(), "jane@example.com", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("SignIn = %v, want validation error", err)
	}
	if env.provider.signInCalls != 0 {
		t.Errorf("provider called %d times for invalid input, want 0", env.provider.signInCalls)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	env := newTestEnv()
	// fakeProvider defaults to a credential rejection.
	_, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if !errors.Is(err, domain.ErrProviderRejected) {
		t.Fatalf("SignIn = %v, want provider rejection", err)
	}
	if got := env.provider.activatedSessions(); len(got) != 0 {
		t.Errorf("activated sessions = %v, want none", got)
	}
}

func TestSignInIncompleteAttempt(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = func(identifier, password string) (*idp.SignInAttempt, error) {
		return &idp.SignInAttempt{Status: idp.StatusNeedsVerification, SessionID: "sess_1"}, nil
	}

	_, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if !errors.Is(err, domain.ErrAuthenticationIncomplete) {
		t.Fatalf("SignIn = %v, want incomplete authentication", err)
	}
	if got := env.provider.activatedSessions(); len(got) != 0 {
		t.Errorf("activated sessions = %v, want none for incomplete attempt", got)
	}
}

func TestSignInFreshUser(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = completeSignIn("clerk_1")
	provisioned(env, "clerk_1")

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if res.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", res.UserID)
	}
	if res.Route.HasGroup {
		t.Error("fresh user should have no group route")
	}
	if res.SessionToken == "" {
		t.Error("no platform session token issued")
	}
	if got := env.provider.activatedSessions(); len(got) != 1 {
		t.Errorf("activated sessions = %v, want one", got)
	}
}

func TestSignInRoutesToGroupAndChannel(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = completeSignIn("clerk_1")
	provisioned(env, "clerk_1")
	env.groups.group = &groupdomain.Group{ID: "g1", UserID: "u1"}
	env.groups.channel = &groupdomain.Channel{ID: "c1", GroupID: "g1"}

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !res.Route.HasGroup || res.Route.GroupID != "g1" || res.Route.ChannelID != "c1" {
		t.Errorf("route = %+v, want group g1 channel c1", res.Route)
	}
}

func TestSignInGroupWithoutChannels(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = completeSignIn("clerk_1")
	provisioned(env, "clerk_1")
	env.groups.group = &groupdomain.Group{ID: "g1", UserID: "u1"}

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !res.Route.HasGroup || res.Route.GroupID != "g1" {
		t.Errorf("route = %+v, want group g1", res.Route)
	}
	if res.Route.ChannelID != "" {
		t.Errorf("ChannelID = %q, want empty for channel-less group", res.Route.ChannelID)
	}
}

func TestSignInHealsMissingUserRow(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = completeSignIn("clerk_1")
	env.provider.currentPrincipalFn = func(sessionToken string) (*idp.Principal, error) {
		return &idp.Principal{ID: "clerk_1", Firstname: "Jane", Lastname: "Doe", ImageURL: "img"}, nil
	}

	res, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	user, _ := env.users.GetByClerkID(context.Background(), "clerk_1")
	if user == nil {
		t.Fatal("reconciliation did not provision the user")
	}
	if res.UserID != user.ID {
		t.Errorf("UserID = %q, want reconciled %q", res.UserID, user.ID)
	}
	if !env.audit.has("reconcile_provisioned") {
		t.Error("reconcile_provisioned audit event missing")
	}
}

func TestSignInUnreconcilablePrincipal(t *testing.T) {
	env := newTestEnv()
	env.provider.createSessionFn = completeSignIn("clerk_ghost")
	// currentPrincipalFn stays nil: no principal resolves, reconciliation fails.

	_, err := env.svc.SignIn(context.Background(), "jane@example.com", "password1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("SignIn = %v, want user not found", err)
	}
	if env.sessions.issuedCount() != 0 {
		t.Error("platform session issued for unprovisioned principal")
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv()
	if err := env.svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout empty token: %v", err)
	}
	if len(env.sessions.revoked) != 0 {
		t.Error("empty token should not reach the session store")
	}

	if err := env.svc.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(env.sessions.revoked) != 1 || env.sessions.revoked[0] != "tok" {
		t.Errorf("revoked = %v, want [tok]", env.sessions.revoked)
	}
}
