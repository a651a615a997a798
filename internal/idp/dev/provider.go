// Package dev provides an in-process identity provider for local development,
// gated by config and refused in production. It implements idp.Provider with
// bcrypt-hashed credentials, an emailed-code store, and in-memory sessions.
package dev

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"community-platform/backend/internal/idp"
)

const codeTTL = 10 * time.Minute

type account struct {
	id           string
	email        string
	passwordHash []byte
	imageURL     string
	verified     bool
}

type pendingSignUp struct {
	email        string
	passwordHash []byte
	code         string
	expiresAt    time.Time
}

type session struct {
	userID string
	active bool
}

// Provider is the in-memory dev identity provider. Safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	cost     int
	accounts map[string]*account // keyed by email
	signUps  map[string]*pendingSignUp
	sessions map[string]*session
	nowF     func() time.Time
}

// New returns a dev provider using the given bcrypt cost.
func New(bcryptCost int) *Provider {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		cost:     bcryptCost,
		accounts: make(map[string]*account),
		signUps:  make(map[string]*pendingSignUp),
		sessions: make(map[string]*session),
		nowF:     time.Now,
	}
}

// CurrentPrincipal resolves a session token (the session id) to a principal.
// Returns (nil, nil) for unknown or inactive sessions.
func (p *Provider) CurrentPrincipal(ctx context.Context, sessionToken string) (*idp.Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionToken]
	if !ok || !s.active {
		return nil, nil
	}
	for _, a := range p.accounts {
		if a.id == s.userID {
			return &idp.Principal{ID: a.id, Email: a.email, ImageURL: a.imageURL}, nil
		}
	}
	return nil, nil
}

// CreateCredentialSession checks credentials and returns a pending session.
func (p *Provider) CreateCredentialSession(ctx context.Context, identifier, password string) (*idp.SignInAttempt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a, ok := p.accounts[identifier]
	if !ok || !a.verified {
		return nil, &idp.Error{Code: "form_identifier_not_found", Message: "Couldn't find your account."}
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return nil, &idp.Error{Code: "form_password_incorrect", Message: "Password is incorrect."}
	}
	sessionID := uuid.New().String()
	p.sessions[sessionID] = &session{userID: a.id}
	return &idp.SignInAttempt{Status: idp.StatusComplete, SessionID: sessionID, UserID: a.id}, nil
}

// ActivateSession marks the session active so CurrentPrincipal resolves it.
func (p *Provider) ActivateSession(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	if !ok {
		return &idp.Error{Code: "session_not_found", Message: "Session not found."}
	}
	s.active = true
	return nil
}

// PreCreateAccount starts a registration. Rejects emails that already have a
// verified account, matching hosted-provider behavior.
func (p *Provider) PreCreateAccount(ctx context.Context, email, password string) (*idp.SignUpAttempt, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.accounts[email]; ok && a.verified {
		return nil, &idp.Error{Code: "form_identifier_exists", Message: "That email address is taken. Please try another."}
	}
	signUpID := uuid.New().String()
	p.signUps[signUpID] = &pendingSignUp{email: email, passwordHash: hash}
	return &idp.SignUpAttempt{SignUpID: signUpID, Status: idp.StatusNeedsVerification}, nil
}

// RequestCodeChallenge generates a 6-digit code for the pending sign-up. The
// code is retrievable via Code for the dev-only retrieval endpoint; no email
// is actually sent.
func (p *Provider) RequestCodeChallenge(ctx context.Context, signUpID string) error {
	code, err := generateCode(6)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	su, ok := p.signUps[signUpID]
	if !ok {
		return &idp.Error{Code: "sign_up_not_found", Message: "Sign up not found."}
	}
	su.code = code
	su.expiresAt = p.nowF().Add(codeTTL)
	return nil
}

// AttemptCodeVerification checks the code; on success it creates the account
// and a pending session. Wrong or expired codes leave the sign-up retryable.
func (p *Provider) AttemptCodeVerification(ctx context.Context, signUpID, code string) (*idp.SignUpAttempt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	su, ok := p.signUps[signUpID]
	if !ok {
		return nil, &idp.Error{Code: "sign_up_not_found", Message: "Sign up not found."}
	}
	if su.code == "" || code != su.code || !su.expiresAt.After(p.nowF()) {
		return &idp.SignUpAttempt{SignUpID: signUpID, Status: idp.StatusIncomplete}, nil
	}
	a := &account{
		id:           uuid.New().String(),
		email:        su.email,
		passwordHash: su.passwordHash,
		verified:     true,
	}
	p.accounts[su.email] = a
	delete(p.signUps, signUpID)
	sessionID := uuid.New().String()
	p.sessions[sessionID] = &session{userID: a.id}
	return &idp.SignUpAttempt{
		SignUpID:      signUpID,
		Status:        idp.StatusComplete,
		CreatedUserID: a.id,
		SessionID:     sessionID,
	}, nil
}

// OAuthRedirectURL has no browser to redirect in dev mode.
func (p *Provider) OAuthRedirectURL(strategy idp.OAuthStrategy, redirectURL, redirectURLComplete string) (string, error) {
	return "", &idp.Error{Code: "oauth_unsupported", Message: "OAuth is not available with the dev identity provider."}
}

// Code returns the pending verification code for signUpID, for the dev-only
// retrieval endpoint. Returns ok false if missing or expired.
func (p *Provider) Code(signUpID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	su, ok := p.signUps[signUpID]
	if !ok || su.code == "" || !su.expiresAt.After(p.nowF()) {
		return "", false
	}
	return su.code, true
}

func generateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}
