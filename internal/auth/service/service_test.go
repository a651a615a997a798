package service

import (
	"context"
	"fmt"
	"sync"

	groupdomain "community-platform/backend/internal/group/domain"
	"community-platform/backend/internal/idp"
	userdomain "community-platform/backend/internal/user/domain"
)

// fakeProvider implements idp.Provider with per-method hooks and call counters.
type fakeProvider struct {
	mu sync.Mutex

	currentPrincipalFn func(sessionToken string) (*idp.Principal, error)
	createSessionFn    func(identifier, password string) (*idp.SignInAttempt, error)
	preCreateFn        func(email, password string) (*idp.SignUpAttempt, error)
	requestCodeFn      func(signUpID string) error
	attemptCodeFn      func(signUpID, code string) (*idp.SignUpAttempt, error)
	oauthURLFn         func(strategy idp.OAuthStrategy, redirectURL, complete string) (string, error)

	activated      []string
	preCreateCalls int
	signInCalls    int
}

func (f *fakeProvider) CurrentPrincipal(ctx context.Context, sessionToken string) (*idp.Principal, error) {
	if f.currentPrincipalFn == nil {
		return nil, nil
	}
	return f.currentPrincipalFn(sessionToken)
}

func (f *fakeProvider) CreateCredentialSession(ctx context.Context, identifier, password string) (*idp.SignInAttempt, error) {
	f.mu.Lock()
	f.signInCalls++
	f.mu.Unlock()
	if f.createSessionFn == nil {
		return nil, &idp.Error{Code: "form_password_incorrect", Message: "Password is incorrect."}
	}
	return f.createSessionFn(identifier, password)
}

func (f *fakeProvider) ActivateSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.activated = append(f.activated, sessionID)
	f.mu.Unlock()
	return nil
}

func (f *fakeProvider) PreCreateAccount(ctx context.Context, email, password string) (*idp.SignUpAttempt, error) {
	f.mu.Lock()
	f.preCreateCalls++
	f.mu.Unlock()
	if f.preCreateFn == nil {
		return &idp.SignUpAttempt{SignUpID: "sua_1", Status: idp.StatusNeedsVerification}, nil
	}
	return f.preCreateFn(email, password)
}

func (f *fakeProvider) RequestCodeChallenge(ctx context.Context, signUpID string) error {
	if f.requestCodeFn == nil {
		return nil
	}
	return f.requestCodeFn(signUpID)
}

func (f *fakeProvider) AttemptCodeVerification(ctx context.Context, signUpID, code string) (*idp.SignUpAttempt, error) {
	if f.attemptCodeFn == nil {
		return &idp.SignUpAttempt{SignUpID: signUpID, Status: idp.StatusIncomplete}, nil
	}
	return f.attemptCodeFn(signUpID, code)
}

func (f *fakeProvider) OAuthRedirectURL(strategy idp.OAuthStrategy, redirectURL, complete string) (string, error) {
	if f.oauthURLFn == nil {
		return "https://idp.example.com/oauth?strategy=" + string(strategy), nil
	}
	return f.oauthURLFn(strategy, redirectURL, complete)
}

func (f *fakeProvider) activatedSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.activated...)
}

// fakeUserRepo keeps users keyed by clerk id and enforces the uniqueness the
// real table's constraint provides.
type fakeUserRepo struct {
	mu        sync.Mutex
	byClerkID map[string]*userdomain.User
	createErr error
	creates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byClerkID: make(map[string]*userdomain.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byClerkID {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByClerkID(ctx context.Context, clerkID string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byClerkID[clerkID], nil
}

func (r *fakeUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byClerkID[u.ClerkID]; ok {
		return userdomain.ErrClerkIDTaken
	}
	cp := *u
	r.byClerkID[u.ClerkID] = &cp
	return nil
}

func (r *fakeUserRepo) createCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

type fakeGroupRepo struct {
	group      *groupdomain.Group
	channel    *groupdomain.Channel
	groupErr   error
	channelErr error
}

func (r *fakeGroupRepo) FirstGroupByUser(ctx context.Context, userID string) (*groupdomain.Group, error) {
	return r.group, r.groupErr
}

func (r *fakeGroupRepo) FirstChannelByGroup(ctx context.Context, groupID string) (*groupdomain.Channel, error) {
	return r.channel, r.channelErr
}

type fakeSessions struct {
	mu      sync.Mutex
	issued  []string
	revoked []string
	err     error
}

func (s *fakeSessions) Issue(ctx context.Context, providerSessionID, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	token := "token-for-" + userID
	s.issued = append(s.issued, token)
	return token, nil
}

func (s *fakeSessions) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *fakeSessions) issuedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.issued)
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *fakeAudit) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	a.mu.Lock()
	a.actions = append(a.actions, action)
	a.mu.Unlock()
}

func (a *fakeAudit) has(action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, got := range a.actions {
		if got == action {
			return true
		}
	}
	return false
}

type testEnv struct {
	provider *fakeProvider
	users    *fakeUserRepo
	groups   *fakeGroupRepo
	sessions *fakeSessions
	audit    *fakeAudit
	svc      *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		provider: &fakeProvider{},
		users:    newFakeUserRepo(),
		groups:   &fakeGroupRepo{},
		sessions: &fakeSessions{},
		audit:    &fakeAudit{},
	}
	env.svc = New(env.provider, env.users, env.groups, env.sessions, env.audit)
	var mu sync.Mutex
	nextID := 0
	env.svc.ids = func() string {
		mu.Lock()
		defer mu.Unlock()
		nextID++
		return fmt.Sprintf("user-%d", nextID)
	}
	return env
}
