package session

import "context"

// Manager combines token minting with the active-session store. It implements
// the auth service's SessionIssuer capability and the middleware's resolver.
type Manager struct {
	tokens *TokenProvider
	store  Store
}

// NewManager returns a Manager using the given token provider and store.
func NewManager(tokens *TokenProvider, store Store) *Manager {
	return &Manager{tokens: tokens, store: store}
}

// Issue mints a platform session token for userID bound to providerSessionID
// and records it active for the token's lifetime.
func (m *Manager) Issue(ctx context.Context, providerSessionID, userID string) (string, error) {
	token, jti, _, err := m.tokens.Issue(providerSessionID, userID)
	if err != nil {
		return "", err
	}
	if err := m.store.Put(ctx, jti, providerSessionID, m.tokens.TTL()); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve validates the token and returns the bound provider session id and
// user id. Revoked, expired, or malformed tokens fail with ErrInvalidToken.
func (m *Manager) Resolve(ctx context.Context, token string) (providerSessionID, userID string, err error) {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return "", "", err
	}
	active, err := m.store.Active(ctx, claims.ID)
	if err != nil {
		return "", "", err
	}
	if !active {
		return "", "", ErrInvalidToken
	}
	return claims.ProviderSessionID, claims.Subject, nil
}

// Revoke removes the token's session from the store. Invalid tokens are a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}
