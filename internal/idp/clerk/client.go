// Package clerk implements the idp.Provider capability against the hosted
// identity provider's JSON API.
package clerk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"community-platform/backend/internal/idp"
)

const defaultTimeout = 15 * time.Second

// Client calls the identity provider REST API. Safe for concurrent use.
type Client struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

// New returns a client for the given API base URL and secret key.
func New(baseURL, secretKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		SecretKey:  secretKey,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type principalResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email_address"`
	Firstname string `json:"first_name"`
	Lastname  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

type signInResponse struct {
	Status           string `json:"status"`
	CreatedSessionID string `json:"created_session_id"`
	UserID           string `json:"user_id"`
}

type signUpResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CreatedUserID    string `json:"created_user_id"`
	CreatedSessionID string `json:"created_session_id"`
}

type errorResponse struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// CurrentPrincipal resolves the principal for a provider session token.
// Returns (nil, nil) when the token maps to no session (provider 404).
func (c *Client) CurrentPrincipal(ctx context.Context, sessionToken string) (*idp.Principal, error) {
	if sessionToken == "" {
		return nil, nil
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Session-Token", sessionToken)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var pr principalResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("clerk: decode principal: %w", err)
	}
	return &idp.Principal{
		ID:        pr.ID,
		Email:     pr.Email,
		Firstname: pr.Firstname,
		Lastname:  pr.Lastname,
		ImageURL:  pr.ImageURL,
	}, nil
}

// CreateCredentialSession authenticates identifier/password with the provider.
func (c *Client) CreateCredentialSession(ctx context.Context, identifier, password string) (*idp.SignInAttempt, error) {
	var out signInResponse
	err := c.post(ctx, "/sign_ins", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &idp.SignInAttempt{
		Status:    idp.AttemptStatus(out.Status),
		SessionID: out.CreatedSessionID,
		UserID:    out.UserID,
	}, nil
}

// ActivateSession marks the provider session active.
func (c *Client) ActivateSession(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/sessions/"+url.PathEscape(sessionID)+"/activate", nil, nil)
}

// PreCreateAccount starts registration with the provider.
func (c *Client) PreCreateAccount(ctx context.Context, email, password string) (*idp.SignUpAttempt, error) {
	var out signUpResponse
	err := c.post(ctx, "/sign_ups", map[string]string{
		"email_address": email,
		"password":      password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &idp.SignUpAttempt{SignUpID: out.ID, Status: idp.AttemptStatus(out.Status)}, nil
}

// RequestCodeChallenge asks the provider to email a verification code for the pending sign-up.
func (c *Client) RequestCodeChallenge(ctx context.Context, signUpID string) error {
	return c.post(ctx, "/sign_ups/"+url.PathEscape(signUpID)+"/prepare_verification", map[string]string{
		"strategy": "email_code",
	}, nil)
}

// AttemptCodeVerification submits the emailed code for the pending sign-up.
func (c *Client) AttemptCodeVerification(ctx context.Context, signUpID, code string) (*idp.SignUpAttempt, error) {
	var out signUpResponse
	err := c.post(ctx, "/sign_ups/"+url.PathEscape(signUpID)+"/attempt_verification", map[string]string{
		"strategy": "email_code",
		"code":     code,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &idp.SignUpAttempt{
		SignUpID:      out.ID,
		Status:        idp.AttemptStatus(out.Status),
		CreatedUserID: out.CreatedUserID,
		SessionID:     out.CreatedSessionID,
	}, nil
}

// OAuthRedirectURL builds the provider's OAuth authorize URL for the given strategy.
func (c *Client) OAuthRedirectURL(strategy idp.OAuthStrategy, redirectURL, redirectURLComplete string) (string, error) {
	if strategy == "" {
		return "", &idp.Error{Code: "strategy_missing", Message: "OAuth strategy is required"}
	}
	u, err := url.Parse(c.BaseURL + "/oauth/authorize")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("strategy", string(strategy))
	q.Set("redirect_url", redirectURL)
	q.Set("redirect_url_complete", redirectURLComplete)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clerk: decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	return req, nil
}

// decodeError turns a non-2xx provider response into *idp.Error. Only the
// provider's human-readable message survives; callers must not expose more.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && len(er.Errors) > 0 {
		return &idp.Error{Code: er.Errors[0].Code, Message: er.Errors[0].Message}
	}
	return &idp.Error{
		Code:    fmt.Sprintf("http_%d", resp.StatusCode),
		Message: "identity provider request failed",
	}
}
