package clerk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"community-platform/backend/internal/idp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "sk_test_secret")
}

func TestCurrentPrincipal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("path = %s, want /me", r.URL.Path)
		}
		if got := r.Header.Get("X-Session-Token"); got != "sess-tok" {
			t.Errorf("X-Session-Token = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_secret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "user_1", "email_address": "jane@example.com",
			"first_name": "Jane", "last_name": "Doe", "image_url": "img",
		})
	})

	p, err := c.CurrentPrincipal(context.Background(), "sess-tok")
	if err != nil {
		t.Fatalf("CurrentPrincipal: %v", err)
	}
	if p.ID != "user_1" || p.Email != "jane@example.com" || p.Firstname != "Jane" || p.ImageURL != "img" {
		t.Errorf("principal = %+v", p)
	}
}

func TestCurrentPrincipalUnknownSession(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		p, err := c.CurrentPrincipal(context.Background(), "stale")
		if err != nil || p != nil {
			t.Errorf("status %d: got (%v, %v), want (nil, nil)", status, p, err)
		}
	}
}

func TestCurrentPrincipalEmptyToken(t *testing.T) {
	c := New("http://unreachable.invalid", "sk")
	p, err := c.CurrentPrincipal(context.Background(), "")
	if err != nil || p != nil {
		t.Fatalf("empty token: got (%v, %v), want (nil, nil) without a request", p, err)
	}
}

func TestCreateCredentialSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sign_ins" || r.Method != http.MethodPost {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["identifier"] != "jane@example.com" || body["password"] != "password1" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "complete", "created_session_id": "sess_1", "user_id": "user_1",
		})
	})

	attempt, err := c.CreateCredentialSession(context.Background(), "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("CreateCredentialSession: %v", err)
	}
	if attempt.Status != idp.StatusComplete || attempt.SessionID != "sess_1" || attempt.UserID != "user_1" {
		t.Errorf("attempt = %+v", attempt)
	}
}

func TestCreateCredentialSessionRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{
				{"code": "form_password_incorrect", "message": "Password is incorrect."},
			},
		})
	})

	_, err := c.CreateCredentialSession(context.Background(), "jane@example.com", "wrong")
	pErr, ok := err.(*idp.Error)
	if !ok {
		t.Fatalf("err = %v, want *idp.Error", err)
	}
	if pErr.Code != "form_password_incorrect" || pErr.Message != "Password is incorrect." {
		t.Errorf("pErr = %+v", pErr)
	}
}

func TestSignUpVerificationRoundTrip(t *testing.T) {
	var prepared bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sign_ups":
			json.NewEncoder(w).Encode(map[string]string{"id": "sua_1", "status": "missing_requirements"})
		case "/sign_ups/sua_1/prepare_verification":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["strategy"] != "email_code" {
				t.Errorf("strategy = %q", body["strategy"])
			}
			prepared = true
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("{}"))
		case "/sign_ups/sua_1/attempt_verification":
			json.NewEncoder(w).Encode(map[string]string{
				"id": "sua_1", "status": "complete",
				"created_user_id": "user_1", "created_session_id": "sess_1",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	attempt, err := c.PreCreateAccount(ctx, "jane@example.com", "password1")
	if err != nil {
		t.Fatalf("PreCreateAccount: %v", err)
	}
	if attempt.SignUpID != "sua_1" {
		t.Fatalf("SignUpID = %q", attempt.SignUpID)
	}
	if err := c.RequestCodeChallenge(ctx, attempt.SignUpID); err != nil {
		t.Fatalf("RequestCodeChallenge: %v", err)
	}
	if !prepared {
		t.Error("prepare_verification never called")
	}
	verified, err := c.AttemptCodeVerification(ctx, attempt.SignUpID, "424242")
	if err != nil {
		t.Fatalf("AttemptCodeVerification: %v", err)
	}
	if verified.Status != idp.StatusComplete || verified.CreatedUserID != "user_1" || verified.SessionID != "sess_1" {
		t.Errorf("verified = %+v", verified)
	}
}

func TestActivateSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/sess_1/activate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte("{}"))
	})
	if err := c.ActivateSession(context.Background(), "sess_1"); err != nil {
		t.Fatalf("ActivateSession: %v", err)
	}
}

func TestOAuthRedirectURL(t *testing.T) {
	c := New("https://api.clerk.example.com", "sk")
	u, err := c.OAuthRedirectURL(idp.StrategyGoogle, "/callback", "/callback/complete")
	if err != nil {
		t.Fatalf("OAuthRedirectURL: %v", err)
	}
	for _, want := range []string{"strategy=oauth_google", "redirect_url=%2Fcallback", "redirect_url_complete=%2Fcallback%2Fcomplete"} {
		if !strings.Contains(u, want) {
			t.Errorf("url %q missing %q", u, want)
		}
	}

	if _, err := c.OAuthRedirectURL("", "/callback", "/done"); err == nil {
		t.Error("empty strategy accepted")
	}
}

func TestDecodeErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := c.ActivateSession(context.Background(), "sess_1")
	pErr, ok := err.(*idp.Error)
	if !ok {
		t.Fatalf("err = %v, want *idp.Error", err)
	}
	if pErr.Code != "http_502" {
		t.Errorf("code = %q, want http_502", pErr.Code)
	}
}
