package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bhargavsatvara/zyqora-storefront/internal/auth"
	pkgerrors "github.com/bhargavsatvara/zyqora-storefront/pkg/errors"
	"github.com/bhargavsatvara/zyqora-storefront/pkg/types"
)

type stubAuthService struct {
	view       *auth.SessionView
	err        error
	login      auth.LoginRequest
	resetToken string
	loggedOut  string
}

func (s *stubAuthService) Login(_ context.Context, _ string, req auth.LoginRequest) (*auth.SessionView, error) {
	s.login = req
	return s.view, s.err
}

func (s *stubAuthService) Signup(context.Context, string, auth.SignupRequest) (*auth.SessionView, error) {
	return s.view, s.err
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = sessionID
	return s.err
}

func (s *stubAuthService) ForgotPassword(context.Context, auth.ForgotPasswordRequest) error {
	return s.err
}

func (s *stubAuthService) ResetPassword(_ context.Context, token string, _ auth.ResetPasswordRequest) error {
	s.resetToken = token
	return s.err
}

func (s *stubAuthService) Me(context.Context, string) (*auth.SessionView, error) {
	return s.view, s.err
}

func TestAuthLoginReturnsSessionView(t *testing.T) {
	t.Parallel()
	svc := &stubAuthService{view: &auth.SessionView{Authenticated: true, User: &types.User{ID: "u1", Email: "ada@example.com"}}}
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"secret","remember_me":true}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.login.RememberMe {
		t.Fatalf("remember_me not forwarded")
	}
	var view auth.SessionView
	decodeData(t, resp, &view)
	if !view.Authenticated || view.User == nil || view.User.ID != "u1" {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestAuthLoginRejectsBadEmail(t *testing.T) {
	t.Parallel()
	resp := httptest.NewRecorder()
	AuthLogin(&stubAuthService{}, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"nope","password":"secret"}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if env := decodeError(t, resp); env.Error.Details["email"] == nil {
		t.Fatalf("expected email detail, got %+v", env.Error.Details)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	t.Parallel()
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid email or password")}
	resp := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"wrong"}`))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if env := decodeError(t, resp); env.Error.Message != "Invalid email or password" {
		t.Fatalf("expected backend message, got %q", env.Error.Message)
	}
}

func TestAuthLogoutUsesSession(t *testing.T) {
	t.Parallel()
	svc := &stubAuthService{}
	resp := httptest.NewRecorder()
	AuthLogout(svc, nil).ServeHTTP(resp, newSessionRequest(http.MethodPost, "/api/v1/auth/logout", ""))

	if resp.Code != http.StatusNoContent || svc.loggedOut != "sess-1" {
		t.Fatalf("expected 204 for sess-1, got %d %q", resp.Code, svc.loggedOut)
	}
}

func TestAuthResetPasswordReadsTokenFromPath(t *testing.T) {
	t.Parallel()
	svc := &stubAuthService{}
	req := withURLParams(newSessionRequest(http.MethodPost, "/api/v1/auth/reset-password/tok123", `{"password":"secret1","confirm_password":"secret1"}`), "token", "tok123")
	resp := httptest.NewRecorder()
	AuthResetPassword(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || svc.resetToken != "tok123" {
		t.Fatalf("expected token forwarded, got %d %q", resp.Code, svc.resetToken)
	}
}

func TestAuthMeGuest(t *testing.T) {
	t.Parallel()
	resp := httptest.NewRecorder()
	AuthMe(&stubAuthService{view: &auth.SessionView{}}, nil).ServeHTTP(resp, newSessionRequest(http.MethodGet, "/api/v1/auth/me", ""))

	var view auth.SessionView
	decodeData(t, resp, &view)
	if view.Authenticated || view.User != nil {
		t.Fatalf("expected guest view, got %+v", view)
	}
}
