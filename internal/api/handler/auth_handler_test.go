package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/api/middleware"
	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

// newContext builds a context for method and target with a JSON body and the
// validator installed. A non-nil user is attached as the caller.
func newContext(method, target, body string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.UserKey, user)
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields[field]; !ok {
		t.Fatalf("expected error on %q, got %v", field, ve.Fields)
	}
}

type stubAuthService struct {
	signupFn func(ctx context.Context, username, email string) (*ports.SignupResult, error)
	tokenFn  func(ctx context.Context, username, code string) (string, error)
}

func (s *stubAuthService) Signup(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	return s.signupFn(ctx, username, email)
}

func (s *stubAuthService) CreateToken(ctx context.Context, username, code string) (string, error) {
	return s.tokenFn(ctx, username, code)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			if username != "alice" || email != "alice@example.com" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return &ports.SignupResult{Username: username, Email: email}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/v1/auth/signup/", `{"username":"alice","email":"alice@example.com"}`, nil)
	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["username"] != "alice" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["confirmation_code"]; leaked {
		t.Fatalf("response must not carry the code")
	}
}

func TestAuthHandler_Signup_ReservedUsername(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup/", `{"username":"me","email":"me@example.com"}`, nil)
	assertValidation(t, handler.Signup(c), "username")
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup/", `{}`, nil)
	err := handler.Signup(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields["username"]) == 0 || len(ve.Fields["email"]) == 0 {
		t.Fatalf("expected both fields reported, got %v", ve.Fields)
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, username, email string) (*ports.SignupResult, error) {
			return nil, domain.NewUserConflict(true, false)
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup/", `{"username":"bob","email":"other@example.com"}`, nil)
	var ce *domain.ConflictError
	if err := handler.Signup(c); !errors.As(err, &ce) || !ce.Has("username") {
		t.Fatalf("expected username conflict, got %v", err)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/api/v1/auth/signup/", "not-json", nil)
	var he *echo.HTTPError
	if err := handler.Signup(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 http error, got %v", err)
	}
}

func TestAuthHandler_Token_Success(t *testing.T) {
	stub := &stubAuthService{
		tokenFn: func(ctx context.Context, username, code string) (string, error) {
			if username != "alice" || code != "abc-123" {
				t.Fatalf("unexpected args: %s %s", username, code)
			}
			return "token123", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/v1/auth/token/", `{"username":"alice","confirmation_code":"abc-123"}`, nil)
	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["access"] != "token123" {
		t.Fatalf("expected access token, got %+v", resp)
	}
}

func TestAuthHandler_Token_Errors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"invalid code", domain.ErrInvalidCode},
		{"unknown user", domain.ErrUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAuthService{
				tokenFn: func(ctx context.Context, username, code string) (string, error) {
					return "", tc.err
				},
			}
			c, _ := newContext(http.MethodPost, "/api/v1/auth/token/", `{"username":"alice","confirmation_code":"x"}`, nil)
			if err := NewAuthHandler(stub).Token(c); !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestAuthHandler_Token_MissingCode(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newContext(http.MethodPost, "/api/v1/auth/token/", `{"username":"alice"}`, nil)
	assertValidation(t, handler.Token(c), "confirmation_code")
}
