package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/permission"
)

func runGuard(policy permission.Policy, method string, user *domain.User) (bool, error) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if user != nil {
		c.Set(UserKey, user)
	}

	called := false
	err := Guard(policy)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestGuard_AdminOnly(t *testing.T) {
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	user := &domain.User{ID: 2, Role: domain.RoleUser}

	if called, err := runGuard(permission.AdminOnly, http.MethodGet, admin); !called || err != nil {
		t.Fatalf("admin must pass: %v", err)
	}
	if _, err := runGuard(permission.AdminOnly, http.MethodGet, user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := runGuard(permission.AdminOnly, http.MethodGet, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_ReadOnlyForAnonymous(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		if called, err := runGuard(permission.AdminOrReadOnly, method, nil); !called || err != nil {
			t.Fatalf("%s must be allowed anonymously: %v", method, err)
		}
	}
	if _, err := runGuard(permission.AdminOrReadOnly, http.MethodPost, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGuard_AuthorPolicyCollectionGate(t *testing.T) {
	stranger := &domain.User{ID: 5, Role: domain.RoleUser}

	if called, err := runGuard(permission.AdminModeratorAuthorOrReadOnly, http.MethodPatch, stranger); !called || err != nil {
		t.Fatalf("authenticated caller must reach the object check: %v", err)
	}
	if _, err := runGuard(permission.AdminModeratorAuthorOrReadOnly, http.MethodDelete, nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
