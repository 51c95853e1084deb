package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mercadito/marketplace-api/internal/core/domain"
)

type stubTokens struct {
	identities map[string]domain.Identity
	expired    map[string]bool
}

func (s stubTokens) Issue(subjectID, role string) (string, error) { return subjectID, nil }
func (s stubTokens) TTL() time.Duration { return time.Hour }

func (s stubTokens) Verify(token string) (domain.Identity, error) {
	if s.expired[token] {
		return domain.Identity{}, domain.ErrExpiredToken
	}
	id, ok := s.identities[token]
	if !ok {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	return id, nil
}

var tokens = stubTokens{
	identities: map[string]domain.Identity{
		"alice-token": {SubjectID: "alice", Role: domain.RoleAdmin},
		"bob-token":   {SubjectID: "bob", Role: domain.RoleUser},
	},
	expired: map[string]bool{"old-token": true},
}

func newCtx(cookie string) (echo.Context, *httptest.ResponseRecorder, *echo.Echo) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, e
}

func TestRequireIdentity_ValidToken(t *testing.T) {
	c, rec, _ := newCtx("alice-token")

	called := false
	handler := RequireIdentity(tokens)(func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		if !ok || id.SubjectID != "alice" || id.Role != domain.RoleAdmin {
			t.Fatalf("identity not set: %+v", id)
		}
		if _, ok := IdentityFromContext(c.Request().Context()); !ok {
			t.Fatalf("identity not set on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireIdentity_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		cookie  string
		message string
	}{
		{"missing cookie", "", "User not logged in"},
		{"unknown token", "forged", "Invalid token"},
		{"expired token", "old-token", "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, e := newCtx(tt.cookie)

			handler := RequireIdentity(tokens)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			err := handler(c)
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected *echo.HTTPError, got %v", err)
			}
			if he.Message != tt.message {
				t.Errorf("expected message %q, got %v", tt.message, he.Message)
			}
			e.HTTPErrorHandler(err, c)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestOptionalIdentity(t *testing.T) {
	for cookie, wantSubject := range map[string]string{
		"bob-token": "bob",
		"forged":    "",
		"":          "",
	} {
		c, rec, _ := newCtx(cookie)

		handler := OptionalIdentity(tokens)(func(c echo.Context) error {
			id, _ := IdentityFrom(c)
			if id.SubjectID != wantSubject {
				t.Errorf("cookie %q: expected subject %q, got %q", cookie, wantSubject, id.SubjectID)
			}
			return c.NoContent(http.StatusOK)
		})

		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("cookie %q: expected 200, got %d", cookie, rec.Code)
		}
	}
}
