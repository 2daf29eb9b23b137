package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash should not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestTokenIssuer_IssueVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-signing-key-needs-enough-bytes"), "clinicore", time.Hour)

	token, err := issuer.Issue("DOC123", "doctor")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "DOC123" {
		t.Errorf("subject = %q, want DOC123", claims.Subject)
	}
	if claims.Role != "doctor" {
		t.Errorf("role = %q, want doctor", claims.Role)
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-signing-key-needs-enough-bytes"), "clinicore", -time.Minute)

	token, err := issuer.Issue("PAT1", "patient")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenIssuer_RejectsWrongKey(t *testing.T) {
	a := NewTokenIssuer([]byte("key-one-key-one-key-one-key-one!"), "clinicore", time.Hour)
	b := NewTokenIssuer([]byte("key-two-key-two-key-two-key-two!"), "clinicore", time.Hour)

	token, err := a.Issue("PAT1", "patient")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("expected token signed with other key to be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-signing-key-needs-enough-bytes"), "clinicore", time.Hour)
	e := echo.New()

	handler := RequireAuth(issuer)(func(c echo.Context) error {
		return c.String(http.StatusOK, SubjectFromContext(c.Request().Context()))
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		err := handler(c)
		if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, _ := issuer.Issue("HOSP9", "hospital")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Body.String() != "HOSP9" {
			t.Errorf("subject = %q, want HOSP9", rec.Body.String())
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		c := e.NewContext(req, httptest.NewRecorder())
		err := handler(c)
		if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %v", err)
		}
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := RequireRole("doctor", "hospital")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("auth_role", "doctor")
	if err := handler(c); err != nil {
		t.Errorf("doctor should be allowed: %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("auth_role", "patient")
	err := handler(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for patient, got %v", err)
	}
}
