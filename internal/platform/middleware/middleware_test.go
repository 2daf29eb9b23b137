package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_Generates(t *testing.T) {
	e := echo.New()
	c, rec := newTestContext(e)

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	rid, _ := c.Get("request_id").(string)
	if rid == "" {
		t.Fatal("expected request_id to be set")
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != rid {
		t.Errorf("response header = %q, want %q", got, rid)
	}
}

func TestRequestID_HonorsIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "upstream-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestID()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rid, _ := c.Get("request_id").(string); rid != "upstream-id" {
		t.Errorf("request_id = %q, want upstream-id", rid)
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	e := echo.New()
	c, _ := newTestContext(e)

	handler := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("boom")
	})

	err := handler(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", httpErr.Code)
	}
}

func TestLogger_PassesThroughError(t *testing.T) {
	e := echo.New()
	c, _ := newTestContext(e)

	want := echo.NewHTTPError(http.StatusBadRequest, "bad input")
	handler := Logger(zerolog.Nop())(func(c echo.Context) error {
		return want
	})

	if err := handler(c); err != want {
		t.Errorf("error = %v, want %v", err, want)
	}
}

func TestRateLimit_RejectsWhenExhausted(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2}

	handler := RateLimit(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	var lastErr error
	for i := 0; i < 3; i++ {
		c, _ := newTestContext(e)
		lastErr = handler(c)
	}

	if lastErr == nil {
		t.Fatal("expected rate limit error on third request")
	}
	httpErr, ok := lastErr.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", lastErr)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", httpErr.Code)
	}
}

func TestRateLimit_SeparateKeys(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1}

	handler := RateLimit(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	first, _ := newTestContext(e)
	first.Set("auth_subject", "user-a")
	if err := handler(first); err != nil {
		t.Fatalf("first subject rejected: %v", err)
	}

	second, _ := newTestContext(e)
	second.Set("auth_subject", "user-b")
	if err := handler(second); err != nil {
		t.Errorf("second subject should have its own bucket: %v", err)
	}
}
