package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestLogger_LogsFinalStatus(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(http.StatusTeapot, map[string]string{"message": err.Error()})
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

	boom := errors.New("boom")
	handler := RequestLogger(zerolog.New(&buf))(func(c echo.Context) error {
		return boom
	})
	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected handler error passed upstream, got %v", err)
	}
	if rec.Code != http.StatusTeapot || !c.Response().Committed {
		t.Fatalf("expected error rendered with 418, got %d", rec.Code)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if line["status"] != float64(http.StatusTeapot) || line["method"] != "GET" || line["path"] != "/x" {
		t.Fatalf("unexpected log fields: %v", line)
	}
	if line["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", line["level"])
	}
}

func TestRequestLogger_ServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/y", nil), rec)

	handler := RequestLogger(zerolog.New(&buf))(func(c echo.Context) error {
		return c.NoContent(http.StatusServiceUnavailable)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if line["level"] != "error" || line["status"] != float64(http.StatusServiceUnavailable) {
		t.Fatalf("unexpected log fields: %v", line)
	}
}
