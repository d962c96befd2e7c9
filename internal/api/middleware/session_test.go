package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

func TestSessionCodec_RoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret")
	token, err := codec.Encode("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	sid, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sid != "sid-1" {
		t.Fatalf("expected sid-1, got %q", sid)
	}
}

func TestSessionCodec_RejectsWrongSecret(t *testing.T) {
	token, _ := NewSessionCodec("secret").Encode("sid-1", time.Now().Add(time.Hour))
	if _, err := NewSessionCodec("other").Decode(token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestSessionCodec_RejectsExpired(t *testing.T) {
	codec := NewSessionCodec("secret")
	token, _ := codec.Encode("sid-1", time.Now().Add(-time.Minute))
	if _, err := codec.Decode(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestSessionCodec_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sid": "sid-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := NewSessionCodec("secret").Decode(signed); err == nil {
		t.Fatalf("expected error for HS512 token")
	}
}

func TestSessionCookies_SetAndRead(t *testing.T) {
	e := echo.New()
	cookies := NewSessionCookies(NewSessionCodec("secret"), CookieConfig{Name: "sess", Secure: true})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil), rec)
	if err := cookies.Set(c, &domain.Session{ID: "sid-9", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("set cookie: %v", err)
	}

	header := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"sess=", "HttpOnly", "Secure", "SameSite=Lax", "Path=/"} {
		if !strings.Contains(header, want) {
			t.Fatalf("Set-Cookie %q missing %q", header, want)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", strings.SplitN(header, ";", 2)[0])
	c = e.NewContext(req, httptest.NewRecorder())
	sid, err := cookies.SessionID(c)
	if err != nil {
		t.Fatalf("read cookie: %v", err)
	}
	if sid != "sid-9" {
		t.Fatalf("expected sid-9, got %q", sid)
	}
}

func TestSessionCookies_Clear(t *testing.T) {
	e := echo.New()
	cookies := NewSessionCookies(NewSessionCodec("secret"), CookieConfig{})
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), rec)

	cookies.Clear(c)

	header := rec.Header().Get("Set-Cookie")
	if !strings.HasPrefix(header, "session=;") || !strings.Contains(header, "Max-Age=0") {
		t.Fatalf("expected expired cookie, got %q", header)
	}
}
