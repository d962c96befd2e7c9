package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
)

var errInvalidCookie = errors.New("invalid session cookie")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies the session cookie value. The cookie only
// names the server-side session; it carries no role or identity.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), now: time.Now}
}

// Encode returns an HS256 token naming sessionID and expiring at expires.
func (c *SessionCodec) Encode(sessionID string, expires time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

// Decode verifies token and returns the session id it names.
func (c *SessionCodec) Decode(token string) (string, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid || claims.SessionID == "" {
		return "", errInvalidCookie
	}
	return claims.SessionID, nil
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

// SessionCookies reads and writes the signed session cookie.
type SessionCookies struct {
	codec *SessionCodec
	cfg   CookieConfig
}

func NewSessionCookies(codec *SessionCodec, cfg CookieConfig) *SessionCookies {
	if cfg.Name == "" {
		cfg.Name = "session"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &SessionCookies{codec: codec, cfg: cfg}
}

// Set writes the cookie for session s.
func (sc *SessionCookies) Set(c echo.Context, s *domain.Session) error {
	value, err := sc.codec.Encode(s.ID, s.ExpiresAt)
	if err != nil {
		return err
	}
	c.SetCookie(sc.cookie(value, s.ExpiresAt, int(time.Until(s.ExpiresAt).Seconds())))
	return nil
}

// Clear expires the cookie in the browser.
func (sc *SessionCookies) Clear(c echo.Context) {
	c.SetCookie(sc.cookie("", time.Unix(0, 0), -1))
}

// SessionID returns the verified session id from the request cookie.
func (sc *SessionCookies) SessionID(c echo.Context) (string, error) {
	ck, err := c.Cookie(sc.cfg.Name)
	if err != nil || ck.Value == "" {
		return "", http.ErrNoCookie
	}
	return sc.codec.Decode(ck.Value)
}

func (sc *SessionCookies) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sc.cfg.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sc.cfg.Secure,
		SameSite: sc.cfg.SameSite,
	}
}
