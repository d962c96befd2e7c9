package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/luckyhouse/listing-api/internal/api/middleware"
	"github.com/luckyhouse/listing-api/internal/core/service"
	"github.com/luckyhouse/listing-api/internal/infrastructure/db/memory"
	"github.com/luckyhouse/listing-api/internal/infrastructure/imaging"
	"github.com/luckyhouse/listing-api/internal/infrastructure/security"
)

type testServer struct {
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	users := memory.NewUserRepository()
	listings := memory.NewListingRepository()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)

	authService := service.NewAuthService(users, memory.NewSessionStore(), hasher, memory.NewLoginThrottle(),
		service.AuthConfig{MaxLoginAttempts: 5}, log)
	userService := service.NewUserService(users, listings, hasher, log)
	listingService := service.NewListingService(listings, imaging.New(imaging.DefaultConfig(), log), log)

	if _, err := userService.EnsureAdmin(context.Background(), "admin", "adminpw"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	e := NewRouter(Deps{
		Log:         log,
		Auth:        authService,
		Users:       userService,
		Listings:    listingService,
		Cookies:     middleware.NewSessionCookies(middleware.NewSessionCodec("test-secret"), middleware.CookieConfig{}),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{e: e}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) (*http.Cookie, *httptest.ResponseRecorder) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login",
		`{"username":"`+username+`","password":"`+password+`"}`, nil)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c, rec
		}
	}
	return nil, rec
}

func (s *testServer) mustLogin(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	cookie, rec := s.login(t, username, password)
	if cookie == nil {
		t.Fatalf("login %s failed: %d %s", username, rec.Code, rec.Body.String())
	}
	return cookie
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["message"].(string)
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d: %s", code, rec.Code, rec.Body.String())
	}
	if msg != "" {
		if got := message(t, rec); got != msg {
			t.Fatalf("expected message %q, got %q", msg, got)
		}
	}
}

func TestScenario_CreateUserTwice(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")
	body := `{"username":"bob","password":"pw123","user_type":"tenant"}`

	expect(t, s.do(t, http.MethodPost, "/admin/user/create", body, admin), http.StatusOK, "User created successfully")
	expect(t, s.do(t, http.MethodPost, "/admin/user/create", body, admin), http.StatusConflict, "User already exists")

	rec := s.do(t, http.MethodGet, "/admin/user/get", "", admin)
	expect(t, rec, http.StatusOK, "")
	list := decode[[]map[string]any](t, rec)
	bobs := 0
	for _, u := range list {
		if u["username"] == "bob" {
			bobs++
		}
		if _, ok := u["password_hash"]; ok {
			t.Fatalf("password hash leaked: %v", u)
		}
	}
	if bobs != 1 {
		t.Fatalf("expected exactly one bob, got %d", bobs)
	}
}

func TestScenario_CreateThenLoginReturnsRole(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"carol","password":"pw","user_type":"customer"}`, admin), http.StatusOK, "")

	cookie, rec := s.login(t, "carol", "pw")
	if cookie == nil {
		t.Fatalf("login failed: %s", rec.Body.String())
	}
	resp := decode[map[string]string](t, rec)
	if resp["message"] != "Login successful" || resp["user_type"] != "tenant" {
		t.Fatalf("unexpected login response: %v", resp)
	}

	me := decode[map[string]string](t, s.do(t, http.MethodGet, "/check_user", "", cookie))
	if me["user_type"] != "tenant" {
		t.Fatalf("expected tenant, got %v", me)
	}
}

func TestScenario_InvalidRoleRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"dave","password":"pw","user_type":"superuser"}`, admin), http.StatusBadRequest, "Invalid user type")
	expect(t, s.do(t, http.MethodPost, "/admin/user/update",
		`{"username":"dave","user_type":"viewer"}`, admin), http.StatusNotFound, "User does not exist")
}

func TestScenario_OverlongPasswordRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")
	long := strings.Repeat("x", 80)

	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"erin","password":"`+long+`","user_type":"tenant"}`, admin),
		http.StatusBadRequest, "password must be at most 72 bytes")
	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"erin","password":"pw","user_type":"tenant"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodPost, "/admin/user/update",
		`{"username":"erin","password":"`+long+`"}`, admin),
		http.StatusBadRequest, "password must be at most 72 bytes")
}

func TestScenario_LoginFailuresIndistinguishable(t *testing.T) {
	s := newTestServer(t)

	_, wrong := s.login(t, "admin", "nope")
	_, missing := s.login(t, "nobody", "nope")

	expect(t, wrong, http.StatusUnauthorized, "Invalid credentials")
	expect(t, missing, http.StatusUnauthorized, "Invalid credentials")
	if wrong.Body.String() != missing.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrong.Body.String(), missing.Body.String())
	}
}

func TestScenario_AdminRoutesForbidNonAdmins(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")
	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"erin","password":"pw","user_type":"tenant"}`, admin), http.StatusOK, "")
	tenant := s.mustLogin(t, "erin", "pw")

	routes := []struct{ method, path string }{
		{http.MethodPost, "/admin/user/create"},
		{http.MethodPost, "/admin/user/update"},
		{http.MethodPost, "/admin/user/delete"},
		{http.MethodGet, "/admin/user/get"},
		{http.MethodPost, "/admin/listing/create"},
		{http.MethodPost, "/admin/listing/update"},
		{http.MethodPost, "/admin/listing/delete"},
		{http.MethodGet, "/admin/listing/get"},
		{http.MethodPost, "/admin/listing/beach/viewer"},
		{http.MethodGet, "/admin/listing/beach/viewers"},
	}
	for _, r := range routes {
		expect(t, s.do(t, r.method, r.path, "", tenant), http.StatusForbidden, "Forbidden")
		expect(t, s.do(t, r.method, r.path, "", nil), http.StatusUnauthorized, "Unauthorized")
	}
}

func tinyPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestScenario_ViewerScoping(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"url":"beach","name":"Beach House","address":"1 Shore Rd","photos":["`+tinyPNG(t)+`"],"open":true}`, admin),
		http.StatusOK, "Listing created successfully")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"url":"cabin","name":"Cabin","address":"2 Hill"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"url":"cabin","name":"Cabin","address":"2 Hill"}`, admin), http.StatusConflict, "Listing URL already exists")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"url":"x","address":"2 Hill"}`, admin), http.StatusBadRequest, "Missing required field: name")

	rec := s.do(t, http.MethodPost, "/admin/listing/beach/viewer", "", admin)
	expect(t, rec, http.StatusCreated, "Viewer created successfully")
	creds := decode[map[string]string](t, rec)

	viewer := s.mustLogin(t, creds["username"], creds["password"])

	viewers := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/admin/listing/beach/viewers", "", admin))
	if len(viewers) != 1 || viewers[0]["username"] != creds["username"] {
		t.Fatalf("unexpected viewers: %v", viewers)
	}
	if _, ok := viewers[0]["password"]; ok {
		t.Fatalf("viewer password leaked: %v", viewers[0])
	}
	expect(t, s.do(t, http.MethodGet, "/admin/listing/ghost/viewers", "", admin), http.StatusNotFound, "Listing not found")
	expect(t, s.do(t, http.MethodGet, "/admin/listing/beach/viewers", "", viewer), http.StatusForbidden, "Forbidden")

	rec = s.do(t, http.MethodGet, "/listing/beach/details", "", viewer)
	expect(t, rec, http.StatusOK, "")
	details := decode[map[string]any](t, rec)
	photos := details["photos"].([]any)
	if len(photos) != 1 || !strings.HasPrefix(photos[0].(string), "data:image/jpeg;base64,") {
		t.Fatalf("photo not normalised: %v", photos)
	}

	expect(t, s.do(t, http.MethodGet, "/listing/cabin/details", "", viewer), http.StatusForbidden, "Forbidden")
	expect(t, s.do(t, http.MethodGet, "/listing/cabin/details", "", admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/listing/cabin/details", "", nil), http.StatusUnauthorized, "Unauthorized")
	expect(t, s.do(t, http.MethodGet, "/listing/ghost/details", "", admin), http.StatusNotFound, "Listing not found")

	preview := decode[map[string]any](t, s.do(t, http.MethodGet, "/listing/cabin", "", nil))
	if preview["name"] != "Cabin" || preview["preview_photo"] != nil {
		t.Fatalf("unexpected preview: %v", preview)
	}
	expect(t, s.do(t, http.MethodGet, "/listing/ghost", "", nil), http.StatusNotFound, "Listing not found")
}

func TestScenario_AccountChangesApplyToLiveSessions(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"url":"beach","name":"Beach House","address":"1 Shore Rd"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"v","password":"pw","user_type":"viewer","listing_url":"beach"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodPost, "/admin/user/create",
		`{"username":"t","password":"pw","user_type":"admin"}`, admin), http.StatusOK, "")

	viewer := s.mustLogin(t, "v", "pw")
	second := s.mustLogin(t, "t", "pw")
	expect(t, s.do(t, http.MethodGet, "/listing/beach/details", "", viewer), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/admin/user/get", "", second), http.StatusOK, "")

	expect(t, s.do(t, http.MethodPost, "/admin/user/delete", `{"username":"v"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/listing/beach/details", "", viewer), http.StatusUnauthorized, "Unauthorized")

	expect(t, s.do(t, http.MethodPost, "/admin/user/update",
		`{"username":"t","user_type":"tenant"}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/admin/user/get", "", second), http.StatusForbidden, "Forbidden")
}

func TestScenario_LogoutThenUnauthorized(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/auth/logout", "", admin), http.StatusOK, "Logout successful")
	expect(t, s.do(t, http.MethodGet, "/admin/user/get", "", admin), http.StatusUnauthorized, "Unauthorized")
	expect(t, s.do(t, http.MethodPost, "/auth/logout", "", admin), http.StatusUnauthorized, "Unauthorized")

	me := decode[map[string]string](t, s.do(t, http.MethodGet, "/auth/user", "", admin))
	if me["user_type"] != "guest" {
		t.Fatalf("expected guest after logout, got %v", me)
	}
}

func TestScenario_ListingLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.mustLogin(t, "admin", "adminpw")

	expect(t, s.do(t, http.MethodPost, "/admin/listing/create",
		`{"id":"loft","name":"Loft","address":"3 Main","description":"bright","open":true}`, admin), http.StatusOK, "")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/update",
		`{"url":"loft","name":"Loft 2","address":"3 Main"}`, admin), http.StatusOK, "Listing updated successfully")

	list := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/admin/listing/get", "", admin))
	if len(list) != 1 || list[0]["name"] != "Loft 2" || list[0]["description"] != "bright" || list[0]["open"] != true {
		t.Fatalf("unexpected listings: %v", list)
	}

	expect(t, s.do(t, http.MethodPost, "/admin/listing/delete", `{"url":"loft"}`, admin), http.StatusOK, "Listing deleted successfully")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/delete", `{"url":"loft"}`, admin), http.StatusNotFound, "Listing not found")
	expect(t, s.do(t, http.MethodPost, "/admin/listing/update",
		`{"url":"loft","name":"Loft","address":"3 Main"}`, admin), http.StatusNotFound, "Listing not found")
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	expect(t, s.do(t, http.MethodGet, "/health", "", nil), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/health/ready", "", nil), http.StatusOK, "")
	expect(t, s.do(t, http.MethodGet, "/admin/user/get", "", nil), http.StatusUnauthorized, "Unauthorized")

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`listing_http_requests_total{code="401"`,
		`url="/admin/user/get"`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
