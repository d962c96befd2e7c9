package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, username, password string) (*domain.Session, error)
	logoutFn  func(ctx context.Context, sid string) error
	resolveFn func(ctx context.Context, sid string) (*domain.Session, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, sid string) error {
	return s.logoutFn(ctx, sid)
}

func (s *stubAuthService) Resolve(ctx context.Context, sid string) (*domain.Session, error) {
	return s.resolveFn(ctx, sid)
}

type stubCookies struct {
	set     *domain.Session
	cleared bool
}

func (s *stubCookies) Set(_ echo.Context, session *domain.Session) error {
	s.set = session
	return nil
}

func (s *stubCookies) Clear(echo.Context) { s.cleared = true }

type stubUserService struct {
	createFn   func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn   func(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, username string) error
	listFn     func(ctx context.Context) ([]*domain.User, error)
	generateFn func(ctx context.Context, url string) (*ports.ViewerCredentials, error)
	viewersFn  func(ctx context.Context, url string) ([]*domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, in)
}

func (s *stubUserService) Delete(ctx context.Context, username string) error {
	return s.deleteFn(ctx, username)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) GenerateViewer(ctx context.Context, url string) (*ports.ViewerCredentials, error) {
	return s.generateFn(ctx, url)
}

func (s *stubUserService) ListViewers(ctx context.Context, url string) ([]*domain.User, error) {
	return s.viewersFn(ctx, url)
}

type stubListingService struct {
	createFn  func(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error)
	updateFn  func(ctx context.Context, in ports.UpdateListingInput) (*domain.Listing, error)
	deleteFn  func(ctx context.Context, url string) error
	listFn    func(ctx context.Context) ([]*domain.Listing, error)
	publicFn  func(ctx context.Context, token string) (*domain.ListingPreview, error)
	detailsFn func(ctx context.Context, p domain.Principal, token string) (*domain.Listing, error)
}

func (s *stubListingService) Create(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	return s.createFn(ctx, in)
}

func (s *stubListingService) Update(ctx context.Context, in ports.UpdateListingInput) (*domain.Listing, error) {
	return s.updateFn(ctx, in)
}

func (s *stubListingService) Delete(ctx context.Context, url string) error {
	return s.deleteFn(ctx, url)
}

func (s *stubListingService) List(ctx context.Context) ([]*domain.Listing, error) {
	return s.listFn(ctx)
}

func (s *stubListingService) GetPublic(ctx context.Context, token string) (*domain.ListingPreview, error) {
	return s.publicFn(ctx, token)
}

func (s *stubListingService) GetDetails(ctx context.Context, p domain.Principal, token string) (*domain.Listing, error) {
	return s.detailsFn(ctx, p, token)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p domain.Principal) {
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), p)))
}

