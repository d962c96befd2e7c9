package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/domain"
	"github.com/luckyhouse/listing-api/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create adds an account.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New account"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /admin/user/create [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	_, err := h.userService.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.UserType,
		Profile: domain.Profile{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Phone:      req.Phone,
			ListingURL: req.ListingURL,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User created successfully"})
}

// Update changes the supplied fields of an account.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /admin/user/update [post]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// An empty password means "unchanged", matching the admin form.
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	_, err := h.userService.Update(c.Request().Context(), ports.UpdateUserInput{
		Username:   strings.TrimSpace(req.Username),
		Password:   req.Password,
		Role:       req.UserType,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		ListingURL: req.ListingURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User updated successfully"})
}

// Delete removes an account.
//
// @Summary      Delete user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      deleteUserRequest  true  "Account to delete"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /admin/user/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.userService.Delete(c.Request().Context(), strings.TrimSpace(req.Username)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// List returns every account without password hashes.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   userResponse
// @Failure      403  {object}  messageResponse
// @Router       /admin/user/get [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// GenerateViewer creates a viewer account bound to a listing. The generated
// password appears only in this response.
//
// @Summary      Generate viewer credentials
// @Tags         admin
// @Produce      json
// @Param        url  path      string  true  "Listing URL token"
// @Success      201  {object}  viewerResponse
// @Failure      404  {object}  messageResponse
// @Router       /admin/listing/{url}/viewer [post]
func (h *UserHandler) GenerateViewer(c echo.Context) error {
	creds, err := h.userService.GenerateViewer(c.Request().Context(), c.Param("url"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, viewerResponse{
		Message:    "Viewer created successfully",
		Username:   creds.Username,
		Password:   creds.Password,
		ListingURL: creds.ListingURL,
	})
}

// ListViewers returns the viewer accounts generated for a listing. Passwords
// are never included.
//
// @Summary      List viewers of a listing
// @Tags         admin
// @Produce      json
// @Param        url  path      string  true  "Listing URL token"
// @Success      200  {array}   userResponse
// @Failure      404  {object}  messageResponse
// @Router       /admin/listing/{url}/viewers [get]
func (h *UserHandler) ListViewers(c echo.Context) error {
	viewers, err := h.userService.ListViewers(c.Request().Context(), c.Param("url"))
	if err != nil {
		return err
	}
	resp := make([]userResponse, 0, len(viewers))
	for _, u := range viewers {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}
