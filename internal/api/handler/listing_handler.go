package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luckyhouse/listing-api/internal/core/ports"
)

type ListingHandler struct {
	listingService ports.ListingService
}

func NewListingHandler(listingService ports.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// Create stores a listing; photos are normalised before persisting.
//
// @Summary      Create listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createListingRequest  true  "New listing"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Router       /admin/listing/create [post]
func (h *ListingHandler) Create(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	_, err := h.listingService.Create(c.Request().Context(), ports.CreateListingInput{
		URL:         listingKey(req.URL, req.ID),
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Photos:      req.Photos,
		Open:        req.Open,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Listing created successfully"})
}

// Update replaces a listing's fields. description, photos and open are kept
// when absent from the body.
//
// @Summary      Update listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      updateListingRequest  true  "Listing fields"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /admin/listing/update [post]
func (h *ListingHandler) Update(c echo.Context) error {
	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	_, err := h.listingService.Update(c.Request().Context(), ports.UpdateListingInput{
		URL:         listingKey(req.URL, req.ID),
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Photos:      req.Photos,
		Open:        req.Open,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Listing updated successfully"})
}

// Delete removes a listing.
//
// @Summary      Delete listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      deleteListingRequest  true  "Listing to delete"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /admin/listing/delete [post]
func (h *ListingHandler) Delete(c echo.Context) error {
	var req deleteListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}

	if err := h.listingService.Delete(c.Request().Context(), listingKey(req.URL, req.ID)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Listing deleted successfully"})
}

// List returns every listing.
//
// @Summary      List listings
// @Tags         admin
// @Produce      json
// @Success      200  {array}  listingResponse
// @Router       /admin/listing/get [get]
func (h *ListingHandler) List(c echo.Context) error {
	listings, err := h.listingService.List(c.Request().Context())
	if err != nil {
		return err
	}
	resp := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, toListingResponse(l))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPublic returns the unauthenticated preview of a listing.
//
// @Summary      Listing preview
// @Tags         listing
// @Produce      json
// @Param        token  path      string  true  "Listing URL token"
// @Success      200    {object}  listingPreviewResponse
// @Failure      404    {object}  messageResponse
// @Router       /listing/{token} [get]
func (h *ListingHandler) GetPublic(c echo.Context) error {
	preview, err := h.listingService.GetPublic(c.Request().Context(), c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingPreviewResponse{Name: preview.Name, PreviewPhoto: preview.PreviewPhoto})
}

// GetDetails returns the full listing to admins and to the viewer bound to it.
//
// @Summary      Listing details
// @Tags         listing
// @Produce      json
// @Param        token  path      string  true  "Listing URL token"
// @Success      200    {object}  listingResponse
// @Failure      401    {object}  messageResponse
// @Failure      403    {object}  messageResponse
// @Failure      404    {object}  messageResponse
// @Router       /listing/{token}/details [get]
func (h *ListingHandler) GetDetails(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	listing, err := h.listingService.GetDetails(c.Request().Context(), p, c.Param("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(listing))
}
