package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/common"
	"bakeshop/internal/models"
	"bakeshop/internal/services"
)

// Matches the message shown to staff when a product name is taken.
const duplicateProductMessage = "There is already a product with that name. Please select a unique name for the product."

const maxPriceCents = 100000000 // $1,000,000

// ProductHandlers handles HTTP requests for the product catalog.
type ProductHandlers struct {
	productService services.ProductService
}

func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	filter := common.SanitizeSearchQuery(c.QueryParam("q"))

	products, err := h.productService.FindAnyMatching(ctx, filter, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list products")
	}
	total, err := h.productService.CountAnyMatching(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to count products")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products":    products,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.productService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to load product")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"product": product,
	})
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	var req struct {
		Name       string `json:"name"`
		PriceCents int    `json:"price_cents"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidatePositiveInteger(req.PriceCents, "price_cents", maxPriceCents); err != nil {
		return common.SendValidationError(c, "price_cents", err.Error())
	}

	product := &models.Product{
		Name:       req.Name,
		PriceCents: req.PriceCents,
	}
	if err := h.productService.Create(c.Request().Context(), product); err != nil {
		if errors.Is(err, services.ErrDuplicateProductName) {
			return common.SendConflictError(c, duplicateProductMessage)
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name       string `json:"name"`
		PriceCents int    `json:"price_cents"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if err := common.ValidatePositiveInteger(req.PriceCents, "price_cents", maxPriceCents); err != nil {
		return common.SendValidationError(c, "price_cents", err.Error())
	}

	product := &models.Product{
		ID:         id,
		Name:       req.Name,
		PriceCents: req.PriceCents,
	}
	if err := h.productService.Update(c.Request().Context(), product); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Product")
		case errors.Is(err, services.ErrDuplicateProductName):
			return common.SendConflictError(c, duplicateProductMessage)
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Product")
		case errors.Is(err, services.ErrProductInUse):
			return common.SendConflictError(c, "Product is referenced by existing orders and cannot be deleted")
		}
		return common.SendServerError(c, "Failed to delete product")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
	})
}

// UploadPhoto handles POST /products/:id/photo
func (h *ProductHandlers) UploadPhoto(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return common.SendClientError(c, "A 'photo' file field is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	photoKey, err := h.productService.UploadPhoto(c.Request().Context(), id, file, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product")
		}
		return common.SendServerError(c, "Failed to upload photo")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":   "Photo uploaded successfully",
		"photo_key": photoKey,
	})
}

// GetPhotoURL handles GET /products/:id/photo
func (h *ProductHandlers) GetPhotoURL(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := h.productService.PhotoURL(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product photo")
		}
		return common.SendServerError(c, "Failed to resolve photo URL")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"url": url,
	})
}

// DeletePhoto handles DELETE /products/:id/photo
func (h *ProductHandlers) DeletePhoto(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.productService.DeletePhoto(c.Request().Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Product photo")
		}
		return common.SendServerError(c, "Failed to delete photo")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Photo deleted successfully",
	})
}
