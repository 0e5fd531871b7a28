package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/erp-stock/internal/application/dto"
	"github.com/tu-usuario/erp-stock/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP del catálogo de productos.
type ProductHandler struct {
	products *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create POST /api/products — crea un producto de catálogo.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.products.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/products/:id — producto por ID.
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.products.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/products — listado paginado.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.products.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}
