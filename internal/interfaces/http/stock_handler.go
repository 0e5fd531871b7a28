package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tu-usuario/erp-stock/internal/application/dto"
	appstock "github.com/tu-usuario/erp-stock/internal/application/stock"
	"github.com/tu-usuario/erp-stock/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del núcleo de inventario.
type StockHandler struct {
	adjust       *appstock.AdjustUseCase
	availability *appstock.AvailabilityChecker
	query        *appstock.QueryUseCase
	log          zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(
	adjust *appstock.AdjustUseCase,
	availability *appstock.AvailabilityChecker,
	query *appstock.QueryUseCase,
	log zerolog.Logger,
) *StockHandler {
	return &StockHandler{adjust: adjust, availability: availability, query: query, log: log}
}

// Create POST /api/stocks — crea explícitamente el snapshot vacío para un producto.
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.adjust.CreateStock(c.Context(), in.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockDTO(s))
}

// Inbound POST /api/stocks/inbound — registra una entrada de inventario.
func (h *StockHandler) Inbound(c *fiber.Ctx) error {
	var in dto.InboundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.adjust.AdjustInbound(c.Context(), in.ProductID, in.Qty, in.UnitCost, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().
		Str("product_id", in.ProductID).
		Int("qty", in.Qty).
		Str("movement_type", "IN").
		Msg("movimiento de inventario registrado")
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentDTO(res))
}

// Outbound POST /api/stocks/outbound — registra una salida costeada al promedio vigente.
func (h *StockHandler) Outbound(c *fiber.Ctx) error {
	var in dto.OutboundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.adjust.AdjustOutbound(c.Context(), in.ProductID, in.Qty, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	h.log.Info().
		Str("product_id", in.ProductID).
		Int("qty", in.Qty).
		Str("movement_type", "OUT").
		Msg("movimiento de inventario registrado")
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentDTO(res))
}

// Availability POST /api/stocks/availability — verificación consultiva de disponibilidad.
func (h *StockHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.availability.Check(c.Context(), in.ProductID, in.RequiredQty)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/stocks/:id — snapshot por ID.
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id debe ser numérico", Field: "id"})
	}
	out, err := h.query.GetStock(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByProduct GET /api/stocks/product/:productId — snapshot por producto.
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	out, err := h.query.GetStockByProduct(c.Context(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Search POST /api/stocks/query — búsqueda paginada de snapshots con filtros.
func (h *StockHandler) Search(c *fiber.Ctx) error {
	var in dto.StockSearchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.query.SearchStocks(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock GET /api/stocks/low?threshold=N — snapshots por debajo del umbral.
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", 1)
	out, err := h.query.LowStock(c.Context(), threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// ZeroStock GET /api/stocks/zero — snapshots sin existencias.
func (h *StockHandler) ZeroStock(c *fiber.Ctx) error {
	out, err := h.query.ZeroStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// SearchMovements POST /api/stocks/movements/query — búsqueda paginada del ledger.
func (h *StockHandler) SearchMovements(c *fiber.Ctx) error {
	var in dto.MovementSearchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.query.SearchMovements(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MovementsByProduct GET /api/stocks/product/:productId/movements — historial de un producto.
func (h *StockHandler) MovementsByProduct(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	out, err := h.query.MovementsByProduct(c.Context(), c.Params("productId"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// Delete DELETE /api/stocks/:id — elimina un snapshot (solo con qty=0).
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id debe ser numérico", Field: "id"})
	}
	if err := h.adjust.DeleteStock(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toStockDTO(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		Qty:       s.Qty,
		AvgCost:   s.AvgCost,
		TotalCost: s.TotalCost,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toAdjustmentDTO(res *appstock.AdjustmentResult) dto.AdjustmentResponse {
	m := res.Movement
	return dto.AdjustmentResponse{
		Movement: dto.MovementResponse{
			ID:        m.ID,
			StockID:   m.StockID,
			ProductID: m.ProductID,
			Type:      string(m.Type),
			Qty:       m.Qty,
			UnitCost:  m.UnitCost,
			TotalCost: m.TotalCost,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		},
		Stock: toStockDTO(res.Stock),
	}
}
