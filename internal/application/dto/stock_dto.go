package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateStockRequest body para POST /api/stocks.
type CreateStockRequest struct {
	ProductID string `json:"product_id"`
}

// InboundRequest body para POST /api/stocks/inbound.
type InboundRequest struct {
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Reason    string          `json:"reason,omitempty"`
}

// OutboundRequest body para POST /api/stocks/outbound.
// No lleva unit_cost: la salida se costea siempre al promedio vigente del snapshot.
type OutboundRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Reason    string `json:"reason,omitempty"`
}

// AvailabilityRequest body para POST /api/stocks/availability.
type AvailabilityRequest struct {
	ProductID   string `json:"product_id"`
	RequiredQty int    `json:"required_qty"`
}

// AvailabilityResponse resultado de la verificación de disponibilidad.
// Es consultivo: no reserva ni bloquea la cantidad reportada.
type AvailabilityResponse struct {
	ProductID   string `json:"product_id"`
	CurrentQty  int    `json:"current_qty"`
	RequiredQty int    `json:"required_qty"`
	IsAvailable bool   `json:"is_available"`
	ShortageQty int    `json:"shortage_qty"`
}

// StockResponse vista del snapshot de stock.
type StockResponse struct {
	ID        int64           `json:"id"`
	ProductID string          `json:"product_id"`
	Qty       int             `json:"qty"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MovementResponse vista de un movimiento del ledger.
type MovementResponse struct {
	ID        int64           `json:"id"`
	StockID   int64           `json:"stock_id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"movement_type"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdjustmentResponse movimiento creado más el snapshot actualizado.
type AdjustmentResponse struct {
	Movement MovementResponse `json:"movement"`
	Stock    StockResponse    `json:"stock"`
}

// StockSearchRequest body para POST /api/stocks/query (filtros opcionales + paginación).
type StockSearchRequest struct {
	ProductID    string           `json:"product_id,omitempty"`
	MinQty       *int             `json:"min_qty,omitempty"`
	MaxQty       *int             `json:"max_qty,omitempty"`
	MinAvgCost   *decimal.Decimal `json:"min_avg_cost,omitempty"`
	MaxAvgCost   *decimal.Decimal `json:"max_avg_cost,omitempty"`
	MinTotalCost *decimal.Decimal `json:"min_total_cost,omitempty"`
	MaxTotalCost *decimal.Decimal `json:"max_total_cost,omitempty"`
	Page         PageRequest      `json:"page"`
}

// StockPageResponse página de snapshots.
type StockPageResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// MovementSearchRequest body para POST /api/stocks/movements/query.
type MovementSearchRequest struct {
	StockID   int64       `json:"stock_id,omitempty"`
	ProductID string      `json:"product_id,omitempty"`
	Type      string      `json:"movement_type,omitempty"`
	From      *time.Time  `json:"from,omitempty"`
	To        *time.Time  `json:"to,omitempty"`
	Page      PageRequest `json:"page"`
}

// MovementPageResponse página de movimientos.
type MovementPageResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
