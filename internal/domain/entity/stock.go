package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el snapshot de inventario de un producto (una fila por producto).
// TotalCost debe ser siempre AvgCost * Qty (tolerancia de un centavo por redondeo).
// Solo lo muta el coordinador de ajustes dentro de una transacción.
type Stock struct {
	ID        int64
	ProductID string
	Qty       int
	AvgCost   decimal.Decimal // costo promedio ponderado, 2 decimales
	TotalCost decimal.Decimal // valor del inventario en mano, 2 decimales
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStock crea un snapshot vacío para un producto (qty=0, costos en 0).
func NewStock(productID string, now time.Time) *Stock {
	return &Stock{
		ProductID: productID,
		Qty:       0,
		AvgCost:   decimal.Zero,
		TotalCost: decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
