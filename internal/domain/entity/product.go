package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// El costo y la existencia en mano viven en Stock; aquí solo datos de catálogo.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
