package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/erp-stock/internal/domain/entity"
)

// StockSearchFilter filtros opcionales para búsqueda paginada de snapshots.
type StockSearchFilter struct {
	ProductID    string
	MinQty       *int
	MaxQty       *int
	MinAvgCost   *decimal.Decimal
	MaxAvgCost   *decimal.Decimal
	MinTotalCost *decimal.Decimal
	MaxTotalCost *decimal.Decimal
}

// StockRepository define el puerto para leer/escribir snapshots de stock (DIP).
// Las escrituras se usan solo dentro de la transacción del coordinador de ajustes.
type StockRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Stock, error)
	GetByProductID(ctx context.Context, productID string) (*entity.Stock, error)
	// EnsureForProduct inserta el snapshot vacío si no existe (INSERT ... ON CONFLICT DO NOTHING).
	// Hace segura la creación perezosa frente a dos primeros movimientos concurrentes.
	EnsureForProduct(ctx context.Context, productID string, now time.Time) error
	// GetForUpdate obtiene el snapshot del producto y bloquea la fila (SELECT FOR UPDATE).
	// Serializa todos los ajustes del mismo producto; productos distintos no contienden.
	GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	Update(ctx context.Context, stock *entity.Stock) error
	Create(ctx context.Context, stock *entity.Stock) (*entity.Stock, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter StockSearchFilter, limit, offset int) ([]*entity.Stock, int, error)
	ListByQtyBelow(ctx context.Context, threshold int) ([]*entity.Stock, error)
}

// MovementSearchFilter filtros opcionales para búsqueda paginada del ledger.
type MovementSearchFilter struct {
	StockID   int64
	ProductID string
	Type      entity.MovementType
	From      *time.Time
	To        *time.Time
}

// StockMovementRepository puerto de persistencia del ledger de movimientos (append-only).
// Sin Update ni Delete: el historial es inmutable.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) (*entity.StockMovement, error)
	GetByID(ctx context.Context, id int64) (*entity.StockMovement, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByStock(ctx context.Context, stockID int64, limit, offset int) ([]*entity.StockMovement, error)
	Search(ctx context.Context, filter MovementSearchFilter, limit, offset int) ([]*entity.StockMovement, int, error)
}
