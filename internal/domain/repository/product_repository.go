package repository

import (
	"context"

	"github.com/tu-usuario/erp-stock/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El núcleo de inventario solo consume GetByID para confirmar existencia.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
