package stock

import (
	"context"

	"github.com/tu-usuario/erp-stock/internal/application/dto"
	"github.com/tu-usuario/erp-stock/internal/domain"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
)

// AvailabilityChecker lectura pura de disponibilidad contra el snapshot vigente.
// Es consultivo: no reserva ni bloquea; el rechazo autoritativo por stock
// insuficiente lo da el ajuste de salida dentro de su sección crítica.
type AvailabilityChecker struct {
	stockRepo repository.StockRepository
}

// NewAvailabilityChecker construye el verificador.
func NewAvailabilityChecker(stockRepo repository.StockRepository) *AvailabilityChecker {
	return &AvailabilityChecker{stockRepo: stockRepo}
}

// Check compara la cantidad solicitada contra el stock actual y reporta el faltante.
// Sin snapshot, el stock actual se lee como 0.
func (c *AvailabilityChecker) Check(ctx context.Context, productID string, requiredQty int) (*dto.AvailabilityResponse, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	if requiredQty <= 0 {
		return nil, domain.NewValidationError("required_qty", "debe ser mayor que 0")
	}

	currentQty := 0
	s, err := c.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s != nil {
		currentQty = s.Qty
	}

	shortage := 0
	if requiredQty > currentQty {
		shortage = requiredQty - currentQty
	}
	return &dto.AvailabilityResponse{
		ProductID:   productID,
		CurrentQty:  currentQty,
		RequiredQty: requiredQty,
		IsAvailable: currentQty >= requiredQty,
		ShortageQty: shortage,
	}, nil
}
