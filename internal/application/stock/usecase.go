package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/erp-stock/internal/domain"
	"github.com/tu-usuario/erp-stock/internal/domain/entity"
	domstock "github.com/tu-usuario/erp-stock/internal/domain/stock"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
)

// AdjustUseCase coordina los ajustes de inventario de forma transaccional:
// valida -> bloquea la fila del producto (SELECT FOR UPDATE) -> calcula costo
// promedio -> persiste snapshot -> agrega el movimiento al ledger.
// Es el único escritor del estado de stock; todo ajuste del mismo producto
// queda serializado por el bloqueo de fila.
type AdjustUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
	}
}

// AdjustmentResult movimiento creado junto con el snapshot resultante.
type AdjustmentResult struct {
	Stock    *entity.Stock
	Movement *entity.StockMovement
}

// CreateStock crea explícitamente el snapshot vacío (qty=0, costos en 0) para un producto.
// Falla con ErrProductNotFound si el producto no existe y ErrDuplicate si ya hay snapshot.
func (uc *AdjustUseCase) CreateStock(ctx context.Context, productID string) (*entity.Stock, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	if err := uc.ensureProductExists(ctx, productID); err != nil {
		return nil, err
	}
	existing, err := uc.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	return uc.stockRepo.Create(ctx, entity.NewStock(productID, time.Now()))
}

// AdjustInbound registra una entrada: suma cantidad y recalcula el costo promedio ponderado.
func (uc *AdjustUseCase) AdjustInbound(ctx context.Context, productID string, qty int, unitCost decimal.Decimal, reason string) (*AdjustmentResult, error) {
	if err := validateAdjustment(productID, qty); err != nil {
		return nil, err
	}
	if unitCost.IsNegative() {
		return nil, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
	}
	return uc.adjust(ctx, productID, qty, unitCost, entity.MovementTypeIN, reason)
}

// AdjustOutbound registra una salida costeada al promedio vigente del snapshot.
// Un costo unitario provisto por el caller se ignora: nunca se acepta un costo arbitrario de salida.
func (uc *AdjustUseCase) AdjustOutbound(ctx context.Context, productID string, qty int, reason string) (*AdjustmentResult, error) {
	if err := validateAdjustment(productID, qty); err != nil {
		return nil, err
	}
	return uc.adjust(ctx, productID, qty, decimal.Zero, entity.MovementTypeOUT, reason)
}

// DeleteStock elimina un snapshot. Solo permitido con qty en 0; el ledger nunca se borra.
// La verificación y el borrado corren bajo el mismo bloqueo de fila que los ajustes:
// un ajuste concurrente del mismo producto queda en cola y no puede colarse entre ambos.
func (uc *AdjustUseCase) DeleteStock(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		_ repository.StockMovementRepository,
	) error {
		s, err := stockRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrStockNotFound
		}
		locked, err := stockRepo.GetForUpdate(ctx, s.ProductID)
		if err != nil {
			return err
		}
		if locked.Qty > 0 {
			return domain.ErrConflict
		}
		return stockRepo.Delete(ctx, locked.ID)
	})
}

// adjust ejecuta la unidad de trabajo atómica de un ajuste IN/OUT.
// Si el cálculo falla (stock insuficiente) se aborta antes de cualquier escritura sobre el snapshot.
func (uc *AdjustUseCase) adjust(ctx context.Context, productID string, qty int, unitCost decimal.Decimal, movType entity.MovementType, reason string) (*AdjustmentResult, error) {
	if err := uc.ensureProductExists(ctx, productID); err != nil {
		return nil, err
	}

	now := time.Now()
	var result AdjustmentResult

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// Creación perezosa idempotente + bloqueo de fila (SELECT FOR UPDATE):
		// ajustes concurrentes del mismo producto entran en cola aquí.
		if err := stockRepo.EnsureForProduct(ctx, productID, now); err != nil {
			return err
		}
		current, err := stockRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		var computed domstock.Result
		movementCost := unitCost
		switch movType {
		case entity.MovementTypeIN:
			computed = domstock.ApplyIn(current.Qty, current.AvgCost, qty, unitCost)
		case entity.MovementTypeOUT:
			computed, err = domstock.ApplyOut(current.Qty, current.AvgCost, qty)
			if err != nil {
				return err
			}
			// La salida se costea al promedio del snapshot al momento de postear.
			movementCost = current.AvgCost
		default:
			return domain.NewValidationError("movement_type", "tipo de movimiento desconocido")
		}

		current.Qty = computed.Qty
		current.AvgCost = computed.AvgCost
		current.TotalCost = computed.TotalCost
		current.UpdatedAt = now
		if err := stockRepo.Update(ctx, current); err != nil {
			return err
		}

		mov := &entity.StockMovement{
			StockID:   current.ID,
			ProductID: current.ProductID,
			Type:      movType,
			Qty:       qty,
			UnitCost:  movementCost,
			TotalCost: movementCost.Mul(decimal.NewFromInt(int64(qty))),
			Reason:    reason,
			CreatedAt: now,
		}
		created, err := movRepo.Create(ctx, mov)
		if err != nil {
			return err
		}

		result.Stock = current
		result.Movement = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ensureProductExists confirma la existencia del producto en el colaborador de catálogo.
func (uc *AdjustUseCase) ensureProductExists(ctx context.Context, productID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	return nil
}

// Reglas de validación previas a cualquier mutación de estado.

func validateProductID(productID string) error {
	if productID == "" {
		return domain.NewValidationError("product_id", "es requerido")
	}
	if _, err := uuid.Parse(productID); err != nil {
		return domain.NewValidationError("product_id", "debe ser un UUID válido")
	}
	return nil
}

func validateAdjustment(productID string, qty int) error {
	if err := validateProductID(productID); err != nil {
		return err
	}
	// Cantidad cero no es un no-op: se rechaza como inválida.
	if qty <= 0 {
		return domain.NewValidationError("qty", "debe ser mayor que 0")
	}
	return nil
}
