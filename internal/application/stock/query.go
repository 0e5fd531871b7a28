package stock

import (
	"context"

	"github.com/tu-usuario/erp-stock/internal/application/dto"
	"github.com/tu-usuario/erp-stock/internal/domain"
	"github.com/tu-usuario/erp-stock/internal/domain/entity"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
)

// QueryUseCase rutas de lectura sobre snapshots y ledger.
// Consultan el historial inmutable sin tomar el bloqueo de escritura y nunca recalculan.
type QueryUseCase struct {
	stockRepo repository.StockRepository
	movRepo   repository.StockMovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(stockRepo repository.StockRepository, movRepo repository.StockMovementRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// GetStock obtiene un snapshot por su ID.
func (uc *QueryUseCase) GetStock(ctx context.Context, id int64) (*dto.StockResponse, error) {
	s, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrStockNotFound
	}
	return toStockResponse(s), nil
}

// GetStockByProduct obtiene el snapshot de un producto.
func (uc *QueryUseCase) GetStockByProduct(ctx context.Context, productID string) (*dto.StockResponse, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	s, err := uc.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrStockNotFound
	}
	return toStockResponse(s), nil
}

// SearchStocks búsqueda paginada de snapshots con filtros opcionales
// (producto, rango de cantidad, rango de costo promedio, rango de valor).
func (uc *QueryUseCase) SearchStocks(ctx context.Context, in dto.StockSearchRequest) (*dto.StockPageResponse, error) {
	in.Page.DefaultPage()
	filter := repository.StockSearchFilter{
		ProductID:    in.ProductID,
		MinQty:       in.MinQty,
		MaxQty:       in.MaxQty,
		MinAvgCost:   in.MinAvgCost,
		MaxAvgCost:   in.MaxAvgCost,
		MinTotalCost: in.MinTotalCost,
		MaxTotalCost: in.MaxTotalCost,
	}
	items, total, err := uc.stockRepo.Search(ctx, filter, in.Page.Limit, in.Page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.StockPageResponse{
		Items: make([]dto.StockResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: in.Page.Limit, Offset: in.Page.Offset, Total: total},
	}
	for _, s := range items {
		out.Items = append(out.Items, *toStockResponse(s))
	}
	return out, nil
}

// LowStock lista los snapshots con cantidad por debajo del umbral.
func (uc *QueryUseCase) LowStock(ctx context.Context, threshold int) ([]dto.StockResponse, error) {
	if threshold <= 0 {
		return nil, domain.NewValidationError("threshold", "debe ser mayor que 0")
	}
	items, err := uc.stockRepo.ListByQtyBelow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(items))
	for _, s := range items {
		out = append(out, *toStockResponse(s))
	}
	return out, nil
}

// ZeroStock lista los snapshots sin existencias (umbral 1).
func (uc *QueryUseCase) ZeroStock(ctx context.Context) ([]dto.StockResponse, error) {
	return uc.LowStock(ctx, 1)
}

// SearchMovements búsqueda paginada del ledger con filtros opcionales
// (snapshot, producto, tipo, rango de fechas).
func (uc *QueryUseCase) SearchMovements(ctx context.Context, in dto.MovementSearchRequest) (*dto.MovementPageResponse, error) {
	in.Page.DefaultPage()
	filter := repository.MovementSearchFilter{
		StockID:   in.StockID,
		ProductID: in.ProductID,
		From:      in.From,
		To:        in.To,
	}
	if in.Type != "" {
		movType := entity.MovementType(in.Type)
		if !movType.Valid() {
			return nil, domain.NewValidationError("movement_type", "debe ser IN u OUT")
		}
		filter.Type = movType
	}
	items, total, err := uc.movRepo.Search(ctx, filter, in.Page.Limit, in.Page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementPageResponse{
		Items: make([]dto.MovementResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: in.Page.Limit, Offset: in.Page.Offset, Total: total},
	}
	for _, m := range items {
		out.Items = append(out.Items, *toMovementResponse(m))
	}
	return out, nil
}

// MovementsByProduct historial de movimientos de un producto.
func (uc *QueryUseCase) MovementsByProduct(ctx context.Context, productID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	if err := validateProductID(productID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	items, err := uc.movRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, *toMovementResponse(m))
	}
	return out, nil
}

func toStockResponse(s *entity.Stock) *dto.StockResponse {
	return &dto.StockResponse{
		ID:        s.ID,
		ProductID: s.ProductID,
		Qty:       s.Qty,
		AvgCost:   s.AvgCost,
		TotalCost: s.TotalCost,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:        m.ID,
		StockID:   m.StockID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Qty:       m.Qty,
		UnitCost:  m.UnitCost,
		TotalCost: m.TotalCost,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}
