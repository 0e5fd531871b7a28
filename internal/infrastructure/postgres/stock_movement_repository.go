package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/erp-stock/internal/domain/entity"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lee: el historial de movimientos es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = "id, stock_id, product_id, movement_type, qty, unit_cost, total_cost, reason, created_at"

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typeCode int16
	var reason *string
	err := row.Scan(&m.ID, &m.StockID, &m.ProductID, &typeCode, &m.Qty,
		&m.UnitCost, &m.TotalCost, &reason, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type, err = entity.MovementTypeFromCode(typeCode)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		m.Reason = *reason
	}
	return &m, nil
}

// Create persiste un movimiento y devuelve la fila con el ID asignado.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) (*entity.StockMovement, error) {
	code, err := movement.Type.Code()
	if err != nil {
		return nil, err
	}
	reason := (*string)(nil)
	if movement.Reason != "" {
		reason = &movement.Reason
	}
	query := `
		INSERT INTO stock_movements (stock_id, product_id, movement_type, qty, unit_cost, total_cost, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + movementColumns
	m, err := scanMovement(r.q.QueryRow(ctx, query,
		movement.StockID, movement.ProductID, code, movement.Qty,
		movement.UnitCost, movement.TotalCost, reason, movement.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create stock movement: %w", err)
	}
	return m, nil
}

// GetByID obtiene un movimiento por ID. Devuelve nil si no existe.
func (r *StockMovementRepo) GetByID(ctx context.Context, id int64) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE product_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, productID, limit, offset)
}

// ListByStock lista movimientos de un snapshot, más recientes primero.
func (r *StockMovementRepo) ListByStock(ctx context.Context, stockID int64, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE stock_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, stockID, limit, offset)
}

// Search búsqueda paginada multi-condición sobre el historial inmutable.
func (r *StockMovementRepo) Search(ctx context.Context, filter repository.MovementSearchFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1

	addCond := func(cond string, val any) {
		where += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if filter.StockID != 0 {
		addCond("stock_id = $%d", filter.StockID)
	}
	if filter.ProductID != "" {
		addCond("product_id = $%d", filter.ProductID)
	}
	if filter.Type != "" {
		code, err := filter.Type.Code()
		if err != nil {
			return nil, 0, err
		}
		addCond("movement_type = $%d", code)
	}
	if filter.From != nil {
		addCond("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCond("created_at <= $%d", *filter.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM stock_movements"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := fmt.Sprintf("SELECT "+movementColumns+" FROM stock_movements"+where+
		" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search movements: %w", err)
	}
	defer rows.Close()

	list, err := collectMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typeCode int16
		var reason *string
		if err := rows.Scan(&m.ID, &m.StockID, &m.ProductID, &typeCode, &m.Qty,
			&m.UnitCost, &m.TotalCost, &reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movType, err := entity.MovementTypeFromCode(typeCode)
		if err != nil {
			return nil, err
		}
		m.Type = movType
		if reason != nil {
			m.Reason = *reason
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
