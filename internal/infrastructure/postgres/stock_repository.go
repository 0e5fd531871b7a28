package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/erp-stock/internal/domain"
	"github.com/tu-usuario/erp-stock/internal/domain/entity"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = "id, product_id, qty, avg_cost, total_cost, created_at, updated_at"

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(&s.ID, &s.ProductID, &s.Qty, &s.AvgCost, &s.TotalCost, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene un snapshot por ID. Devuelve nil si no existe.
func (r *StockRepo) GetByID(ctx context.Context, id int64) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetByProductID obtiene el snapshot de un producto. Devuelve nil si no existe.
func (r *StockRepo) GetByProductID(ctx context.Context, productID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock by product: %w", err)
	}
	return s, nil
}

// EnsureForProduct inserta el snapshot vacío si aún no existe.
// ON CONFLICT DO NOTHING hace la creación perezosa segura frente a dos
// primeros movimientos concurrentes del mismo producto.
func (r *StockRepo) EnsureForProduct(ctx context.Context, productID string, now time.Time) error {
	query := `
		INSERT INTO stock (product_id, qty, avg_cost, total_cost, created_at, updated_at)
		VALUES ($1, 0, 0, 0, $2, $2)
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, now); err != nil {
		return fmt.Errorf("ensure stock: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el snapshot del producto y bloquea la fila (SELECT FOR UPDATE)
// para serializar los ajustes concurrentes del mismo producto.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Update persiste los campos mutables del snapshot.
func (r *StockRepo) Update(ctx context.Context, stock *entity.Stock) error {
	query := `
		UPDATE stock
		SET qty = $2, avg_cost = $3, total_cost = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, stock.ID, stock.Qty, stock.AvgCost, stock.TotalCost, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// Create inserta un snapshot nuevo y devuelve la fila con el ID asignado.
func (r *StockRepo) Create(ctx context.Context, stock *entity.Stock) (*entity.Stock, error) {
	query := `
		INSERT INTO stock (product_id, qty, avg_cost, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + stockColumns
	s, err := scanStock(r.q.QueryRow(ctx, query,
		stock.ProductID, stock.Qty, stock.AvgCost, stock.TotalCost, stock.CreatedAt, stock.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	return s, nil
}

// Delete elimina un snapshot por ID. El caller garantiza qty = 0.
func (r *StockRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}

// Search búsqueda paginada con filtros opcionales (construcción dinámica del WHERE).
func (r *StockRepo) Search(ctx context.Context, filter repository.StockSearchFilter, limit, offset int) ([]*entity.Stock, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	pos := 1

	addCond := func(cond string, val any) {
		where += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if filter.ProductID != "" {
		addCond("product_id = $%d", filter.ProductID)
	}
	if filter.MinQty != nil {
		addCond("qty >= $%d", *filter.MinQty)
	}
	if filter.MaxQty != nil {
		addCond("qty <= $%d", *filter.MaxQty)
	}
	if filter.MinAvgCost != nil {
		addCond("avg_cost >= $%d", *filter.MinAvgCost)
	}
	if filter.MaxAvgCost != nil {
		addCond("avg_cost <= $%d", *filter.MaxAvgCost)
	}
	if filter.MinTotalCost != nil {
		addCond("total_cost >= $%d", *filter.MinTotalCost)
	}
	if filter.MaxTotalCost != nil {
		addCond("total_cost <= $%d", *filter.MaxTotalCost)
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT COUNT(*) FROM stock"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stocks: %w", err)
	}

	query := fmt.Sprintf("SELECT "+stockColumns+" FROM stock"+where+" ORDER BY id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search stocks: %w", err)
	}
	defer rows.Close()

	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Qty, &s.AvgCost, &s.TotalCost, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, total, rows.Err()
}

// ListByQtyBelow lista snapshots con cantidad por debajo del umbral.
func (r *StockRepo) ListByQtyBelow(ctx context.Context, threshold int) ([]*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE qty < $1 ORDER BY qty ASC`
	rows, err := r.q.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Qty, &s.AvgCost, &s.TotalCost, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
