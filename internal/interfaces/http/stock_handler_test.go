package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/tu-usuario/erp-stock/internal/application/stock"
	"github.com/tu-usuario/erp-stock/internal/application/usecase"
	"github.com/tu-usuario/erp-stock/internal/domain/entity"
	"github.com/tu-usuario/erp-stock/internal/domain/repository"
	apphttp "github.com/tu-usuario/erp-stock/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Puertos en memoria para ejercitar las rutas sin base de datos
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	stocks    map[string]*entity.Stock // por productID
	movements []*entity.StockMovement
	products  map[string]*entity.Product
	nextStock int64
	nextMov   int64
}

func newMemStore() *memStore {
	return &memStore{
		stocks:   make(map[string]*entity.Stock),
		products: make(map[string]*entity.Product),
	}
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.products[id], nil
}

func (r *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, p)
	}
	return out, nil
}

type memStockRepo struct{ s *memStore }

func (r *memStockRepo) GetByID(_ context.Context, id int64) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.stocks {
		if st.ID == id {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memStockRepo) GetByProductID(_ context.Context, productID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.stocks[productID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (r *memStockRepo) EnsureForProduct(_ context.Context, productID string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stocks[productID]; !ok {
		r.s.nextStock++
		st := entity.NewStock(productID, now)
		st.ID = r.s.nextStock
		r.s.stocks[productID] = st
	}
	return nil
}

func (r *memStockRepo) GetForUpdate(_ context.Context, productID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *r.s.stocks[productID]
	return &cp, nil
}

func (r *memStockRepo) Update(_ context.Context, stock *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *stock
	r.s.stocks[stock.ProductID] = &cp
	return nil
}

func (r *memStockRepo) Create(_ context.Context, stock *entity.Stock) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextStock++
	cp := *stock
	cp.ID = r.s.nextStock
	r.s.stocks[stock.ProductID] = &cp
	out := cp
	return &out, nil
}

func (r *memStockRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for pid, st := range r.s.stocks {
		if st.ID == id {
			delete(r.s.stocks, pid)
		}
	}
	return nil
}

func (r *memStockRepo) Search(_ context.Context, _ repository.StockSearchFilter, _, _ int) ([]*entity.Stock, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Stock, 0, len(r.s.stocks))
	for _, st := range r.s.stocks {
		cp := *st
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memStockRepo) ListByQtyBelow(_ context.Context, threshold int) ([]*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Stock
	for _, st := range r.s.stocks {
		if st.Qty < threshold {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(_ context.Context, m *entity.StockMovement) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextMov++
	cp := *m
	cp.ID = r.s.nextMov
	r.s.movements = append(r.s.movements, &cp)
	out := cp
	return &out, nil
}

func (r *memMovementRepo) GetByID(_ context.Context, id int64) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) ListByProduct(_ context.Context, productID string, _, _ int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByStock(_ context.Context, stockID int64, _, _ int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if m.StockID == stockID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) Search(_ context.Context, filter repository.MovementSearchFilter, _, _ int) ([]*entity.StockMovement, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		// Rango de fechas con ambos extremos inclusivos, igual que el SQL (>= / <=).
		if filter.From != nil && m.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.CreatedAt.After(*filter.To) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, len(out), nil
}

// memTxRunner ejecuta la unidad de trabajo serializada con un mutex.
type memTxRunner struct {
	mu sync.Mutex
	s  *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(repository.StockRepository, repository.StockMovementRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&memStockRepo{s: r.s}, &memMovementRepo{s: r.s})
}

// buildTestApp construye la app Fiber completa sobre los puertos en memoria.
func buildTestApp() (*fiber.App, *memStore) {
	store := newMemStore()
	productRepo := &memProductRepo{s: store}
	stockRepo := &memStockRepo{s: store}
	movRepo := &memMovementRepo{s: store}

	adjustUC := appstock.NewAdjustUseCase(&memTxRunner{s: store}, productRepo, stockRepo)
	availabilityUC := appstock.NewAvailabilityChecker(stockRepo)
	queryUC := appstock.NewQueryUseCase(stockRepo, movRepo)
	productUC := usecase.NewProductUseCase(productRepo)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AdjustUC:       adjustUC,
		AvailabilityUC: availabilityUC,
		QueryUC:        queryUC,
		ProductUC:      productUC,
		Logger:         zerolog.Nop(),
	})
	return app, store
}

func seedProduct(t *testing.T, store *memStore) string {
	t.Helper()
	const id = "00000000-0000-0000-0000-000000000001"
	store.mu.Lock()
	defer store.mu.Unlock()
	store.products[id] = &entity.Product{
		ID:    id,
		SKU:   "SKU-001",
		Name:  "Tornillo 3mm",
		Price: decimal.NewFromInt(100),
	}
	return id
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de rutas de ajuste
// ──────────────────────────────────────────────────────────────────────────────

// Entrada válida → 201 con el movimiento y el snapshot actualizado.
func TestInbound_Retorna201ConSnapshot(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": productID,
		"qty":        10,
		"unit_cost":  "25.00",
		"reason":     "compra inicial",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	stock := body["stock"].(map[string]any)
	movement := body["movement"].(map[string]any)
	assert.Equal(t, float64(10), stock["qty"], "la entrada debe sumar la cantidad")
	assert.Equal(t, "25", stock["avg_cost"], "el primer movimiento fija el promedio")
	assert.Equal(t, "IN", movement["movement_type"])
	assert.Equal(t, "compra inicial", movement["reason"])
}

// Salida mayor al stock actual → 409 con el detalle del faltante.
func TestOutbound_InsuficienteRetorna409(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": productID, "qty": 5, "unit_cost": "10.00",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/stocks/outbound", fiber.Map{
		"product_id": productID, "qty": 8,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode,
		"stock insuficiente debe mapear a 409")

	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(5), body["current_qty"])
	assert.Equal(t, float64(8), body["required_qty"])
	assert.Equal(t, float64(3), body["shortage_qty"])
}

// Cantidad cero → 400 con el campo que falló.
func TestInbound_CantidadCeroRetorna400(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": productID, "qty": 0, "unit_cost": "10.00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, "qty", body["field"], "la respuesta debe señalar el campo inválido")
}

// Producto inexistente → 404.
func TestInbound_ProductoInexistenteRetorna404(t *testing.T) {
	app, _ := buildTestApp()

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": "00000000-0000-0000-0000-00000000dead",
		"qty":        1,
		"unit_cost":  "10.00",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de rutas de consulta
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByProduct_SinSnapshotRetorna404(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := getJSON(t, app, "/api/stocks/product/"+productID)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"sin movimientos no hay snapshot que leer")
}

func TestGetByProduct_DespuesDeMovimientos(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": productID, "qty": 10, "unit_cost": "25.00",
	})
	resp.Body.Close()
	resp = postJSON(t, app, "/api/stocks/outbound", fiber.Map{
		"product_id": productID, "qty": 4,
	})
	resp.Body.Close()

	resp = getJSON(t, app, "/api/stocks/product/"+productID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(6), body["qty"])
	assert.Equal(t, "25", body["avg_cost"], "la salida no cambia el promedio")
}

func TestAvailability_ReportaFaltante(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
		"product_id": productID, "qty": 3, "unit_cost": "10.00",
	})
	resp.Body.Close()

	resp = postJSON(t, app, "/api/stocks/availability", fiber.Map{
		"product_id": productID, "required_qty": 9,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode,
		"la verificación es consultiva, no un error HTTP")
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["is_available"])
	assert.Equal(t, float64(6), body["shortage_qty"])
}

func TestMovementsByProduct_ListaElHistorial(t *testing.T) {
	app, store := buildTestApp()
	productID := seedProduct(t, store)

	for i := 0; i < 3; i++ {
		resp := postJSON(t, app, "/api/stocks/inbound", fiber.Map{
			"product_id": productID, "qty": 1, "unit_cost": fmt.Sprintf("%d.00", 10+i),
		})
		resp.Body.Close()
	}

	resp := getJSON(t, app, "/api/stocks/product/"+productID+"/movements")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(3), body["total"], "cada ajuste agrega exactamente un movimiento")
}
