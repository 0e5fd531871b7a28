package stock

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/erp-stock/internal/domain"
)

// Lógica de costo promedio ponderado (servicio de dominio, sin I/O).
// NuevoCosto = ((QtyActual * CostoActual) + (QtyEntrada * CostoEntrada)) / (QtyActual + QtyEntrada)
// redondeado half-up a 2 decimales en el momento de recalcular el promedio.

// Result estado resultante de aplicar un movimiento sobre un snapshot.
type Result struct {
	Qty       int
	AvgCost   decimal.Decimal
	TotalCost decimal.Decimal
}

// ApplyIn aplica una entrada: suma cantidad y recalcula el costo promedio ponderado.
// Si el stock actual es 0, el promedio queda exactamente en el costo unitario de la entrada.
func ApplyIn(currentQty int, currentAvg decimal.Decimal, qty int, unitCost decimal.Decimal) Result {
	newQty := currentQty + qty
	var newAvg decimal.Decimal
	if currentQty == 0 {
		newAvg = unitCost
	} else {
		currentTotal := currentAvg.Mul(decimal.NewFromInt(int64(currentQty)))
		inTotal := unitCost.Mul(decimal.NewFromInt(int64(qty)))
		newAvg = currentTotal.Add(inTotal).DivRound(decimal.NewFromInt(int64(newQty)), 2)
	}
	return Result{
		Qty:       newQty,
		AvgCost:   newAvg,
		TotalCost: newAvg.Mul(decimal.NewFromInt(int64(newQty))),
	}
}

// ApplyOut aplica una salida: valida suficiencia y resta cantidad.
// El costo promedio no cambia; solo se recalcula el valor total en mano.
func ApplyOut(currentQty int, currentAvg decimal.Decimal, qty int) (Result, error) {
	if qty > currentQty {
		return Result{}, &domain.InsufficientStockError{Current: currentQty, Required: qty}
	}
	newQty := currentQty - qty
	return Result{
		Qty:       newQty,
		AvgCost:   currentAvg,
		TotalCost: currentAvg.Mul(decimal.NewFromInt(int64(newQty))),
	}, nil
}
