package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario (enum cerrado).
// Se persiste como código numérico: 1=IN (entrada), 2=OUT (salida).
type MovementType string

const (
	MovementTypeIN  MovementType = "IN"
	MovementTypeOUT MovementType = "OUT"
)

// Code devuelve el código persistido del tipo de movimiento.
func (t MovementType) Code() (int16, error) {
	switch t {
	case MovementTypeIN:
		return 1, nil
	case MovementTypeOUT:
		return 2, nil
	}
	return 0, fmt.Errorf("tipo de movimiento desconocido: %q", string(t))
}

// MovementTypeFromCode mapea el código persistido al tipo de movimiento.
func MovementTypeFromCode(code int16) (MovementType, error) {
	switch code {
	case 1:
		return MovementTypeIN, nil
	case 2:
		return MovementTypeOUT, nil
	}
	return "", fmt.Errorf("código de tipo de movimiento desconocido: %d", code)
}

// Valid indica si el tipo es uno de los valores cerrados del enum.
func (t MovementType) Valid() bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// StockMovement representa un movimiento del ledger de inventario (append-only).
// ProductID es copia desnormalizada del snapshot dueño y debe coincidir siempre con él.
// TotalCost = UnitCost * Qty, calculado al escribir y congelado (nunca se recalcula).
type StockMovement struct {
	ID        int64
	StockID   int64
	ProductID string
	Type      MovementType
	Qty       int             // siempre positivo; la dirección la da Type
	UnitCost  decimal.Decimal // para OUT es el costo promedio del snapshot al momento de postear
	TotalCost decimal.Decimal
	Reason    string
	CreatedAt time.Time // clave de orden para replay
}
