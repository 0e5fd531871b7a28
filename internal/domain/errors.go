package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrProductNotFound   = errors.New("producto no encontrado")
	ErrStockNotFound     = errors.New("registro de stock no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// ValidationError error de validación con el campo que lo causó.
// errors.Is(err, ErrInvalidInput) devuelve true para mapearlo en la capa HTTP.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError salida que excede el stock actual.
// errors.Is(err, ErrInsufficientStock) devuelve true.
type InsufficientStockError struct {
	Current  int
	Required int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: actual %d, solicitado %d", e.Current, e.Required)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortage cantidad faltante para cubrir la salida.
func (e *InsufficientStockError) Shortage() int {
	return e.Required - e.Current
}
