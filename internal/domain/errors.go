package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Error es un error de negocio con mensaje legible; Unwrap devuelve el sentinel (Kind)
// para que los llamadores discriminen con errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

// Invalid construye un error de validación (entrada del llamador).
func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound construye un error de entidad referenciada inexistente.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict construye un error de transición de estado no permitida.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStock construye un error de saldo insuficiente.
func InsufficientStock(format string, args ...any) error {
	return &Error{Kind: ErrInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// IsBusiness indica si err pertenece a la taxonomía de negocio; cualquier otro error
// se trata como falla de infraestructura.
func IsBusiness(err error) bool {
	for _, k := range []error{ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden, ErrConflict, ErrInsufficientStock} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
