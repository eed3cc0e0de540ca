package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio; la capa HTTP lo traduce a código de estado.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindInternal          Kind = "INTERNAL"
)

// Error error de dominio con tipo explícito. Message es apto para el cliente;
// Err (opcional) conserva la causa interna y nunca se expone fuera del modo diagnóstico.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is hace que errors.Is(err, ErrNotFound) sea verdadero para cualquier *Error del mismo Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput      = &Error{Kind: KindValidation, Message: "entrada inválida"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "no autorizado"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "acceso denegado"}
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "recurso no encontrado"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflicto con el estado actual"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "stock insuficiente"}
)

// Newf construye un error del tipo indicado con mensaje formateado.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Invalidf atajo para errores de validación.
func Invalidf(format string, args ...any) *Error {
	return Newf(KindValidation, format, args...)
}

// Internal envuelve un fallo de infraestructura (store, caché) como INTERNAL.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf devuelve el Kind del primer *Error en la cadena; INTERNAL si no hay ninguno.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf devuelve el mensaje apto para cliente del primer *Error en la cadena.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "error interno"
}
