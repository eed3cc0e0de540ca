package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
)

func TestError_IsPorKind(t *testing.T) {
	err := domain.Newf(domain.KindInsufficientStock, "stock insuficiente para el producto %s", "p-1")

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "stock insuficiente para el producto p-1", err.Error())
}

func TestError_EnvueltoConservaKind(t *testing.T) {
	wrapped := fmt.Errorf("registrar venta: %w", domain.ErrConflict)

	assert.ErrorIs(t, wrapped, domain.ErrConflict)
	assert.Equal(t, domain.KindConflict, domain.KindOf(wrapped))
	assert.Equal(t, "conflicto con el estado actual", domain.MessageOf(wrapped))
}

func TestKindOf_ErrorDesconocidoEsInternal(t *testing.T) {
	assert.Equal(t, domain.KindInternal, domain.KindOf(errors.New("pgx: conn closed")))
	assert.Equal(t, "error interno", domain.MessageOf(errors.New("x")))
	assert.Equal(t, domain.Kind(""), domain.KindOf(nil))
}

func TestInternal_ConservaCausa(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := domain.Internal("consultar ventas", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.Contains(t, err.Error(), "dial tcp")
}
