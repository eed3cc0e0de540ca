package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
)

func TestPageQuery_Defaults(t *testing.T) {
	q, err := repository.PageQuery{}.Normalize(repository.SaleSortColumns)
	require.NoError(t, err)
	assert.Equal(t, repository.PageQuery{Page: 1, Limit: 10, SortBy: "created_at", SortOrder: "DESC"}, q)
	assert.Equal(t, 0, q.Offset())
}

func TestPageQuery_Valido(t *testing.T) {
	q, err := repository.PageQuery{Page: 3, Limit: 25, SortBy: "total_amount", SortOrder: "asc"}.Normalize(repository.SaleSortColumns)
	require.NoError(t, err)
	assert.Equal(t, "ASC", q.SortOrder)
	assert.Equal(t, 50, q.Offset())
}

func TestPageQuery_Invalidos(t *testing.T) {
	bad := []repository.PageQuery{
		{Page: -1},
		{Limit: 101},
		{Limit: -5},
		{SortBy: "password"},
		{SortOrder: "sideways"},
		{SortBy: "total_amount"}, // no permitido en inventarios
	}
	for _, q := range bad {
		_, err := q.Normalize(repository.InventorySortColumns)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", q)
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, repository.TotalPages(0, 10))
	assert.Equal(t, 1, repository.TotalPages(10, 10))
	assert.Equal(t, 2, repository.TotalPages(11, 10))
}
