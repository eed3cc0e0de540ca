package readcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/cache"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

type item struct {
	Name string
	N    int
}

// brokenCache falla en todas las operaciones.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis caído")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration, []string) error {
	return errors.New("redis caído")
}
func (brokenCache) InvalidateByTag(context.Context, string) error     { return errors.New("redis caído") }
func (brokenCache) InvalidateByPattern(context.Context, string) error { return errors.New("redis caído") }

func TestFetch_HitDespuesDeMiss(t *testing.T) {
	ctx := context.Background()
	r := readcache.New(cache.NewMemoryCache(), time.Minute, logger.Nop())
	pred := scope.Predicate{OutletID: "o1"}
	key := readcache.Key("sales", pred, map[string]string{"id": "s1"})
	tags := readcache.ReadTags(pred, ports.TagSales)

	calls := 0
	load := func(context.Context) (*item, error) {
		calls++
		return &item{Name: "x", N: calls}, nil
	}

	v1, err := readcache.Fetch(ctx, r, key, tags, load)
	require.NoError(t, err)
	v2, err := readcache.Fetch(ctx, r, key, tags, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, v1, v2)

	r.Invalidate(ctx, ports.WriteTags("b1", "o1", ports.TagSales))
	v3, err := readcache.Fetch(ctx, r, key, tags, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v3.N)
}

func TestFetch_CacheCaidaNoFalla(t *testing.T) {
	ctx := context.Background()
	r := readcache.New(brokenCache{}, time.Minute, logger.Nop())

	v, err := readcache.Fetch(ctx, r, "k", nil, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	assert.NotPanics(t, func() { r.Invalidate(ctx, []string{"SALES:all"}) })
}

func TestFetch_ErrorDeCargaNoSeCachea(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache()
	r := readcache.New(mc, time.Minute, logger.Nop())
	boom := errors.New("boom")

	_, err := readcache.Fetch(ctx, r, "k", nil, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, mc.Len())
}

func TestKey_DistintoAlcanceDistintaClave(t *testing.T) {
	params := map[string]int{"page": 1}
	a := readcache.Key("sales", scope.Predicate{OutletID: "o1"}, params)
	b := readcache.Key("sales", scope.Predicate{OutletID: "o1", SalesPersonID: "u3"}, params)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, readcache.Key("sales", scope.Predicate{OutletID: "o1"}, params))

	otherBusiness := readcache.Key("sales", scope.Predicate{BusinessID: "b2", OutletID: "o1"}, params)
	assert.NotEqual(t, readcache.Key("sales", scope.Predicate{BusinessID: "b1", OutletID: "o1"}, params), otherBusiness)
}
