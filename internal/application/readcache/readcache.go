// Package readcache implementa la lectura a través de caché y la invalidación
// posterior al commit. Todo error de caché se registra y se ignora.
package readcache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

const invalidateTimeout = 2 * time.Second

// Reader envuelve el puerto Cache con TTL y logger.
type Reader struct {
	cache ports.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// New construye el helper. cache puede ser un no-op.
func New(cache ports.Cache, ttl time.Duration, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Nop()
	}
	return &Reader{cache: cache, ttl: ttl, log: log.Named("readcache")}
}

// Key arma la clave: <recurso>:<alcance>:<hash de los parámetros>.
// El alcance forma parte de la clave para que dos actores con distinto predicado nunca compartan entrada.
func Key(resource string, pred scope.Predicate, params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(resource)
	}
	return resource + ":" + pred.Key() + ":" + strconv.FormatUint(xxhash.Sum64(raw), 16)
}

// Fetch devuelve el valor en caché o lo carga con load y lo guarda con las etiquetas dadas.
// Un error de load se devuelve tal cual; los de caché solo se registran.
func Fetch[T any](ctx context.Context, r *Reader, key string, tags []string, load func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache get falló")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		r.log.Warn().Str("key", key).Msg("entrada de caché ilegible, se recarga")
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("no se pudo serializar para caché")
		return v, nil
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl, tags); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache set falló")
	}
	return v, nil
}

// Invalidate borra las etiquetas tras el commit. Usa un contexto propio:
// la cancelación del request no debe dejar lecturas viejas más allá del TTL.
func (r *Reader) Invalidate(ctx context.Context, tags []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	for _, tag := range tags {
		if err := r.cache.InvalidateByTag(ctx, tag); err != nil {
			r.log.Warn().Err(err).Str("tag", tag).Msg("invalidación de caché falló")
		}
	}
}

// ReadTags etiquetas con que se guarda una lectura hecha bajo el predicado dado.
func ReadTags(pred scope.Predicate, tags ...ports.CacheTag) []string {
	level := pred.TagLevel()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Level(level))
	}
	return out
}
