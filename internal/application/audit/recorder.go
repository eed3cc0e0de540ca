// Package audit registra eventos del ledger en el sink de auditoría sin bloquear la operación.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

var _ ports.AuditRecorder = (*Recorder)(nil)

const defaultTimeout = 5 * time.Second

// Recorder escribe cada entrada en su propia goroutine con timeout propio.
// Los fallos se registran en el log y nunca llegan al llamador.
type Recorder struct {
	repo    repository.AuditLogRepository
	log     *logger.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.AuditLogRepository, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{repo: repo, log: log.Named("audit"), timeout: defaultTimeout}
}

// Record encola la escritura y retorna de inmediato.
func (r *Recorder) Record(ctx context.Context, e ports.AuditEntry) {
	row := &entity.AuditLog{
		ID:           uuid.New().String(),
		ActorID:      e.ActorID,
		Action:       e.Action,
		Description:  e.Description,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		BusinessID:   e.BusinessID,
		OutletID:     e.OutletID,
		CreatedAt:    time.Now().UTC(),
	}

	// Tras Close no se lanzan goroutines: la escritura ocurre en la del llamador.
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.write(ctx, row)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.write(ctx, row)
	}()
}

func (r *Recorder) write(ctx context.Context, row *entity.AuditLog) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.repo.Create(wctx, row); err != nil {
		r.log.Warn().Err(err).
			Str("action", row.Action).
			Str("resource_id", row.ResourceID).
			Msg("no se pudo registrar auditoría")
	}
}

// Wait espera las escrituras pendientes (tests).
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Close deja de aceptar escrituras en segundo plano y espera las pendientes.
// Es seguro llamarlo mientras otros requests siguen registrando.
func (r *Recorder) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}
