package ports

import "context"

// AuditEntry evento auditable. BusinessID y OutletID son opcionales.
type AuditEntry struct {
	ActorID      string
	Action       string
	Description  string
	ResourceType string
	ResourceID   string
	BusinessID   string
	OutletID     string
}

// AuditRecorder sink de auditoría. Fire-and-forget: no bloquea ni falla la operación principal.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}
