package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/scope"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isOutOfRange verifica un desbordamiento numérico (22003), p. ej. bigint fuera de rango.
func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22003"
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// whereBuilder acumula condiciones AND con placeholders $n numerados en orden.
type whereBuilder struct {
	conds []string
	args  []any
}

// add agrega una condición; cada %s del formato recibe el placeholder de un valor.
// Usar %[1]s para repetir el mismo valor.
func (w *whereBuilder) add(format string, vals ...any) {
	ph := make([]any, len(vals))
	for i, v := range vals {
		w.args = append(w.args, v)
		ph[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf(format, ph...))
}

// eqIf agrega "col = valor" solo si el valor no está vacío.
func (w *whereBuilder) eqIf(col, val string) {
	if val != "" {
		w.add(col+" = %s", val)
	}
}

// next placeholder para argumentos posteriores al WHERE (LIMIT, OFFSET).
func (w *whereBuilder) next(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// scoped traduce el predicado de alcance a condiciones sobre el alias dado.
// salesPerson solo aplica a ventas.
func (w *whereBuilder) scoped(pred scope.Predicate, alias string, salesPerson bool) {
	if pred.Unrestricted {
		return
	}
	w.eqIf(alias+".business_id", pred.BusinessID)
	w.eqIf(alias+".outlet_id", pred.OutletID)
	if salesPerson {
		w.eqIf(alias+".sales_person_id", pred.SalesPersonID)
	}
}

// likePattern escapa comodines de LIKE y envuelve en %...%.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
