package dto

import (
	"time"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
)

// ListQuery parámetros comunes de listado (query string).
type ListQuery struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
	From      string `query:"from"` // YYYY-MM-DD o RFC3339
	To        string `query:"to"`   // inclusivo si es solo fecha
	Search    string `query:"search"`
}

// Paginated envoltorio de respuesta de los listados.
type Paginated[T any] struct {
	Data         []T `json:"data"`
	TotalItems   int `json:"total_items"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
	ItemsPerPage int `json:"items_per_page"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseDateRange convierte from/to en límites [from, to). Un "to" de solo fecha incluye ese día completo.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var f, t *time.Time
	if from != "" {
		v, _, err := parseDate(from)
		if err != nil {
			return nil, nil, domain.Invalidf("from inválido: %q", from)
		}
		f = &v
	}
	if to != "" {
		v, dateOnly, err := parseDate(to)
		if err != nil {
			return nil, nil, domain.Invalidf("to inválido: %q", to)
		}
		if dateOnly {
			v = v.AddDate(0, 0, 1)
		}
		t = &v
	}
	if f != nil && t != nil && !f.Before(*t) {
		return nil, nil, domain.Invalidf("from debe ser anterior a to")
	}
	return f, t, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if v, err := time.Parse(time.DateOnly, s); err == nil {
		return v, true, nil
	}
	v, err := time.Parse(time.RFC3339, s)
	return v, false, err
}
