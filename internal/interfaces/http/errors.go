package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/application/dto"
	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/pkg/logger"
)

const genericInternalMessage = "error interno, intente más tarde"

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:        fiber.StatusBadRequest,
	domain.KindUnauthorized:      fiber.StatusUnauthorized,
	domain.KindForbidden:         fiber.StatusForbidden,
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindInsufficientStock: fiber.StatusBadRequest,
	domain.KindInternal:          fiber.StatusInternalServerError,
}

// ErrorHandler traduce errores de dominio a {"code": KIND, "message": ...}.
// Con production=true los INTERNAL no exponen la causa.
func ErrorHandler(production bool, log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: kindForStatus(fe.Code), Message: fe.Message})
		}

		kind := domain.KindOf(err)
		status, ok := statusByKind[kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		msg := domain.MessageOf(err)
		if kind == domain.KindInternal {
			log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
			if production {
				msg = genericInternalMessage
			} else {
				msg = err.Error()
			}
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: string(kind), Message: msg})
	}
}

func kindForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(domain.KindValidation)
	case fiber.StatusUnauthorized:
		return string(domain.KindUnauthorized)
	case fiber.StatusForbidden:
		return string(domain.KindForbidden)
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return string(domain.KindNotFound)
	case fiber.StatusConflict:
		return string(domain.KindConflict)
	default:
		return string(domain.KindInternal)
	}
}
