package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
)

// RequireRole corta con 403 si el rol del actor no está en roles. Debe usarse DESPUÉS de
// AuthMiddleware; los casos de uso repiten la verificación, esto solo evita trabajo inútil.
//
//   - 401 si no hay actor en el contexto.
//   - 403 si el rol no está permitido.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return domain.Newf(domain.KindUnauthorized, "actor no encontrado en el contexto")
		}
		if !actor.HasRole(roles...) {
			return domain.Newf(domain.KindForbidden, "el rol %s no puede realizar esta operación", actor.Role)
		}
		return c.Next()
	}
}
