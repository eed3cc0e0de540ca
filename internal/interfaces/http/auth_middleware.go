package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Brobot64/shopmasterback-v1/internal/domain"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/pkg/jwt"
)

// LocalActor key de c.Locals con el entity.Actor autenticado.
const LocalActor = "actor"

// AuthMiddleware valida el Bearer Token JWT y deja el actor (usuario, rol, negocio, sucursal) en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return domain.Newf(domain.KindUnauthorized, "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return domain.Newf(domain.KindUnauthorized, "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return domain.Newf(domain.KindUnauthorized, "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return domain.Newf(domain.KindUnauthorized, "token inválido o expirado")
		}
		userID := claims.UserID
		if userID == "" {
			userID = claims.Subject
		}
		if userID == "" || claims.Role == "" {
			return domain.Newf(domain.KindUnauthorized, "el token no identifica usuario y rol")
		}
		c.Locals(LocalActor, entity.Actor{
			UserID:     userID,
			Role:       entity.Role(strings.ToUpper(claims.Role)),
			BusinessID: claims.BusinessID,
			OutletID:   claims.OutletID,
		})
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth).
func GetActor(c *fiber.Ctx) (entity.Actor, bool) {
	a, ok := c.Locals(LocalActor).(entity.Actor)
	return a, ok
}
