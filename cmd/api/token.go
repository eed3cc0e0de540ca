package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/pkg/jwt"
)

var tokenFlags struct {
	user, role, business, outlet string
	expMinutes                   int
}

// tokenCmd emite un JWT de desarrollo; en producción los tokens los emite el servicio de identidad.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Genera un JWT de desarrollo para un actor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		role := entity.Role(strings.ToUpper(tokenFlags.role))
		if !role.Valid() {
			return fmt.Errorf("rol inválido: %q", tokenFlags.role)
		}
		exp := tokenFlags.expMinutes
		if exp <= 0 {
			exp = cfg.JWT.Expiration
		}
		tok, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, exp, jwt.Subject{
			UserID:     tokenFlags.user,
			BusinessID: tokenFlags.business,
			OutletID:   tokenFlags.outlet,
			Role:       string(role),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenFlags.user, "user", "", "ID del usuario")
	f.StringVar(&tokenFlags.role, "role", "", "ADMIN | OWNER | STORE_EXECUTIVE | SALES_REP")
	f.StringVar(&tokenFlags.business, "business", "", "ID del negocio")
	f.StringVar(&tokenFlags.outlet, "outlet", "", "ID de la sucursal")
	f.IntVar(&tokenFlags.expMinutes, "exp", 0, "minutos de validez (por defecto JWT_EXPIRATION_MINUTES)")
	_ = tokenCmd.MarkFlagRequired("user")
	_ = tokenCmd.MarkFlagRequired("role")
}
