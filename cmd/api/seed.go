package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Brobot64/shopmasterback-v1/internal/domain/entity"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/postgres"
	"github.com/Brobot64/shopmasterback-v1/pkg/config"
)

var demoCatalog = []struct {
	sku, name, price string
	qty, reorder     int64
}{
	{"ARR-1KG", "Arroz 1kg", "5.00", 40, 10},
	{"ACE-1L", "Aceite 1L", "9.50", 25, 5},
	{"AZU-1KG", "Azúcar 1kg", "3.20", 30, 8},
	{"SAL-500", "Sal 500g", "1.10", 60, 10},
	{"CAF-250", "Café 250g", "7.80", 12, 4},
	{"LEC-1L", "Leche 1L", "2.40", 48, 12},
	{"HAR-1KG", "Harina 1kg", "2.90", 20, 6},
	{"FRI-500", "Fríjol 500g", "3.60", 3, 5},
}

var seedFlags struct {
	business, outlet string
	count            int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Inserta productos de demostración en una sucursal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Store.Driver != config.StoreDriverPostgres {
			return errors.New("seed requiere STORE_DRIVER=postgres; el driver memory se siembra al iniciar")
		}
		ctx := cmd.Context()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := seedDemo(ctx, postgres.NewProductRepository(pool), seedFlags.business, seedFlags.outlet, seedFlags.count); err != nil {
			return err
		}
		log.Info().Str("outlet", seedFlags.outlet).Int("products", min(seedFlags.count, len(demoCatalog))).Msg("productos de demostración creados")
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.business, "business", "", "ID del negocio")
	f.StringVar(&seedFlags.outlet, "outlet", "", "ID de la sucursal")
	f.IntVar(&seedFlags.count, "count", len(demoCatalog), "cantidad de productos")
	_ = seedCmd.MarkFlagRequired("business")
	_ = seedCmd.MarkFlagRequired("outlet")
}

// seedDemo crea hasta count productos del catálogo de demostración.
func seedDemo(ctx context.Context, repo repository.ProductRepository, businessID, outletID string, count int) error {
	now := time.Now().UTC()
	for i, item := range demoCatalog {
		if i >= count {
			break
		}
		p := &entity.Product{
			ID:           uuid.NewString(),
			BusinessID:   businessID,
			OutletID:     outletID,
			SKU:          item.sku,
			Name:         item.name,
			Price:        decimal.RequireFromString(item.price),
			Quantity:     item.qty,
			ReorderLevel: item.reorder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", item.sku, err)
		}
	}
	return nil
}
