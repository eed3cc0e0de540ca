package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/Brobot64/shopmasterback-v1/internal/application/audit"
	"github.com/Brobot64/shopmasterback-v1/internal/application/inventory"
	"github.com/Brobot64/shopmasterback-v1/internal/application/ports"
	"github.com/Brobot64/shopmasterback-v1/internal/application/readcache"
	"github.com/Brobot64/shopmasterback-v1/internal/application/sales"
	"github.com/Brobot64/shopmasterback-v1/internal/domain/repository"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/cache"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/excel"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/memory"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/pdf"
	"github.com/Brobot64/shopmasterback-v1/internal/infrastructure/postgres"
	httpRouter "github.com/Brobot64/shopmasterback-v1/internal/interfaces/http"
	"github.com/Brobot64/shopmasterback-v1/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta la API HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

// backend almacenamiento elegido por STORE_DRIVER.
type backend struct {
	salesTx   sales.TxRunner
	invTx     inventory.TxRunner
	sales     repository.SalesRepository
	invs      repository.InventoryRepository
	auditLogs repository.AuditLogRepository
	health    func(ctx context.Context) error
	close     func()
}

func openBackend(ctx context.Context) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		if err := seedDemo(ctx, store.Products(), "demo-business", "demo-outlet", len(demoCatalog)); err != nil {
			return nil, err
		}
		return &backend{
			salesTx: store, invTx: store,
			sales: store.Sales(), invs: store.Inventories(), auditLogs: store.AuditLogs(),
			close: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	tx := postgres.NewTxRunner(pool)
	return &backend{
		salesTx:   tx,
		invTx:     tx,
		sales:     postgres.NewSalesRepository(pool),
		invs:      postgres.NewInventoryRepository(pool),
		auditLogs: postgres.NewAuditLogRepository(pool),
		health:    pool.Ping,
		close:     pool.Close,
	}, nil
}

// openCache Redis si REDIS_ADDR está definido y responde; si no, caché local (memory) o ninguno.
func openCache(ctx context.Context) (ports.Cache, func()) {
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.App.Name)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché deshabilitado")
			_ = rc.Close()
			return cache.NoopCache{}, func() {}
		}
		return rc, func() { _ = rc.Close() }
	}
	if cfg.Store.Driver == config.StoreDriverMemory {
		return cache.NewMemoryCache(), func() {}
	}
	return cache.NoopCache{}, func() {}
}

func serve(ctx context.Context) error {
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	be, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.close()

	c, closeCache := openCache(ctx)
	defer closeCache()

	recorder := audit.NewRecorder(be.auditLogs, log)
	reader := readcache.New(c, cfg.Cache.TTL(), log)

	ledger := sales.NewLedgerUseCase(be.salesTx, be.sales, reader, recorder, log)
	recon := inventory.NewReconciliationUseCase(be.invTx, be.invs, reader, recorder, log)

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		Ledger:         ledger,
		Receipts:       sales.NewReceiptUseCase(ledger, pdf.NewReceiptGenerator(cfg.App.Name, language.LatinAmericanSpanish)),
		Reconciliation: recon,
		Export:         inventory.NewExportUseCase(recon, excel.NewCountSheetExporter()),
		JWTSecret:      cfg.JWT.Secret,
		RequestTimeout: cfg.HTTP.RequestTimeout(),
		Production:     cfg.App.IsProduction(),
		Log:            log,
		Health:         be.health,
	})

	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(cfg.HTTP.Addr())
	}()

	select {
	case err := <-errc:
		recorder.Close()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	recorder.Close()
	log.Info().Msg("aplicación detenida")
	return nil
}
