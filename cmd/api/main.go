package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/licoreria-api/internal/application/billing"
	"github.com/jhoicas/licoreria-api/internal/application/inventory"
	"github.com/jhoicas/licoreria-api/internal/application/purchasing"
	"github.com/jhoicas/licoreria-api/internal/domain/repository"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/cache"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/memory"
	"github.com/jhoicas/licoreria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/licoreria-api/internal/interfaces/http"
	"github.com/jhoicas/licoreria-api/pkg/config"
	"github.com/jhoicas/licoreria-api/pkg/logger"
)

// txRunner lo cumplen postgres.TxRunner y memory.Store.
type txRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Recursos abiertos, se liberan en orden inverso al apagar o ante un error fatal.
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var (
		tx    txRunner
		repos repository.Repos
	)
	switch cfg.App.StoreDriver {
	case "memory":
		store := memory.New()
		seedDemoCatalog(store)
		tx, repos = store, store.Repos()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.MigrateOnStart {
			if err := migrateUp(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		closers = append(closers, pool.Close)
		tx, repos = postgres.NewTxRunner(pool), postgres.NewRepos(pool)
	}

	// Idempotencia: Redis si está configurado, si no en memoria (una sola instancia).
	var idem cache.IdempotencyStore = cache.NewInMemoryIdempotencyStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(ctx, cfg.Redis)
		if err != nil {
			closeAll()
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		closers = append(closers, func() {
			if err := redisStore.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar Redis")
			}
		})
		idem = redisStore
	}

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		PurchaseOrders: purchasing.NewPurchaseOrderUseCase(tx, repos, log),
		Receipts:       purchasing.NewReceiptUseCase(tx, repos, log),
		Stock:          inventory.NewStockUseCase(tx, repos, log),
		Invoices:       billing.NewInvoiceUseCase(tx, repos, log),
		Idempotency:    idem,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		JWTSecret:      cfg.JWT.Secret,
		SwaggerFile:    cfg.HTTP.SwaggerFile,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	closeAll()

	log.Info().Msg("aplicación detenida")
}

func migrateUp(dsn string, log *logger.Logger) error {
	mg, err := postgres.NewMigrator(dsn, log)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
