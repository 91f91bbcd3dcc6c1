package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dietledger/backend/config"
	httpDelivery "github.com/dietledger/backend/internal/delivery/http"
	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/infrastructure/cache"
	"github.com/dietledger/backend/internal/infrastructure/memory"
	"github.com/dietledger/backend/internal/infrastructure/postgres"
	"github.com/dietledger/backend/internal/infrastructure/usda"
	"github.com/dietledger/backend/internal/logger"
	"github.com/dietledger/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// repositories is the storage adapter chosen by configuration.
type repositories struct {
	users    domain.UserRepository
	foods    domain.FoodRepository
	meals    domain.MealRepository
	plans    domain.PlanRepository
	intakes  domain.IntakeRepository
	consumed domain.ConsumedMealRepository
	tx       domain.TxManager
	close    func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting dietledger backend",
		slog.String("environment", cfg.Server.Environment),
		slog.String("port", cfg.Server.Port),
		slog.String("storage", cfg.Storage.Type),
	)

	repos, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.Warn("closing storage failed", slog.Any("error", err))
		}
	}()

	memoryCache := cache.NewMemoryCache(10 * time.Minute)
	defer memoryCache.Close()

	if cfg.USDA.APIKey == "" {
		log.Warn("USDA API key not configured; food imports will fail")
	}
	usdaClient := usda.NewClient(log, usda.ClientConfig{
		APIKey:          cfg.USDA.APIKey,
		BaseURL:         cfg.USDA.BaseURL,
		RequestsPerHour: cfg.RateLimit.USDA,
	})

	calculator := usecase.NewIntakeCalculator(usecase.IntakeCalculatorConfig{
		CalorieDeficit: cfg.Intake.CalorieDeficit,
		CalorieSurplus: cfg.Intake.CalorieSurplus,
		FatEnergyRatio: cfg.Intake.FatEnergyRatio,
	})
	rollup := usecase.NewPlanRollup(log, repos.plans, repos.meals, repos.tx)
	meals := usecase.NewMealService(log, repos.meals, repos.foods, repos.tx, rollup)

	handler := httpDelivery.NewHandler(log, httpDelivery.Services{
		Catalog: usecase.NewFoodCatalogService(log, repos.foods, usdaClient, memoryCache,
			usecase.FoodCatalogConfig{CacheTTL: cfg.Cache.TTL}).WithMealRefresh(meals),
		Meals:  meals,
		Plans:  rollup,
		Ledger: usecase.NewConsumptionLedger(log, repos.users, repos.meals, repos.intakes, repos.consumed, repos.tx, calculator),
		Users:  usecase.NewUserService(log, repos.users, calculator),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           httpDelivery.SetupRouter(cfg, log, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(cfg *config.Config, log *slog.Logger) (*repositories, error) {
	if cfg.Storage.Type == "postgres" {
		db, err := postgres.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		return &repositories{
			users:    postgres.NewUserRepository(db),
			foods:    postgres.NewFoodRepository(db),
			meals:    postgres.NewMealRepository(db),
			plans:    postgres.NewPlanRepository(db),
			intakes:  postgres.NewIntakeRepository(db),
			consumed: postgres.NewConsumedMealRepository(db),
			tx:       postgres.NewTxManager(db),
			close:    sqlDB.Close,
		}, nil
	}

	log.Warn("using in-memory storage; data is lost on restart")
	s := memory.NewStore()
	return &repositories{
		users:    memory.NewUserRepository(s),
		foods:    memory.NewFoodRepository(s),
		meals:    memory.NewMealRepository(s),
		plans:    memory.NewPlanRepository(s),
		intakes:  memory.NewIntakeRepository(s),
		consumed: memory.NewConsumedMealRepository(s),
		tx:       memory.NewTxManager(s),
		close:    func() error { return nil },
	}, nil
}
