package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/bank-account-ledger/internal/adapter/http/controller"
	"github.com/api-sage/bank-account-ledger/internal/adapter/http/router"
	"github.com/api-sage/bank-account-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/bank-account-ledger/internal/adapter/repository/postgres"
	"github.com/api-sage/bank-account-ledger/internal/config"
	"github.com/api-sage/bank-account-ledger/internal/domain"
	"github.com/api-sage/bank-account-ledger/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	accountStore, clientStore, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		log.Fatalf("set up storage: %v", err)
	}
	defer cleanup()

	clientService := services.NewClientService(clientStore)
	accountService := services.NewAccountService(accountStore, clientService)

	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewClientController(clientService),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("listening on %s (storage driver: %s)", cfg.HTTPAddr, cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

func buildStores(ctx context.Context, cfg config.Config) (domain.AccountStore, domain.ClientStore, func(), error) {
	if cfg.StorageDriver == "memory" {
		return memory.NewAccountRepository(), memory.NewClientRepository(), func() {}, nil
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(migrateCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		return nil, nil, nil, err
	}

	db, err := postgres.Open(migrateCtx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() { _ = db.Close() }
	return postgres.NewAccountRepository(db), postgres.NewClientRepository(db), cleanup, nil
}
