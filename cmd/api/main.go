package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/api"
	"github.com/vfg2006/pdv-api/internal/api/handler"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/scheduler"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/internal/usecases/admin"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/internal/usecases/billing"
	"github.com/vfg2006/pdv-api/internal/usecases/checkout"
	"github.com/vfg2006/pdv-api/internal/usecases/company"
	"github.com/vfg2006/pdv-api/internal/usecases/inventory"
	"github.com/vfg2006/pdv-api/internal/usecases/messaging"
	"github.com/vfg2006/pdv-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir armazenamento local")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logrus.WithError(err).Error("Erro ao fechar armazenamento local")
		}
	}()

	gateway, watcher, closeRemote := remote(ctx, cfg)
	defer closeRemote()

	orchestrator := scheduler.NewSyncOrchestrator(store, gateway, watcher, cfg)
	debouncer := scheduler.NewDebouncer(cfg.Sync.CompanyDebounce)

	authenticator := authenticating.NewService(gateway.Operators, gateway.Payments, store, cfg)

	var verifier accessing.AccessVerifier
	if gateway.Available() {
		verifier = accessing.NewService(gateway.Operators, store, cfg.Access.WarningDays)
	}

	services := handler.Services{
		Auth:      authenticator,
		Access:    verifier,
		Inventory: inventory.NewService(store, gateway.Products, orchestrator),
		Checkout:  checkout.NewService(store, orchestrator),
		Company:   company.NewService(store, gateway.Companies, gateway.FiscalConfigs, debouncer),
		Billing:   billing.NewService(store, gateway, cfg),
		Admin:     admin.NewService(store, gateway, authenticator, cfg),
		Messaging: messaging.NewService(store, gateway.Messages),
		Sync:      orchestrator,
	}

	if err := orchestrator.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar a sincronização")
	} else {
		logrus.Info("Sincronização iniciada com sucesso")
	}

	server := api.New(cfg, services)
	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}

	cancel()
	<-orchestrator.Stopped()
	debouncer.Flush()
}

// remote conecta ao banco remoto quando configurado; sem ele a aplicação segue só local
func remote(ctx context.Context, cfg *config.Config) (*repository.Gateway, *repository.Watcher, func()) {
	if !cfg.Database.IsConfigured() {
		logrus.Warn("Banco remoto não configurado, operando apenas com o armazenamento local")
		return repository.NewUnavailableGateway(), nil, func() {}
	}

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Error("Erro ao conectar ao banco remoto, operando apenas localmente")
		return repository.NewUnavailableGateway(), nil, func() {}
	}
	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")

	if cfg.Database.Migrate {
		if err := postgres.Migrate(conn); err != nil {
			logrus.WithError(err).Fatal("Erro ao aplicar migrações")
		}
	}

	gateway := repository.NewGateway(conn)

	var watcher *repository.Watcher
	if cfg.Sync.WatchEnabled {
		watcher = repository.NewWatcher(
			conn.DSN(),
			gateway,
			cfg.Sync.WatchMinBackoff,
			cfg.Sync.WatchMaxBackoff,
			cfg.Sync.WatchPingTimeout,
		)
	}

	return gateway, watcher, func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Erro ao fechar conexão com o banco remoto")
		}
	}
}
