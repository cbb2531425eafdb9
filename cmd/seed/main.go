// Command seed cria o primeiro administrador a partir de ADMIN_NAME, ADMIN_EMAIL e ADMIN_PASSWORD.
// Roda uma vez na instalação da loja; com o banco remoto configurado o operador também é gravado lá.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/pdv-api/infrastructure/database/postgres"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/admin"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}
	log.Setup(cfg.App.LogLevel)

	req := &domain.CreateOperatorRequest{
		Name:     viper.GetString("ADMIN_NAME"),
		Email:    viper.GetString("ADMIN_EMAIL"),
		Password: viper.GetString("ADMIN_PASSWORD"),
		IsAdmin:  true,
	}
	if req.Name == "" {
		req.Name = "Administrador"
	}
	if req.Email == "" || req.Password == "" {
		logrus.Fatal("ADMIN_EMAIL e ADMIN_PASSWORD são obrigatórios")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir armazenamento local")
	}
	defer store.Close()

	gateway := repository.NewUnavailableGateway()
	if cfg.Database.IsConfigured() {
		conn, err := postgres.NewConnection(ctx, cfg.Database)
		if err != nil {
			logrus.WithError(err).Fatal("Erro ao conectar ao banco remoto")
		}
		defer conn.Close()

		if cfg.Database.Migrate {
			if err := postgres.Migrate(conn); err != nil {
				logrus.WithError(err).Fatal("Erro ao aplicar migrações")
			}
		}
		gateway = repository.NewGateway(conn)
	}

	authenticator := authenticating.NewService(gateway.Operators, gateway.Payments, store, cfg)
	service := admin.NewService(store, gateway, authenticator, cfg)

	startTime := time.Now()
	operator, err := service.CreateOperator(ctx, req)
	if errors.Is(err, authenticating.ErrUserAlreadyExists) {
		logrus.WithField("email", req.Email).Info("Administrador já cadastrado, nada a fazer")
		return
	}
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao criar administrador")
	}

	logrus.WithFields(logrus.Fields{
		"operador_id": operator.ID,
		"email":       operator.Email,
		"remote":      gateway.Available(),
		"duration":    time.Since(startTime).String(),
	}).Info("Administrador criado")
}
