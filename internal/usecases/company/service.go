package company

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

const remoteTimeout = 10 * time.Second

// Debouncer adia o envio ao banco remoto enquanto o formulário continua sendo salvo
type Debouncer interface {
	Trigger(key string, fn func())
}

type CompanyService interface {
	GetCompany(ctx context.Context, operatorID string) (*domain.Company, error)
	SaveCompany(operatorID string, company *domain.Company) (*domain.Company, error)
	GetFiscalConfig(ctx context.Context, operatorID string) (*domain.FiscalConfig, error)
	SaveFiscalConfig(operatorID string, cfg *domain.FiscalConfig) (*domain.FiscalConfig, error)
}

type Service struct {
	store       *localstore.Store
	companyRepo repository.CompanyRepository
	fiscalRepo  repository.FiscalConfigRepository
	debouncer   Debouncer
	now         func() time.Time
}

func NewService(
	store *localstore.Store,
	companyRepo repository.CompanyRepository,
	fiscalRepo repository.FiscalConfigRepository,
	debouncer Debouncer,
) *Service {
	return &Service{
		store:       store,
		companyRepo: companyRepo,
		fiscalRepo:  fiscalRepo,
		debouncer:   debouncer,
		now:         time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func companyKey(operatorID string) string {
	return "empresa:" + operatorID
}

func fiscalKey(operatorID string) string {
	return "fiscal:" + operatorID
}

// GetCompany lê o cadastro local; sem cadastro local tenta o banco remoto e espelha.
// Sem cadastro em nenhum dos dois devolve um cadastro vazio do operador.
func (s *Service) GetCompany(ctx context.Context, operatorID string) (*domain.Company, error) {
	company, err := s.store.GetCompany(operatorID)
	if err != nil {
		return nil, NewCompanyError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	if company != nil {
		return company, nil
	}

	remote, err := s.companyRepo.Get(ctx, operatorID)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao buscar empresa no banco remoto")
	}
	if remote != nil {
		if err := s.store.SaveCompany(remote); err != nil {
			logrus.WithError(err).Warn("Erro ao espelhar empresa localmente")
		}
		return remote, nil
	}

	return &domain.Company{OperatorID: operatorID}, nil
}

func validateCompany(company *domain.Company) error {
	company.CNPJ = utils.OnlyDigits(company.CNPJ)
	company.ZipCode = utils.OnlyDigits(company.ZipCode)
	company.State = strings.ToUpper(strings.TrimSpace(company.State))

	if company.CNPJ != "" && len(company.CNPJ) != 14 {
		return NewCompanyError(ErrInvalidCNPJ, apiErrors.ErrInvalidFormat, "")
	}
	if company.State != "" && len(company.State) != 2 {
		return NewCompanyError(ErrInvalidState, apiErrors.ErrInvalidFormat, "")
	}
	return nil
}

// SaveCompany grava localmente na hora e agenda o envio ao banco remoto
func (s *Service) SaveCompany(operatorID string, company *domain.Company) (*domain.Company, error) {
	if err := validateCompany(company); err != nil {
		return nil, err
	}

	company.OperatorID = operatorID
	company.UpdatedAt = s.now()

	if err := s.store.SaveCompany(company); err != nil {
		return nil, NewCompanyError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	snapshot := *company
	s.debouncer.Trigger(companyKey(operatorID), func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		logRemote(s.companyRepo.Upsert(ctx, &snapshot), "empresa", operatorID)
	})

	return company, nil
}

func (s *Service) GetFiscalConfig(ctx context.Context, operatorID string) (*domain.FiscalConfig, error) {
	cfg, err := s.store.GetFiscalConfig(operatorID)
	if err != nil {
		return nil, NewCompanyError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}
	if cfg != nil {
		return cfg, nil
	}

	remote, err := s.fiscalRepo.Get(ctx, operatorID)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao buscar configuração fiscal no banco remoto")
	}
	if remote != nil {
		if err := s.store.SaveFiscalConfig(remote); err != nil {
			logrus.WithError(err).Warn("Erro ao espelhar configuração fiscal localmente")
		}
		return remote, nil
	}

	return DefaultFiscalConfig(operatorID), nil
}

// DefaultFiscalConfig é a configuração de uma loja que ainda não preencheu os dados fiscais
func DefaultFiscalConfig(operatorID string) *domain.FiscalConfig {
	return &domain.FiscalConfig{
		OperatorID:  operatorID,
		Series:      1,
		NextNumber:  1,
		Environment: domain.EnvironmentHomologation,
		ICMSRate:    domain.DefaultICMSRate,
		PISRate:     domain.DefaultPISRate,
		COFINSRate:  domain.DefaultCOFINSRate,
	}
}

func validateFiscalConfig(cfg *domain.FiscalConfig) error {
	if cfg.Environment == "" {
		cfg.Environment = domain.EnvironmentHomologation
	}
	if cfg.Environment != domain.EnvironmentHomologation && cfg.Environment != domain.EnvironmentProduction {
		return NewCompanyError(ErrInvalidEnvironment, apiErrors.ErrInvalidFormat, cfg.Environment)
	}
	if cfg.Series <= 0 || cfg.NextNumber <= 0 {
		return NewCompanyError(ErrInvalidSeries, apiErrors.ErrInvalidFormat, "")
	}
	if cfg.ICMSRate < 0 || cfg.PISRate < 0 || cfg.COFINSRate < 0 {
		return NewCompanyError(ErrInvalidTaxRate, apiErrors.ErrInvalidFormat, "")
	}
	return nil
}

func (s *Service) SaveFiscalConfig(operatorID string, cfg *domain.FiscalConfig) (*domain.FiscalConfig, error) {
	if err := validateFiscalConfig(cfg); err != nil {
		return nil, err
	}

	cfg.OperatorID = operatorID
	cfg.UpdatedAt = s.now()

	if err := s.store.SaveFiscalConfig(cfg); err != nil {
		return nil, NewCompanyError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, err.Error())
	}

	snapshot := *cfg
	s.debouncer.Trigger(fiscalKey(operatorID), func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		logRemote(s.fiscalRepo.Upsert(ctx, &snapshot), "configuração fiscal", operatorID)
	})

	return cfg, nil
}

func logRemote(err error, entity, operatorID string) {
	entry := logrus.WithFields(logrus.Fields{
		"entidade":    entity,
		"operador_id": operatorID,
	})

	switch {
	case err == nil:
		entry.Info("Cadastro enviado ao banco remoto")
	case errors.Is(err, repository.ErrRemoteUnavailable):
		entry.Debug("Banco remoto não configurado, cadastro mantido apenas localmente")
	default:
		entry.WithError(err).Error("Erro ao enviar cadastro ao banco remoto")
	}
}
