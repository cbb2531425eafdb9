package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

// Registrar grava um operador novo localmente e no banco remoto
type Registrar interface {
	RegisterOperator(ctx context.Context, operator *domain.Operator) error
}

type AdminService interface {
	CreateOperator(ctx context.Context, req *domain.CreateOperatorRequest) (*domain.Operator, error)
	ListOperators(ctx context.Context) ([]*domain.Operator, error)
	GetOperator(ctx context.Context, id string) (*domain.Operator, error)
	UpdateOperator(ctx context.Context, req *domain.UpdateOperatorRequest) (*domain.Operator, error)
	SuspendOperator(ctx context.Context, id string) (*domain.Operator, error)
	ActivateOperator(ctx context.Context, id string, days int) (*domain.Operator, error)
	DeleteOperator(ctx context.Context, session *domain.Session, id string) error
	ListEarnings(ctx context.Context) ([]*domain.Earning, error)
	EarningsSummary(ctx context.Context) (*domain.EarningsSummary, error)
}

type Service struct {
	store        *localstore.Store
	operatorRepo repository.OperatorRepository
	earningRepo  repository.EarningRepository
	registrar    Registrar
	plans        config.Plans
	now          func() time.Time
}

func NewService(store *localstore.Store, gateway *repository.Gateway, registrar Registrar, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		operatorRepo: gateway.Operators,
		earningRepo:  gateway.Earnings,
		registrar:    registrar,
		plans:        cfg.Plans,
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOperator cria a conta pelo painel. Com forma de pagamento a conta já nasce ativa,
// vencendo em hoje + dias de assinatura, e lança o ganho de conta criada.
// Sem forma de pagamento a conta é gratuita e permanente.
func (s *Service) CreateOperator(ctx context.Context, req *domain.CreateOperatorRequest) (*domain.Operator, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, NewAdminError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "", "")
	}
	if err := authenticating.ValidateEmail(email); err != nil {
		return nil, NewAdminError(err, apiErrors.ErrInvalidFormat, "", email)
	}
	if err := authenticating.ValidatePassword(req.Password); err != nil {
		return nil, NewAdminError(err, apiErrors.ErrWeakPassword, "", "")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewAdminError(err, apiErrors.ErrInternalServer, "", "Erro ao gerar hash da senha")
	}

	now := s.now()
	operator := &domain.Operator{
		ID:        utils.NewID(),
		Name:      name,
		Email:     email,
		Password:  string(hashed),
		IsAdmin:   req.IsAdmin,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		plan, ok := s.plans.Find(*req.PaymentMethod)
		if !ok {
			return nil, NewAdminError(ErrInvalidPlan, apiErrors.ErrInvalidRequest, "", *req.PaymentMethod)
		}
		if req.SubscriptionDays < 0 {
			return nil, NewAdminError(ErrInvalidDays, apiErrors.ErrInvalidFormat, "", "")
		}

		days, value := req.SubscriptionDays, req.MonthlyValue
		if days == 0 {
			days = plan.Days
		}
		if value == 0 {
			value = plan.Price
		}

		due := utils.StartOfDay(now).AddDate(0, 0, days)
		operator.PaymentMethod = &plan.Method
		operator.MonthlyValue = utils.RoundWithTwoDecimalPlace(value)
		operator.SubscriptionDays = days
		operator.NextDueDate = &due
		operator.PaymentDate = &now
	}

	if err := s.registrar.RegisterOperator(ctx, operator); err != nil {
		return nil, err
	}

	if operator.HasPlan() {
		s.appendEarning(ctx, &domain.Earning{
			ID:            utils.NewID(),
			Kind:          domain.EarningAccountCreated,
			OperatorID:    operator.ID,
			OperatorName:  operator.Name,
			Amount:        operator.MonthlyValue,
			PaymentMethod: *operator.PaymentMethod,
			Description:   "Conta criada pelo administrador",
			CreatedAt:     now,
		})
	}

	logrus.WithFields(logrus.Fields{
		"operador_id": operator.ID,
		"gratuita":    !operator.HasPlan(),
	}).Info("Operador criado pelo administrador")

	return operator.Sanitized(), nil
}

func (s *Service) appendEarning(ctx context.Context, earning *domain.Earning) {
	if err := s.store.AppendEarning(earning); err != nil {
		logrus.WithError(err).WithField("ganho_id", earning.ID).Error("Erro ao gravar ganho localmente")
	}
	err := s.earningRepo.Create(ctx, earning)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).WithField("ganho_id", earning.ID).Warn("Ganho não enviado ao banco remoto")
	}
}

// ListOperators espelha a lista remota localmente; sem banco remoto usa a cópia local
func (s *Service) ListOperators(ctx context.Context) ([]*domain.Operator, error) {
	operators, err := s.operatorRepo.List(ctx)
	if err == nil {
		if err := s.store.ReplaceOperators(operators); err != nil {
			logrus.WithError(err).Warn("Erro ao espelhar operadores localmente")
		}
	} else {
		if !errors.Is(err, repository.ErrRemoteUnavailable) {
			logrus.WithError(err).Warn("Erro ao listar operadores remotos, usando cópia local")
		}
		operators, err = s.store.ListOperators()
		if err != nil {
			return nil, NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
		}
	}

	sanitized := make([]*domain.Operator, 0, len(operators))
	for _, op := range operators {
		sanitized = append(sanitized, op.Sanitized())
	}
	return sanitized, nil
}

func (s *Service) findOperator(ctx context.Context, id string) (*domain.Operator, error) {
	operator, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrRemoteUnavailable) {
			logrus.WithError(err).WithField("operador_id", id).Warn("Erro ao buscar operador remoto, usando cópia local")
		}
		operator, err = s.store.GetOperator(id)
		if err != nil {
			return nil, NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
		}
	}
	if operator == nil {
		return nil, NewAdminError(ErrOperatorNotFound, apiErrors.ErrNotFound, id, "")
	}
	return operator, nil
}

func (s *Service) GetOperator(ctx context.Context, id string) (*domain.Operator, error) {
	operator, err := s.findOperator(ctx, id)
	if err != nil {
		return nil, err
	}
	return operator.Sanitized(), nil
}

// saveOperator grava primeiro no banco remoto; só a indisponibilidade dele é tolerada
func (s *Service) saveOperator(ctx context.Context, operator *domain.Operator) error {
	operator.UpdatedAt = s.now()

	err := s.operatorRepo.Update(ctx, operator)
	switch {
	case err == nil, errors.Is(err, repository.ErrRemoteUnavailable):
	case errors.Is(err, repository.ErrConflict):
		return NewAdminError(ErrEmailInUse, apiErrors.ErrConflict, operator.ID, operator.Email)
	default:
		return NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, operator.ID, err.Error())
	}

	if err := s.store.SaveOperator(operator); err != nil {
		if errors.Is(err, localstore.ErrDuplicateEmail) {
			return NewAdminError(ErrEmailInUse, apiErrors.ErrConflict, operator.ID, operator.Email)
		}
		return NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, operator.ID, err.Error())
	}

	// a próxima verificação de acesso precisa refletir a alteração
	if err := s.store.DeleteSetting(accessing.CacheKey(operator.ID)); err != nil {
		logrus.WithError(err).WithField("operador_id", operator.ID).Warn("Erro ao limpar acesso em cache")
	}
	return nil
}

func (s *Service) UpdateOperator(ctx context.Context, req *domain.UpdateOperatorRequest) (*domain.Operator, error) {
	operator, err := s.findOperator(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		operator.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := authenticating.ValidateEmail(email); err != nil {
			return nil, NewAdminError(err, apiErrors.ErrInvalidFormat, operator.ID, email)
		}
		operator.Email = email
	}
	if req.IsAdmin != nil {
		operator.IsAdmin = *req.IsAdmin
	}
	if req.PaymentMethod != nil {
		if *req.PaymentMethod == "" {
			operator.PaymentMethod = nil
		} else {
			plan, ok := s.plans.Find(*req.PaymentMethod)
			if !ok {
				return nil, NewAdminError(ErrInvalidPlan, apiErrors.ErrInvalidRequest, operator.ID, *req.PaymentMethod)
			}
			operator.PaymentMethod = &plan.Method
		}
	}
	if req.MonthlyValue != nil {
		operator.MonthlyValue = utils.RoundWithTwoDecimalPlace(*req.MonthlyValue)
	}

	if err := s.saveOperator(ctx, operator); err != nil {
		return nil, err
	}
	return operator.Sanitized(), nil
}

func (s *Service) SuspendOperator(ctx context.Context, id string) (*domain.Operator, error) {
	operator, err := s.findOperator(ctx, id)
	if err != nil {
		return nil, err
	}

	operator.Active = false
	operator.Suspended = true

	if err := s.saveOperator(ctx, operator); err != nil {
		return nil, err
	}

	logrus.WithField("operador_id", id).Info("Operador suspenso pelo administrador")
	return operator.Sanitized(), nil
}

// ActivateOperator reativa a conta; com days > 0 o vencimento passa a ser hoje + days
func (s *Service) ActivateOperator(ctx context.Context, id string, days int) (*domain.Operator, error) {
	if days < 0 {
		return nil, NewAdminError(ErrInvalidDays, apiErrors.ErrInvalidFormat, id, "")
	}

	operator, err := s.findOperator(ctx, id)
	if err != nil {
		return nil, err
	}

	operator.Active = true
	operator.Suspended = false
	operator.AwaitingPayment = false
	if days > 0 {
		due := utils.StartOfDay(s.now()).AddDate(0, 0, days)
		operator.NextDueDate = &due
		operator.SubscriptionDays = days
	}

	if err := s.saveOperator(ctx, operator); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"operador_id": id,
		"dias":        days,
	}).Info("Operador ativado pelo administrador")
	return operator.Sanitized(), nil
}

func (s *Service) DeleteOperator(ctx context.Context, session *domain.Session, id string) error {
	if session != nil && session.OperatorID == id {
		return NewAdminError(ErrCannotDeleteSelf, apiErrors.ErrInvalidRequest, id, "")
	}

	if _, err := s.findOperator(ctx, id); err != nil {
		return err
	}

	err := s.operatorRepo.Delete(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		return NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}

	if err := s.store.DeleteOperator(id); err != nil {
		return NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}
	_ = s.store.DeleteSetting(accessing.CacheKey(id))

	logrus.WithField("operador_id", id).Info("Operador excluído")
	return nil
}

// ListEarnings devolve o livro de ganhos, do mais recente para o mais antigo
func (s *Service) ListEarnings(ctx context.Context) ([]*domain.Earning, error) {
	earnings, err := s.earningRepo.List(ctx)
	if err == nil {
		for _, e := range earnings {
			if err := s.store.AppendEarning(e); err != nil {
				logrus.WithError(err).WithField("ganho_id", e.ID).Warn("Erro ao espelhar ganho")
			}
		}
		return earnings, nil
	}

	if !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).Warn("Erro ao listar ganhos remotos, usando cópia local")
	}

	earnings, err = s.store.ListEarnings()
	if err != nil {
		return nil, NewAdminError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}
	return earnings, nil
}

func (s *Service) EarningsSummary(ctx context.Context) (*domain.EarningsSummary, error) {
	earnings, err := s.ListEarnings(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(earnings), nil
}

// Summarize totaliza os lançamentos por tipo
func Summarize(earnings []*domain.Earning) *domain.EarningsSummary {
	var created, monthly []float64
	for _, e := range earnings {
		switch e.Kind {
		case domain.EarningAccountCreated:
			created = append(created, e.Amount)
		case domain.EarningMonthlyPaid:
			monthly = append(monthly, e.Amount)
		}
	}

	summary := &domain.EarningsSummary{
		AccountsCreated: utils.SumMoney(created...),
		MonthlyPayments: utils.SumMoney(monthly...),
		Count:           len(earnings),
	}
	summary.Total = utils.SumMoney(summary.AccountsCreated, summary.MonthlyPayments)
	return summary
}
