package accessing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

const defaultWarningDays = 5

// CacheKey é a chave em configuracoes onde o último resultado do operador fica guardado
func CacheKey(operatorID string) string {
	return "assinatura:" + operatorID
}

type AccessVerifier interface {
	VerifyAccess(ctx context.Context, operatorID string) *domain.AccessResult
	LastKnown(operatorID string) (*domain.AccessResult, error)
}

type Service struct {
	operatorRepo repository.OperatorRepository
	store        *localstore.Store
	warningDays  int
	now          func() time.Time
}

func NewService(operatorRepo repository.OperatorRepository, store *localstore.Store, warningDays int) *Service {
	if warningDays <= 0 {
		warningDays = defaultWarningDays
	}

	return &Service{
		operatorRepo: operatorRepo,
		store:        store,
		warningDays:  warningDays,
		now:          time.Now,
	}
}

// WithClock troca o relógio usado no cálculo dos dias restantes
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// VerifyAccess decide se o operador pode usar o sistema.
// Vencimento no passado suspende a conta no banco remoto com uma única escrita condicional.
func (s *Service) VerifyAccess(ctx context.Context, operatorID string) *domain.AccessResult {
	result := s.evaluate(ctx, operatorID)

	if s.store != nil {
		if err := s.store.SetSetting(CacheKey(operatorID), result); err != nil {
			logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao guardar resultado da assinatura")
		}
	}

	return result
}

// LastKnown devolve o último resultado calculado para o operador, usado quando não há conexão
func (s *Service) LastKnown(operatorID string) (*domain.AccessResult, error) {
	if s.store == nil {
		return nil, nil
	}

	var result domain.AccessResult
	found, err := s.store.GetSetting(CacheKey(operatorID), &result)
	if err != nil || !found {
		return nil, err
	}
	return &result, nil
}

func (s *Service) evaluate(ctx context.Context, operatorID string) *domain.AccessResult {
	operators, err := s.operatorRepo.List(ctx)
	if err != nil {
		logrus.WithError(err).WithField("operador_id", operatorID).Error("Erro ao verificar assinatura")
		return &domain.AccessResult{
			CanUse:  false,
			Status:  domain.AccessError,
			Message: "Não foi possível verificar sua assinatura",
		}
	}

	if len(operators) == 0 {
		logrus.WithField("operador_id", operatorID).Warn("Lista de operadores vazia, liberando acesso")
		return &domain.AccessResult{
			CanUse:        true,
			Status:        domain.AccessActive,
			DaysRemaining: domain.NoExpiryDays,
			Message:       "Servidor indisponível, acesso liberado",
		}
	}

	var operator *domain.Operator
	for _, op := range operators {
		if op.ID == operatorID {
			operator = op
			break
		}
	}

	if operator == nil {
		return &domain.AccessResult{
			CanUse:  false,
			Status:  domain.AccessCancelled,
			Message: "Conta não encontrada ou cancelada",
		}
	}

	if !operator.HasPlan() {
		return &domain.AccessResult{
			CanUse:        true,
			Status:        domain.AccessActive,
			DaysRemaining: domain.NoExpiryDays,
			Message:       "Conta sem assinatura",
		}
	}

	if operator.AwaitingPayment {
		return &domain.AccessResult{
			CanUse:  false,
			Status:  domain.AccessPending,
			Message: "Aguardando confirmação do pagamento",
		}
	}

	if operator.Suspended || !operator.Active {
		return &domain.AccessResult{
			CanUse:  false,
			Status:  domain.AccessSuspended,
			Message: "Assinatura suspensa. Regularize o pagamento para continuar",
		}
	}

	if operator.NextDueDate == nil {
		return &domain.AccessResult{
			CanUse:  false,
			Status:  domain.AccessPending,
			Message: "Assinatura sem data de vencimento",
		}
	}

	// o vencimento vem do banco em UTC; o dia conta no fuso do caixa
	today := utils.StartOfDay(s.now())
	days := utils.DaysBetween(today, operator.NextDueDate.In(today.Location()))

	if days < 0 {
		s.suspend(ctx, operator, today)
		return &domain.AccessResult{
			CanUse:        false,
			Status:        domain.AccessSuspended,
			DaysRemaining: days,
			Message:       "Assinatura vencida. Conta suspensa",
		}
	}

	if days <= s.warningDays {
		return &domain.AccessResult{
			CanUse:        true,
			Status:        domain.AccessActive,
			DaysRemaining: days,
			Message:       fmt.Sprintf("Sua assinatura vence em %d dia(s)", days),
			ShowWarning:   true,
		}
	}

	return &domain.AccessResult{
		CanUse:        true,
		Status:        domain.AccessActive,
		DaysRemaining: days,
		Message:       "Assinatura ativa",
	}
}

func (s *Service) suspend(ctx context.Context, operator *domain.Operator, today time.Time) {
	fields := logrus.Fields{
		"operador_id": operator.ID,
		"vencimento":  operator.NextDueDate.Format(time.DateOnly),
	}

	flipped, err := s.operatorRepo.SuspendIfExpired(ctx, operator.ID, today)
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("Erro ao suspender operador com assinatura vencida")
		return
	}

	if !flipped {
		return
	}

	logrus.WithFields(fields).Info("Operador suspenso por assinatura vencida")

	if s.store == nil {
		return
	}

	local, err := s.store.GetOperator(operator.ID)
	if err != nil || local == nil {
		return
	}
	local.Active = false
	local.Suspended = true
	local.UpdatedAt = s.now()
	if err := s.store.SaveOperator(local); err != nil {
		logrus.WithFields(fields).WithError(err).Warn("Erro ao atualizar operador local")
	}
}
