package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

const renewalPurchase = "renovacao"

type BillingService interface {
	ListPayments(ctx context.Context, operatorID string) ([]*domain.Payment, error)
	CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error)
	ConfirmPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	DaysPurchasedTotal(operatorID string) (int, error)
	Plans() []domain.Plan
}

type Service struct {
	store        *localstore.Store
	paymentRepo  repository.PaymentRepository
	operatorRepo repository.OperatorRepository
	earningRepo  repository.EarningRepository
	plans        config.Plans
	now          func() time.Time
}

func NewService(store *localstore.Store, gateway *repository.Gateway, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		paymentRepo:  gateway.Payments,
		operatorRepo: gateway.Operators,
		earningRepo:  gateway.Earnings,
		plans:        cfg.Plans,
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Plans() []domain.Plan {
	return s.plans.Table()
}

// remote registra a falha de escrita remota; a gravação local já aconteceu
func remote(err error, action string, fields logrus.Fields) {
	if err == nil || errors.Is(err, repository.ErrRemoteUnavailable) {
		return
	}
	logrus.WithError(err).WithFields(fields).Warn(action + " não enviado ao banco remoto")
}

// ListPayments prefere o banco remoto, espelhando localmente; sem ele usa a cópia local
func (s *Service) ListPayments(ctx context.Context, operatorID string) ([]*domain.Payment, error) {
	payments, err := s.paymentRepo.ListByOperator(ctx, operatorID)
	if err == nil {
		for _, p := range payments {
			if err := s.store.SavePayment(p); err != nil {
				logrus.WithError(err).WithField("pagamento_id", p.ID).Warn("Erro ao espelhar pagamento")
			}
		}
	} else if !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).WithField("operador_id", operatorID).Warn("Erro ao listar pagamentos remotos, usando cópia local")
	}

	local, err := s.store.ListPaymentsByOperator(operatorID)
	if err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}
	return local, nil
}

// CreatePayment abre uma cobrança pendente; valor e dias vêm do plano quando não informados
func (s *Service) CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	if req.OperatorID == "" {
		return nil, NewBillingError(ErrOperatorRequired, apiErrors.ErrMissingRequiredData, "", "")
	}

	plan, ok := s.plans.Find(req.Method)
	if !ok {
		return nil, NewBillingError(ErrInvalidPlan, apiErrors.ErrInvalidRequest, "", req.Method)
	}

	amount, days := req.Amount, req.DaysPurchased
	if amount == 0 {
		amount = plan.Price
	}
	if days == 0 {
		days = plan.Days
	}
	if amount < 0 || days < 0 {
		return nil, NewBillingError(ErrInvalidAmount, apiErrors.ErrInvalidFormat, "", "")
	}

	purchase := req.PurchaseType
	if purchase == "" {
		purchase = renewalPurchase
	}
	reference := req.Reference
	if reference == "" {
		reference = fmt.Sprintf("Mensalidade %s", plan.Method)
	}

	now := s.now()
	payment := &domain.Payment{
		ID:            utils.NewID(),
		OperatorID:    req.OperatorID,
		Reference:     reference,
		Amount:        utils.RoundWithTwoDecimalPlace(amount),
		DueDate:       utils.StartOfDay(now),
		Status:        domain.PaymentStatusPending,
		Method:        plan.Method,
		DaysPurchased: days,
		PurchaseType:  purchase,
		CreatedAt:     now,
	}

	if err := s.store.SavePayment(payment); err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, payment.ID, err.Error())
	}
	remote(s.paymentRepo.Create(ctx, payment), "Pagamento", logrus.Fields{"pagamento_id": payment.ID})

	return payment, nil
}

func (s *Service) findPayment(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.store.GetPayment(id)
	if err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, id, err.Error())
	}
	if payment != nil {
		return payment, nil
	}

	payment, err = s.paymentRepo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		return nil, NewBillingError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao buscar pagamento")
	}
	if payment == nil {
		return nil, NewBillingError(ErrPaymentNotFound, apiErrors.ErrNotFound, id, "")
	}
	return payment, nil
}

func (s *Service) findOperator(ctx context.Context, id string) (*domain.Operator, error) {
	operator, err := s.operatorRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrRemoteUnavailable) {
			logrus.WithError(err).WithField("operador_id", id).Warn("Erro ao buscar operador remoto, usando cópia local")
		}
		operator, err = s.store.GetOperator(id)
		if err != nil {
			return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
		}
	}
	if operator == nil {
		return nil, NewBillingError(ErrOperatorNotFound, apiErrors.ErrNotFound, "", id)
	}
	return operator, nil
}

// ConfirmPayment marca o pagamento como pago, estende o vencimento do operador pelos
// dias comprados a partir do vencimento atual (ou de hoje, se já vencido), reativa a
// conta e lança a mensalidade no livro de ganhos.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid() {
		return nil, NewBillingError(ErrAlreadyPaid, apiErrors.ErrConflict, paymentID, "")
	}

	operator, err := s.findOperator(ctx, payment.OperatorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := utils.StartOfDay(now)

	payment.Status = domain.PaymentStatusPaid
	payment.PaidAt = &now

	base := today
	if operator.NextDueDate != nil && operator.NextDueDate.After(today) {
		base = utils.StartOfDay(*operator.NextDueDate)
	}
	due := base.AddDate(0, 0, payment.DaysPurchased)

	method := payment.Method
	operator.NextDueDate = &due
	operator.PaymentDate = &now
	operator.PaymentMethod = &method
	operator.MonthlyValue = payment.Amount
	operator.SubscriptionDays = payment.DaysPurchased
	operator.Active = true
	operator.Suspended = false
	operator.AwaitingPayment = false
	operator.UpdatedAt = now

	earning := &domain.Earning{
		ID:            utils.NewID(),
		Kind:          domain.EarningMonthlyPaid,
		OperatorID:    operator.ID,
		OperatorName:  operator.Name,
		Amount:        payment.Amount,
		PaymentMethod: payment.Method,
		Description:   payment.Reference,
		CreatedAt:     now,
	}

	if err := s.store.SavePayment(payment); err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, paymentID, err.Error())
	}
	if err := s.store.SaveOperator(operator); err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, paymentID, err.Error())
	}
	if err := s.store.AppendEarning(earning); err != nil {
		return nil, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, paymentID, err.Error())
	}

	fields := logrus.Fields{"pagamento_id": paymentID, "operador_id": operator.ID}
	remote(s.paymentRepo.Update(ctx, payment), "Pagamento", fields)
	remote(s.operatorRepo.Update(ctx, operator), "Operador", fields)
	remote(s.earningRepo.Create(ctx, earning), "Ganho", fields)

	logrus.WithFields(logrus.Fields{
		"pagamento_id": paymentID,
		"operador_id":  operator.ID,
		"vencimento":   due.Format(time.DateOnly),
		"valor":        payment.Amount,
	}).Info("Pagamento confirmado")

	return payment, nil
}

// DaysPurchasedTotal soma os dias comprados em pagamentos confirmados
func (s *Service) DaysPurchasedTotal(operatorID string) (int, error) {
	payments, err := s.store.ListPaymentsByOperator(operatorID)
	if err != nil {
		return 0, NewBillingError(ErrStoreOperation, apiErrors.ErrDatabaseOperation, "", err.Error())
	}

	total := 0
	for _, p := range payments {
		if p.IsPaid() {
			total += p.DaysPurchased
		}
	}
	return total, nil
}
