package domain

import "time"

// Formas de pagamento de assinatura
const (
	PlanPix    = "pix"
	PlanCard   = "cartao"
	PlanBoleto = "boleto"
)

type Operator struct {
	ID               string     `json:"id"`
	Name             string     `json:"nome"`
	Email            string     `json:"email"`
	Password         string     `json:"senha,omitempty"`
	IsAdmin          bool       `json:"isAdmin"`
	Active           bool       `json:"ativo"`
	Suspended        bool       `json:"suspenso"`
	AwaitingPayment  bool       `json:"aguardandoPagamento"`
	PaymentMethod    *string    `json:"formaPagamento,omitempty"`
	MonthlyValue     float64    `json:"valorMensal"`
	NextDueDate      *time.Time `json:"dataProximoVencimento,omitempty"`
	SubscriptionDays int        `json:"diasAssinatura"`
	PaymentDate      *time.Time `json:"dataPagamento,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HasPlan indica se a conta foi criada com plano de cobrança.
// Contas sem forma de pagamento são gratuitas e permanentes.
func (o *Operator) HasPlan() bool {
	return o.PaymentMethod != nil && *o.PaymentMethod != ""
}

// Sanitized devolve uma cópia sem o hash da senha, para respostas da API
func (o *Operator) Sanitized() *Operator {
	if o == nil {
		return nil
	}
	out := *o
	out.Password = ""
	return &out
}

type CreateOperatorRequest struct {
	Name             string  `json:"nome"`
	Email            string  `json:"email"`
	Password         string  `json:"senha"`
	IsAdmin          bool    `json:"isAdmin"`
	PaymentMethod    *string `json:"formaPagamento"`
	MonthlyValue     float64 `json:"valorMensal"`
	SubscriptionDays int     `json:"diasAssinatura"`
}

type UpdateOperatorRequest struct {
	ID            string   `json:"id"`
	Name          *string  `json:"nome"`
	Email         *string  `json:"email"`
	IsAdmin       *bool    `json:"isAdmin"`
	PaymentMethod *string  `json:"formaPagamento"`
	MonthlyValue  *float64 `json:"valorMensal"`
}

type SignUpRequest struct {
	Name          string  `json:"nome"`
	Email         string  `json:"email"`
	Password      string  `json:"senha"`
	PaymentMethod *string `json:"formaPagamento"`
}
