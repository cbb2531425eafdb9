package domain

import "time"

type EarningKind string

const (
	EarningAccountCreated EarningKind = "conta-criada"
	EarningMonthlyPaid    EarningKind = "mensalidade-paga"
)

type Earning struct {
	ID            string      `json:"id"`
	Kind          EarningKind `json:"tipo"`
	OperatorID    string      `json:"operadorId"`
	OperatorName  string      `json:"operadorNome"`
	Amount        float64     `json:"valor"`
	PaymentMethod string      `json:"formaPagamento"`
	Description   string      `json:"descricao"`
	CreatedAt     time.Time   `json:"dataHora"`
}

type EarningsSummary struct {
	AccountsCreated float64 `json:"contasCriadas"`
	MonthlyPayments float64 `json:"mensalidades"`
	Total           float64 `json:"total"`
	Count           int     `json:"quantidade"`
}
