package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pendente"
	PaymentStatusPaid    PaymentStatus = "pago"
)

type Payment struct {
	ID            string        `json:"id"`
	OperatorID    string        `json:"usuarioId"`
	Reference     string        `json:"referencia"`
	Amount        float64       `json:"valor"`
	DueDate       time.Time     `json:"dataVencimento"`
	PaidAt        *time.Time    `json:"dataPagamento,omitempty"`
	Status        PaymentStatus `json:"status"`
	Method        string        `json:"formaPagamento"`
	DaysPurchased int           `json:"diasComprados"`
	PurchaseType  string        `json:"tipoCompra"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

type CreatePaymentRequest struct {
	OperatorID    string  `json:"usuarioId"`
	Reference     string  `json:"referencia"`
	Method        string  `json:"formaPagamento"`
	Amount        float64 `json:"valor"`
	DaysPurchased int     `json:"diasComprados"`
	PurchaseType  string  `json:"tipoCompra"`
}

type Plan struct {
	Method string  `json:"formaPagamento"`
	Price  float64 `json:"valor"`
	Days   int     `json:"dias"`
}
