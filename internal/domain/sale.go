package domain

import "time"

type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "concluida"
	SaleStatusCancelled SaleStatus = "cancelada"
)

// DefectiveProductReason é o único motivo de cancelamento que não devolve os itens ao estoque
const DefectiveProductReason = "Produto com defeito"

type SaleItem struct {
	ProductID string  `json:"produtoId"`
	Name      string  `json:"nome"`
	Quantity  int     `json:"quantidade"`
	UnitPrice float64 `json:"precoUnitario"`
	Subtotal  float64 `json:"subtotal"`
}

type Sale struct {
	ID            string     `json:"id"`
	Number        int        `json:"numero"`
	OperatorID    string     `json:"operadorId"`
	OperatorName  string     `json:"operadorNome"`
	Items         []SaleItem `json:"itens"`
	Total         float64    `json:"total"`
	PaymentMethod *string    `json:"formaPagamento,omitempty"`
	Status        SaleStatus `json:"status"`
	CancelReason  *string    `json:"motivoCancelamento,omitempty"`
	CancelledAt   *time.Time `json:"canceladaEm,omitempty"`
	CreatedAt     time.Time  `json:"dataHora"`
}

func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// RestocksOnCancel informa se o cancelamento com o motivo informado devolve os itens ao estoque
func RestocksOnCancel(reason string) bool {
	return reason != DefectiveProductReason
}

type CheckoutItem struct {
	ProductID string `json:"produtoId"`
	Barcode   string `json:"codigoBarras"`
	Quantity  int    `json:"quantidade"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem `json:"itens"`
	PaymentMethod *string        `json:"formaPagamento"`
}

type CancelSaleRequest struct {
	Reason string `json:"motivo"`
}
