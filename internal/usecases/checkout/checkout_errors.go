package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("carrinho vazio")
	ErrInvalidQuantity   = errors.New("quantidade deve ser maior que zero")
	ErrProductNotFound   = errors.New("produto não encontrado")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrSaleNotFound      = errors.New("venda não encontrada")
	ErrSaleNotCompleted  = errors.New("apenas vendas concluídas podem ser canceladas")
	ErrReasonRequired    = errors.New("motivo do cancelamento é obrigatório")
	ErrStoreOperation    = errors.New("erro ao acessar o armazenamento local")
)

// SaleError carrega o código de API junto ao erro da venda
type SaleError struct {
	Err     error
	Code    string
	SaleID  string
	Details string
}

func (e *SaleError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

func (e *SaleError) ErrorCode() string {
	return e.Code
}

func NewSaleError(err error, code string, details string) *SaleError {
	return &SaleError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}

func NewSaleErrorWithID(err error, code string, saleID string, details string) *SaleError {
	return &SaleError{
		Err:     err,
		Code:    code,
		SaleID:  saleID,
		Details: details,
	}
}
