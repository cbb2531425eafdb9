package billing

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound  = errors.New("pagamento não encontrado")
	ErrOperatorNotFound = errors.New("operador não encontrado")
	ErrAlreadyPaid      = errors.New("pagamento já confirmado")
	ErrInvalidPlan      = errors.New("forma de pagamento inválida")
	ErrInvalidAmount    = errors.New("valor e dias comprados devem ser positivos")
	ErrOperatorRequired = errors.New("operador é obrigatório")
	ErrStoreOperation   = errors.New("erro ao acessar o armazenamento local")
)

// BillingError carrega o código de API junto ao erro de cobrança
type BillingError struct {
	Err       error
	Code      string
	PaymentID string
	Details   string
}

func (e *BillingError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *BillingError) Unwrap() error {
	return e.Err
}

func (e *BillingError) ErrorCode() string {
	return e.Code
}

func NewBillingError(err error, code string, paymentID string, details string) *BillingError {
	return &BillingError{
		Err:       err,
		Code:      code,
		PaymentID: paymentID,
		Details:   details,
	}
}
