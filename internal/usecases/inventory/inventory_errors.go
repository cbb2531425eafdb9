package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("produto não encontrado")
	ErrNameRequired     = errors.New("nome do produto é obrigatório")
	ErrInvalidPrice     = errors.New("preço não pode ser negativo")
	ErrInvalidStock     = errors.New("estoque não pode ser negativo")
	ErrDuplicateBarcode = errors.New("código de barras já cadastrado")
	ErrStoreOperation   = errors.New("erro ao acessar o armazenamento local")
)

// InventoryError carrega o código de API junto ao erro de estoque
type InventoryError struct {
	Err       error
	Code      string
	ProductID string
	Details   string
}

func (e *InventoryError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

func (e *InventoryError) ErrorCode() string {
	return e.Code
}

func NewInventoryError(err error, code string, productID string, details string) *InventoryError {
	return &InventoryError{
		Err:       err,
		Code:      code,
		ProductID: productID,
		Details:   details,
	}
}
