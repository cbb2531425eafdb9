package admin

import (
	"errors"
	"fmt"
)

var (
	ErrOperatorNotFound    = errors.New("operador não encontrado")
	ErrMissingRequiredData = errors.New("nome, email e senha são obrigatórios")
	ErrInvalidPlan         = errors.New("forma de pagamento inválida")
	ErrInvalidDays         = errors.New("dias de assinatura não podem ser negativos")
	ErrEmailInUse          = errors.New("email já cadastrado")
	ErrCannotDeleteSelf    = errors.New("o administrador não pode excluir a própria conta")
	ErrDatabaseOperation   = errors.New("erro ao realizar operação no banco de dados")
)

// AdminError carrega o código de API junto ao erro de administração
type AdminError struct {
	Err        error
	Code       string
	OperatorID string
	Details    string
}

func (e *AdminError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AdminError) Unwrap() error {
	return e.Err
}

func (e *AdminError) ErrorCode() string {
	return e.Code
}

func NewAdminError(err error, code string, operatorID string, details string) *AdminError {
	return &AdminError{
		Err:        err,
		Code:       code,
		OperatorID: operatorID,
		Details:    details,
	}
}
