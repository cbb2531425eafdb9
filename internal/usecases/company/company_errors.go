package company

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCNPJ        = errors.New("CNPJ deve ter 14 dígitos")
	ErrInvalidState       = errors.New("UF deve ter 2 letras")
	ErrInvalidEnvironment = errors.New("ambiente deve ser homologacao ou producao")
	ErrInvalidSeries      = errors.New("série e próximo número da NFC-e devem ser positivos")
	ErrInvalidTaxRate     = errors.New("alíquotas não podem ser negativas")
	ErrStoreOperation     = errors.New("erro ao acessar o armazenamento local")
)

// CompanyError carrega o código de API junto ao erro de cadastro da empresa
type CompanyError struct {
	Err     error
	Code    string
	Details string
}

func (e *CompanyError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *CompanyError) Unwrap() error {
	return e.Err
}

func (e *CompanyError) ErrorCode() string {
	return e.Code
}

func NewCompanyError(err error, code string, details string) *CompanyError {
	return &CompanyError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
