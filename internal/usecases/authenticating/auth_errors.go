package authenticating

import (
	"errors"
	"fmt"
)

var (
	// Erros de autenticação
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrUserNotFound       = errors.New("operador não encontrado")
	ErrInvalidToken       = errors.New("token inválido")
	ErrExpiredToken       = errors.New("token expirado")
	ErrRevokedToken       = errors.New("sessão encerrada")
	ErrUserAlreadyExists  = errors.New("email já cadastrado")
	ErrInvalidRecovery    = errors.New("código de recuperação inválido ou expirado")

	// Erros de validação
	ErrMissingRequiredData = errors.New("dados obrigatórios ausentes")
	ErrInvalidEmail        = errors.New("email inválido")
	ErrWeakPassword        = errors.New("a senha deve ter pelo menos 6 caracteres")
	ErrInvalidPlan         = errors.New("forma de pagamento inválida")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("erro ao realizar operação no banco de dados")
)

// AuthError é um erro com contexto adicional para autenticação
type AuthError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	OperatorID string // Operador envolvido (quando aplicável)
	Details    string // Detalhes adicionais
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) ErrorCode() string {
	return e.Code
}

// IsCredentialsError verifica se o erro está relacionado a credenciais inválidas
func IsCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserNotFound)
}

// IsAuthorizationError verifica se o erro está relacionado a problemas com o token
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrRevokedToken)
}

func NewAuthError(baseErr error, code string, details string) *AuthError {
	return &AuthError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}

func NewOperatorAuthError(baseErr error, code string, operatorID string, details string) *AuthError {
	return &AuthError{
		Err:        baseErr,
		Code:       code,
		OperatorID: operatorID,
		Details:    details,
	}
}
