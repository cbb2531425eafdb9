package apiErrors

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Códigos de erro da API
const (
	// Erros de autenticação
	ErrInvalidCredentials    = "AUTH_001" // Credenciais inválidas
	ErrUserDisabled          = "AUTH_002" // Operador desativado
	ErrUserNotFound          = "AUTH_003" // Operador não encontrado
	ErrInvalidRecoveryCode   = "AUTH_004" // Código de recuperação inválido ou expirado
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrExpiredToken          = "AUTH_007" // Token expirado
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes
	ErrUserAlreadyExists     = "AUTH_009" // E-mail já cadastrado

	// Erros de assinatura
	ErrAccessBlocked = "ACC_001" // Assinatura pendente, suspensa ou cancelada

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrWeakPassword        = "VAL_004" // Senha curta demais

	// Erros de negócio
	ErrNotFound          = "PDV_001" // Registro não encontrado
	ErrEmptyCart         = "PDV_002" // Carrinho vazio
	ErrInsufficientStock = "PDV_003" // Estoque insuficiente
	ErrSaleNotCompleted  = "PDV_004" // Venda já cancelada
	ErrConflict          = "PDV_005" // Registro duplicado
	ErrSyncInProgress    = "PDV_006" // Sincronização já em andamento

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrRemoteUnavailable = "SRV_003" // Banco remoto indisponível
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidCredentials:    http.StatusUnauthorized,
	ErrUserDisabled:          http.StatusForbidden,
	ErrUserNotFound:          http.StatusNotFound,
	ErrInvalidRecoveryCode:   http.StatusBadRequest,
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrUserAlreadyExists:     http.StatusConflict,
	ErrAccessBlocked:         http.StatusPaymentRequired,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrWeakPassword:          http.StatusBadRequest,
	ErrNotFound:              http.StatusNotFound,
	ErrEmptyCart:             http.StatusBadRequest,
	ErrInsufficientStock:     http.StatusConflict,
	ErrSaleNotCompleted:      http.StatusConflict,
	ErrConflict:              http.StatusConflict,
	ErrSyncInProgress:        http.StatusConflict,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrRemoteUnavailable:     http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`              // Código de erro para o cliente
	Message string `json:"message,omitempty"` // Mensagem descritiva (opcional)
	Details any    `json:"details,omitempty"` // Detalhes adicionais (opcional)
}

func (e APIError) Error() string {
	return e.Code + ": " + e.Message
}

// StatusFor devolve o status HTTP do código; códigos desconhecidos viram 500
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(apiErr)
}

// FromError cria um erro de API a partir de um erro Go
func FromError(err error, code string) APIError {
	if err == nil {
		return APIError{
			Code:    ErrInternalServer,
			Message: "Erro desconhecido",
		}
	}

	return APIError{
		Code:    code,
		Message: err.Error(),
	}
}

// Coder é implementado pelos erros tipados dos casos de uso
type Coder interface {
	ErrorCode() string
}

// CodeOf extrai o código de API da cadeia do erro; sem código vira erro interno
func CodeOf(err error) string {
	var coder Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ErrInternalServer
}

// Write responde com o código e a mensagem extraídos do erro
func Write(w http.ResponseWriter, err error) {
	WriteError(w, CodeOf(err), err.Error(), nil)
}
