package messaging

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage     = errors.New("mensagem vazia")
	ErrForbiddenThread  = errors.New("operador só pode acessar a própria conversa")
	ErrOperatorRequired = errors.New("operador da conversa é obrigatório")
	ErrStoreOperation   = errors.New("erro ao acessar o armazenamento local")
)

// MessageError carrega o código de API junto ao erro do chat
type MessageError struct {
	Err     error
	Code    string
	Details string
}

func (e *MessageError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

func (e *MessageError) ErrorCode() string {
	return e.Code
}

func NewMessageError(err error, code string, details string) *MessageError {
	return &MessageError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
