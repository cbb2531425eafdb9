package domain

import "time"

const (
	SenderAdmin    = "admin"
	SenderOperator = "operador"
)

type ChatMessage struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operadorId"`
	Sender     string    `json:"remetente"`
	Text       string    `json:"texto"`
	Read       bool      `json:"lida"`
	CreatedAt  time.Time `json:"createdAt"`
	// Pending marca mensagens gravadas apenas localmente, aguardando envio
	Pending bool `json:"pendente,omitempty"`
}

type SendMessageRequest struct {
	Text string `json:"texto"`
}
