package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session é o estado da sessão do operador, criado no login e revogado no logout.
// Viaja assinado no JWT e é colocado no contexto da requisição pelo middleware.
type Session struct {
	ID             string    `json:"id"`
	OperatorID     string    `json:"operadorId"`
	OperatorName   string    `json:"operadorNome"`
	Email          string    `json:"email"`
	IsAdmin        bool      `json:"isAdmin"`
	NoSubscription bool      `json:"semAssinatura"`
	IssuedAt       time.Time `json:"emitidaEm"`
	ExpiresAt      time.Time `json:"expiraEm"`
}

type Claims struct {
	OperatorID     string `json:"operador_id"`
	OperatorName   string `json:"operador_nome"`
	Email          string `json:"email"`
	IsAdmin        bool   `json:"is_admin"`
	NoSubscription bool   `json:"sem_assinatura"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() *Session {
	session := &Session{
		ID:             c.ID,
		OperatorID:     c.OperatorID,
		OperatorName:   c.OperatorName,
		Email:          c.Email,
		IsAdmin:        c.IsAdmin,
		NoSubscription: c.NoSubscription,
	}
	if c.IssuedAt != nil {
		session.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"sessao"`
}
