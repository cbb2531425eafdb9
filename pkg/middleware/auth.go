package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
)

type contextKey string

const (
	ContextKeySession contextKey = "session"
	ContextKeyToken   contextKey = "token"
)

// Rotas acessíveis sem sessão
var publicPaths = map[string]bool{
	"/healthcheck":       true,
	"/metrics":           true,
	"/v1/login":          true,
	"/v1/signup":         true,
	"/v1/plans":          true,
	"/v1/recovery/code":  true,
	"/v1/recovery/reset": true,
}

// TokenValidator é a parte do autenticador usada pelo middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (*domain.Session, error)
}

func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Token de acesso é obrigatório", nil)
				return
			}

			session, err := validator.ValidateToken(tokenString)
			if err != nil {
				code := apiErrors.ErrInvalidToken
				if errors.Is(err, authenticating.ErrExpiredToken) {
					code = apiErrors.ErrExpiredToken
				}
				apiErrors.WriteError(w, code, err.Error(), nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, session)
			ctx = context.WithValue(ctx, ContextKeyToken, tokenString)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header || token == "" {
		return "", false
	}
	return token, true
}

// SessionFromContext devolve a sessão colocada pelo AuthMiddleware
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(ContextKeySession).(*domain.Session)
	return session, ok && session != nil
}

// TokenFromContext devolve o token bruto da requisição, usado no logout
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyToken).(string)
	return token
}

// WithSession coloca a sessão no contexto; usado pelos testes de handlers
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, session)
}
