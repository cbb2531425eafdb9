package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
)

// AdminOnly é um middleware que permite acesso apenas para administradores
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
				return
			}

			if !session.IsAdmin {
				logrus.WithField("operador_id", session.OperatorID).Warning("Acesso de administrador negado")
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccess bloqueia com 402 o operador cuja assinatura não permite uso.
// Administradores passam direto. Sem verificador a aplicação roda só local e não há o que checar.
// Quando a verificação falha por erro, vale o último resultado conhecido do operador.
func RequireAccess(verifier accessing.AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
				return
			}

			if session.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}

			result := verifier.VerifyAccess(r.Context(), session.OperatorID)
			if result.Status == domain.AccessError {
				if last, err := verifier.LastKnown(session.OperatorID); err == nil && last != nil {
					result = last
				}
			}

			if !result.CanUse {
				logrus.WithFields(logrus.Fields{
					"operador_id": session.OperatorID,
					"status":      result.Status,
				}).Info("Acesso bloqueado pela assinatura")
				apiErrors.WriteError(w, apiErrors.ErrAccessBlocked, result.Message, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
