package handler

import (
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/pkg/middleware"
)

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		if !decode(w, r, &req) {
			return
		}

		resp, err := service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, resp)
	}
}

func Logout(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := service.Logout(middleware.TokenFromContext(r.Context())); err != nil {
			fail(w, r, err)
			return
		}
		noContent(w)
	}
}

func SignUp(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.SignUpRequest
		if !decode(w, r, &req) {
			return
		}

		operator, err := service.SignUp(r.Context(), &req)
		if err != nil {
			fail(w, r, err)
			return
		}

		created(w, operator)
	}
}

// RequestRecoveryCode devolve o código na resposta; não há envio de email
func RequestRecoveryCode(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.RecoveryRequest
		if !decode(w, r, &req) {
			return
		}

		code, err := service.RequestRecoveryCode(r.Context(), req.Email)
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, code)
	}
}

func ResetPassword(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.ResetPasswordRequest
		if !decode(w, r, &req) {
			return
		}

		if err := service.ResetPassword(r.Context(), &req); err != nil {
			fail(w, r, err)
			return
		}

		noContent(w)
	}
}

type meResponse struct {
	Session *domain.Session      `json:"sessao"`
	Access  *domain.AccessResult `json:"assinatura"`
}

// MyAccess devolve a sessão e a situação da assinatura do operador logado
func MyAccess(verifier accessing.AccessVerifier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		resp := meResponse{Session: session}

		if verifier == nil {
			resp.Access = &domain.AccessResult{
				CanUse:        true,
				Status:        domain.AccessActive,
				DaysRemaining: domain.NoExpiryDays,
				Message:       "Modo local, sem verificação de assinatura",
			}
			ok(w, resp)
			return
		}

		resp.Access = verifier.VerifyAccess(r.Context(), session.OperatorID)
		if resp.Access.Status == domain.AccessError {
			if last, err := verifier.LastKnown(session.OperatorID); err == nil && last != nil {
				resp.Access = last
			}
		}

		ok(w, resp)
	})
}
