package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/log"
	"github.com/vfg2006/pdv-api/pkg/middleware"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type withSession func(w http.ResponseWriter, r *http.Request, session *domain.Session)

// authenticated garante a sessão antes de chamar o handler
func authenticated(fn withSession) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Operador não autenticado", nil)
			return
		}
		fn(w, r, session)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logrus.WithError(err).Debug("Corpo da requisição inválido")
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
		return false
	}
	return true
}

func param(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

// tenantOf devolve o operador dono dos dados da requisição.
// Administradores podem consultar outro operador pelo parâmetro "operador".
func tenantOf(r *http.Request, session *domain.Session) string {
	if session.IsAdmin {
		if operatorID := r.URL.Query().Get("operador"); operatorID != "" {
			return operatorID
		}
	}
	return session.OperatorID
}

// scopeOf filtra listagens de catálogo: administradores sem "operador" enxergam todos
func scopeOf(r *http.Request, session *domain.Session) string {
	if session.IsAdmin {
		return r.URL.Query().Get("operador")
	}
	return session.OperatorID
}

// fail registra e escreve o erro do caso de uso
func fail(w http.ResponseWriter, r *http.Request, err error) {
	code := apiErrors.CodeOf(err)
	if apiErrors.StatusFor(code) >= http.StatusInternalServerError {
		log.ForContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Erro ao processar requisição")
	}
	apiErrors.Write(w, err)
}

func ok(w http.ResponseWriter, body any) {
	utils.WriteJSON(w, http.StatusOK, body)
}

func created(w http.ResponseWriter, body any) {
	utils.WriteJSON(w, http.StatusCreated, body)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
