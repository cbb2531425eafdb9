package handler

import (
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
)

type activateRequest struct {
	Days int `json:"dias"`
}

func ListOperators(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operators, err := service.ListOperators(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, operators)
	}
}

func GetOperator(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator, err := service.GetOperator(r.Context(), param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, operator)
	}
}

func CreateOperator(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.CreateOperatorRequest
		if !decode(w, r, &req) {
			return
		}

		operator, err := service.CreateOperator(r.Context(), &req)
		if err != nil {
			fail(w, r, err)
			return
		}
		created(w, operator)
	}
}

func UpdateOperator(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.UpdateOperatorRequest
		if !decode(w, r, &req) {
			return
		}
		req.ID = param(r, "id")

		operator, err := service.UpdateOperator(r.Context(), &req)
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, operator)
	}
}

func SuspendOperator(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator, err := service.SuspendOperator(r.Context(), param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, operator)
	}
}

// ActivateOperator reativa a conta; dias vazio ou zero mantém o vencimento atual
func ActivateOperator(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activateRequest
		if r.ContentLength > 0 && !decode(w, r, &req) {
			return
		}

		operator, err := service.ActivateOperator(r.Context(), param(r, "id"), req.Days)
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, operator)
	}
}

func DeleteOperator(service Admin) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		if err := service.DeleteOperator(r.Context(), session, param(r, "id")); err != nil {
			fail(w, r, err)
			return
		}
		noContent(w)
	})
}

func ListEarnings(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		earnings, err := service.ListEarnings(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, earnings)
	}
}

func EarningsSummary(service Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := service.EarningsSummary(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, summary)
	}
}
