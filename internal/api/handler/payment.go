package handler

import (
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
)

type daysPurchasedResponse struct {
	OperatorID string `json:"operadorId"`
	Days       int    `json:"diasComprados"`
}

func ListPlans(service Billing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok(w, service.Plans())
	}
}

func ListPayments(service Billing) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		payments, err := service.ListPayments(r.Context(), tenantOf(r, session))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, payments)
	})
}

// CreatePayment registra uma cobrança pendente. Operadores só criam cobranças para si.
func CreatePayment(service Billing) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var req domain.CreatePaymentRequest
		if !decode(w, r, &req) {
			return
		}
		if !session.IsAdmin || req.OperatorID == "" {
			req.OperatorID = session.OperatorID
		}

		payment, err := service.CreatePayment(r.Context(), &req)
		if err != nil {
			fail(w, r, err)
			return
		}
		created(w, payment)
	})
}

func ConfirmPayment(service Billing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payment, err := service.ConfirmPayment(r.Context(), param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, payment)
	}
}

func DaysPurchased(service Billing) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		operatorID := tenantOf(r, session)

		days, err := service.DaysPurchasedTotal(operatorID)
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, daysPurchasedResponse{OperatorID: operatorID, Days: days})
	})
}
