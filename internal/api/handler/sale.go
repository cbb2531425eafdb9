package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/internal/printing"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

type nextNumberResponse struct {
	Number int `json:"proximoNumero"`
}

type whatsAppResponse struct {
	Text string `json:"texto"`
	Link string `json:"link"`
}

// ListSales devolve as vendas do operador logado. Administradores veem todas,
// ou as de um operador com o parâmetro "operador".
func ListSales(service Cashier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		operatorID := session.OperatorID
		if session.IsAdmin {
			operatorID = r.URL.Query().Get("operador")
		}

		sales, err := service.ListSales(operatorID)
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, sales)
	})
}

// loadSale busca a venda respeitando o dono; operadores não enxergam vendas de outros
func loadSale(w http.ResponseWriter, r *http.Request, service Cashier, session *domain.Session) (*domain.Sale, bool) {
	sale, err := service.GetSale(param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return nil, false
	}

	if !session.IsAdmin && sale.OperatorID != session.OperatorID {
		apiErrors.WriteError(w, apiErrors.ErrNotFound, "Venda não encontrada", nil)
		return nil, false
	}

	return sale, true
}

func GetSale(service Cashier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		sale, found := loadSale(w, r, service, session)
		if !found {
			return
		}
		ok(w, sale)
	})
}

func CreateSale(service Cashier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var req domain.CheckoutRequest
		if !decode(w, r, &req) {
			return
		}

		sale, err := service.Checkout(r.Context(), session, &req)
		if err != nil {
			fail(w, r, err)
			return
		}

		created(w, sale)
	})
}

func CancelSale(service Cashier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		if _, found := loadSale(w, r, service, session); !found {
			return
		}

		var req domain.CancelSaleRequest
		if !decode(w, r, &req) {
			return
		}

		sale, err := service.CancelSale(r.Context(), session, param(r, "id"), req.Reason)
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, sale)
	})
}

func NextSaleNumber(service Cashier) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		next, err := service.NextSaleNumber(tenantOf(r, session))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, nextNumberResponse{Number: next})
	})
}

// PrintSale devolve o documento HTML da venda: recibo, nfce ou nota
func PrintSale(sales Cashier, company Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		sale, found := loadSale(w, r, sales, session)
		if !found {
			return
		}

		issuer, err := company.GetCompany(r.Context(), sale.OperatorID)
		if err != nil {
			fail(w, r, err)
			return
		}

		fiscal, err := company.GetFiscalConfig(r.Context(), sale.OperatorID)
		if err != nil {
			fail(w, r, err)
			return
		}

		doc, err := printing.Render(param(r, "kind"), sale, issuer, fiscal)
		if errors.Is(err, printing.ErrUnknownKind) {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
			return
		}
		if err != nil {
			fail(w, r, err)
			return
		}

		utils.WriteHTML(w, doc)
	})
}

// ShareSale monta o texto do recibo e o link do WhatsApp para o telefone informado
func ShareSale(sales Cashier, company Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		sale, found := loadSale(w, r, sales, session)
		if !found {
			return
		}

		issuer, err := company.GetCompany(r.Context(), sale.OperatorID)
		if err != nil {
			fail(w, r, err)
			return
		}

		text := printing.RenderWhatsAppText(sale, issuer)
		ok(w, whatsAppResponse{
			Text: text,
			Link: printing.WhatsAppLink(r.URL.Query().Get("telefone"), text),
		})
	})
}
