package handler

import (
	"net/http"
	"strconv"

	"github.com/vfg2006/pdv-api/internal/domain"
)

// ListProducts aceita os filtros codigo (código de barras), busca (prefixo do nome)
// e estoque_baixo=true; sem filtro lista o catálogo do operador.
func ListProducts(service Inventory) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		query := r.URL.Query()

		if barcode := query.Get("codigo"); barcode != "" {
			product, err := service.GetByBarcode(tenantOf(r, session), barcode)
			if err != nil {
				fail(w, r, err)
				return
			}
			ok(w, product)
			return
		}

		var (
			products []*domain.Product
			err      error
		)

		owner := scopeOf(r, session)
		lowStock, _ := strconv.ParseBool(query.Get("estoque_baixo"))
		switch {
		case lowStock:
			products, err = service.LowStock(owner)
		case query.Has("busca"):
			products, err = service.SearchByName(owner, query.Get("busca"))
		default:
			products, err = service.ListProducts(owner)
		}
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, products)
	})
}

func GetProduct(service Inventory) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		product, err := service.GetProduct(scopeOf(r, session), param(r, "id"))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, product)
	})
}

func CreateProduct(service Inventory) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var product domain.Product
		if !decode(w, r, &product) {
			return
		}

		saved, err := service.CreateProduct(r.Context(), session, &product)
		if err != nil {
			fail(w, r, err)
			return
		}

		created(w, saved)
	})
}

func UpdateProduct(service Inventory) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var product domain.Product
		if !decode(w, r, &product) {
			return
		}
		product.ID = param(r, "id")

		saved, err := service.UpdateProduct(r.Context(), session, &product)
		if err != nil {
			fail(w, r, err)
			return
		}

		ok(w, saved)
	})
}

func DeleteProduct(service Inventory) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		if err := service.DeleteProduct(r.Context(), session, param(r, "id")); err != nil {
			fail(w, r, err)
			return
		}
		noContent(w)
	})
}
