package handler

import (
	"net/http"

	"github.com/vfg2006/pdv-api/internal/domain"
)

func GetCompany(service Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		company, err := service.GetCompany(r.Context(), tenantOf(r, session))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, company)
	})
}

func SaveCompany(service Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var company domain.Company
		if !decode(w, r, &company) {
			return
		}

		saved, err := service.SaveCompany(tenantOf(r, session), &company)
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, saved)
	})
}

func GetFiscalConfig(service Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		cfg, err := service.GetFiscalConfig(r.Context(), tenantOf(r, session))
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, cfg)
	})
}

func SaveFiscalConfig(service Company) http.HandlerFunc {
	return authenticated(func(w http.ResponseWriter, r *http.Request, session *domain.Session) {
		var cfg domain.FiscalConfig
		if !decode(w, r, &cfg) {
			return
		}

		saved, err := service.SaveFiscalConfig(tenantOf(r, session), &cfg)
		if err != nil {
			fail(w, r, err)
			return
		}
		ok(w, saved)
	})
}
