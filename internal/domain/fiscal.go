package domain

import "time"

const (
	EnvironmentHomologation = "homologacao"
	EnvironmentProduction   = "producao"
)

// Alíquotas padrão aplicadas quando a configuração fiscal não define valores
const (
	DefaultICMSRate   = 18.0
	DefaultPISRate    = 1.65
	DefaultCOFINSRate = 7.6
)

type FiscalConfig struct {
	OperatorID  string    `json:"operadorId"`
	Series      int       `json:"serieNfce"`
	NextNumber  int       `json:"proximoNumeroNfce"`
	Environment string    `json:"ambiente"`
	CSCID       string    `json:"cscId"`
	CSCToken    string    `json:"cscToken"`
	ICMSRate    float64   `json:"aliquotaIcms"`
	PISRate     float64   `json:"aliquotaPis"`
	COFINSRate  float64   `json:"aliquotaCofins"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaxRates devolve as alíquotas efetivas (ICMS, PIS, COFINS)
func (f *FiscalConfig) TaxRates() (icms, pis, cofins float64) {
	icms, pis, cofins = DefaultICMSRate, DefaultPISRate, DefaultCOFINSRate
	if f == nil {
		return
	}
	if f.ICMSRate > 0 {
		icms = f.ICMSRate
	}
	if f.PISRate > 0 {
		pis = f.PISRate
	}
	if f.COFINSRate > 0 {
		cofins = f.COFINSRate
	}
	return
}
