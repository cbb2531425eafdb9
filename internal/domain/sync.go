package domain

import "time"

type SyncReport struct {
	ProductsPulled int       `json:"produtosRecebidos"`
	SalesPulled    int       `json:"vendasRecebidas"`
	ProductsPushed int       `json:"produtosEnviados"`
	SalesPushed    int       `json:"vendasEnviadas"`
	Errors         int       `json:"erros"`
	Conflicts      int       `json:"conflitos"`
	StartedAt      time.Time `json:"iniciadoEm"`
	FinishedAt     time.Time `json:"finalizadoEm"`
}

func (r *SyncReport) Pushed() int {
	return r.ProductsPushed + r.SalesPushed
}
