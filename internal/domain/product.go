package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"nome"`
	Barcode     string    `json:"codigoBarras"`
	Price       float64   `json:"preco"`
	Stock       int       `json:"estoque"`
	MinStock    int       `json:"estoqueMinimo"`
	Category    *string   `json:"categoria,omitempty"`
	Description *string   `json:"descricao,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
