package domain

import "time"

type Company struct {
	OperatorID        string    `json:"operadorId"`
	Name              string    `json:"razaoSocial"`
	TradeName         string    `json:"nomeFantasia"`
	CNPJ              string    `json:"cnpj"`
	StateRegistration string    `json:"inscricaoEstadual"`
	Address           string    `json:"endereco"`
	Number            string    `json:"numero"`
	District          string    `json:"bairro"`
	City              string    `json:"cidade"`
	State             string    `json:"estado"`
	ZipCode           string    `json:"cep"`
	Phone             string    `json:"telefone"`
	Email             string    `json:"email"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DisplayName prefere o nome fantasia quando houver
func (c *Company) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.Name
}
