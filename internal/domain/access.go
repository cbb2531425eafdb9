package domain

type AccessStatus string

const (
	AccessActive    AccessStatus = "ativo"
	AccessPending   AccessStatus = "pendente"
	AccessSuspended AccessStatus = "suspenso"
	AccessCancelled AccessStatus = "cancelado"
	AccessError     AccessStatus = "erro"
)

// NoExpiryDays é devolvido em DaysRemaining para contas sem vencimento
const NoExpiryDays = 99999

type AccessResult struct {
	CanUse        bool         `json:"podeUsar"`
	Status        AccessStatus `json:"status"`
	DaysRemaining int          `json:"diasRestantes"`
	Message       string       `json:"mensagem"`
	ShowWarning   bool         `json:"mostrarAviso"`
}
