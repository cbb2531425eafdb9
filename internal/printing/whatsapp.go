package printing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

const brazilCountryCode = "55"

// RenderWhatsAppText monta o comprovante em texto simples, com negrito do WhatsApp
func RenderWhatsAppText(sale *domain.Sale, company *domain.Company) string {
	var b strings.Builder

	name := "PDV"
	if company != nil && company.DisplayName() != "" {
		name = company.DisplayName()
	}

	fmt.Fprintf(&b, "*%s*\n", name)
	fmt.Fprintf(&b, "Venda nº %d - %s\n\n", sale.Number, sale.CreatedAt.Format("02/01/2006 15:04"))

	for _, item := range sale.Items {
		fmt.Fprintf(&b, "%dx %s - %s\n", item.Quantity, item.Name, utils.FormatBRL(item.Subtotal))
	}

	fmt.Fprintf(&b, "\n*Total: %s*\n", utils.FormatBRL(sale.Total))
	if sale.PaymentMethod != nil && *sale.PaymentMethod != "" {
		fmt.Fprintf(&b, "Pagamento: %s\n", *sale.PaymentMethod)
	}
	if sale.IsCancelled() {
		b.WriteString("*VENDA CANCELADA*\n")
	}
	b.WriteString("\nObrigado pela preferência!")

	return b.String()
}

// WhatsAppLink monta o link wa.me; números nacionais sem DDI recebem o 55
func WhatsAppLink(phone, text string) string {
	digits := utils.OnlyDigits(phone)
	if len(digits) == 10 || len(digits) == 11 {
		digits = brazilCountryCode + digits
	}

	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	if digits == "" {
		return "https://wa.me/?text=" + escaped
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, escaped)
}
