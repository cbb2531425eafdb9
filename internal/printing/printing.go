// Package printing gera os documentos impressos da venda e o texto para WhatsApp
package printing

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

const (
	KindReceipt       = "recibo"
	KindFiscalReceipt = "nfce"
	KindInvoice       = "nota"
)

var ErrUnknownKind = errors.New("tipo de documento desconhecido")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("printing").
		Funcs(template.FuncMap{
			"brl": utils.FormatBRL,
			"pct": formatPercent,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

func formatPercent(rate float64) string {
	return strings.Replace(fmt.Sprintf("%.2f%%", rate), ".", ",", 1)
}

type TaxBreakdown struct {
	ICMSRate   float64 `json:"aliquotaIcms"`
	PISRate    float64 `json:"aliquotaPis"`
	COFINSRate float64 `json:"aliquotaCofins"`
	ICMS       float64 `json:"icms"`
	PIS        float64 `json:"pis"`
	COFINS     float64 `json:"cofins"`
	Total      float64 `json:"total"`
}

// ComputeTaxes aplica as alíquotas configuradas (ou as padrão) sobre o total da venda
func ComputeTaxes(total float64, fiscal *domain.FiscalConfig) TaxBreakdown {
	icms, pis, cofins := fiscal.TaxRates()
	t := TaxBreakdown{
		ICMSRate:   icms,
		PISRate:    pis,
		COFINSRate: cofins,
		ICMS:       utils.Percent(total, icms),
		PIS:        utils.Percent(total, pis),
		COFINS:     utils.Percent(total, cofins),
	}
	t.Total = utils.SumMoney(t.ICMS, t.PIS, t.COFINS)
	return t
}

type fiscalView struct {
	Number             int
	Series             int
	AccessKey          string
	AccessKeyFormatted string
	ConsultURL         string
	QRCodeURL          string
}

type document struct {
	Title         string
	Company       *domain.Company
	CNPJ          string
	Address       string
	Items         []domain.SaleItem
	Total         float64
	PaymentMethod string
	Cancelled     bool
	CancelReason  string
	Number        int
	Date          string
	OperatorName  string
	Homologation  bool
	Taxes         TaxBreakdown
	Fiscal        *fiscalView
}

func formatCNPJ(cnpj string) string {
	d := utils.OnlyDigits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
}

func formatAddress(c *domain.Company) string {
	parts := make([]string, 0, 4)
	street := strings.TrimSpace(c.Address)
	if street != "" && c.Number != "" {
		street += ", " + c.Number
	}
	for _, p := range []string{street, c.District} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if c.City != "" {
		city := c.City
		if c.State != "" {
			city += "/" + c.State
		}
		parts = append(parts, city)
	}
	return strings.Join(parts, " - ")
}

func newDocument(title string, sale *domain.Sale, company *domain.Company) *document {
	if company == nil || company.DisplayName() == "" {
		company = &domain.Company{Name: "PDV"}
	}

	doc := &document{
		Title:        title,
		Company:      company,
		CNPJ:         formatCNPJ(company.CNPJ),
		Address:      formatAddress(company),
		Items:        sale.Items,
		Total:        sale.Total,
		Cancelled:    sale.IsCancelled(),
		Number:       sale.Number,
		Date:         sale.CreatedAt.Format("02/01/2006 15:04"),
		OperatorName: sale.OperatorName,
	}
	if sale.PaymentMethod != nil {
		doc.PaymentMethod = *sale.PaymentMethod
	}
	if sale.CancelReason != nil {
		doc.CancelReason = *sale.CancelReason
	}
	return doc
}

func execute(name string, doc *document) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, doc); err != nil {
		return "", fmt.Errorf("erro ao montar %s: %w", name, err)
	}
	return buf.String(), nil
}

func RenderReceipt(sale *domain.Sale, company *domain.Company) (string, error) {
	doc := newDocument(fmt.Sprintf("Recibo venda %d", sale.Number), sale, company)
	return execute("receipt.html", doc)
}

// RenderFiscalReceipt gera o cupom no formato NFC-e com chave de acesso simulada.
// O documento é sempre marcado como sem valor fiscal.
func RenderFiscalReceipt(sale *domain.Sale, company *domain.Company, fiscal *domain.FiscalConfig) (string, error) {
	doc := newDocument(fmt.Sprintf("NFC-e venda %d", sale.Number), sale, company)

	series, environment := 1, domain.EnvironmentHomologation
	if fiscal != nil {
		if fiscal.Series > 0 {
			series = fiscal.Series
		}
		if fiscal.Environment != "" {
			environment = fiscal.Environment
		}
	}

	key := AccessKey(AccessKeyParams{
		UF:       doc.Company.State,
		IssuedAt: sale.CreatedAt,
		CNPJ:     doc.Company.CNPJ,
		Series:   series,
		Number:   sale.Number,
		Code:     numericCode(sale.ID),
	})

	tpAmb := 2
	if environment == domain.EnvironmentProduction {
		tpAmb = 1
	}
	uf := strings.ToLower(doc.Company.State)
	if uf == "" {
		uf = "sp"
	}

	doc.Homologation = tpAmb == 2
	doc.Taxes = ComputeTaxes(sale.Total, fiscal)
	doc.Fiscal = &fiscalView{
		Number:             sale.Number,
		Series:             series,
		AccessKey:          key,
		AccessKeyFormatted: FormatAccessKey(key),
		ConsultURL:         fmt.Sprintf("www.sefaz.%s.gov.br/nfce/consulta", uf),
		QRCodeURL:          fmt.Sprintf("https://www.sefaz.%s.gov.br/nfce/qrcode?p=%s|2|%d", uf, key, tpAmb),
	}

	return execute("fiscal_receipt.html", doc)
}

// RenderInvoice gera a nota discriminada com ICMS, PIS e COFINS sobre o total
func RenderInvoice(sale *domain.Sale, company *domain.Company, fiscal *domain.FiscalConfig) (string, error) {
	doc := newDocument(fmt.Sprintf("Nota venda %d", sale.Number), sale, company)
	doc.Taxes = ComputeTaxes(sale.Total, fiscal)
	return execute("invoice.html", doc)
}

// Render escolhe o documento pelo tipo pedido na rota de impressão
func Render(kind string, sale *domain.Sale, company *domain.Company, fiscal *domain.FiscalConfig) (string, error) {
	switch kind {
	case KindReceipt:
		return RenderReceipt(sale, company)
	case KindFiscalReceipt:
		return RenderFiscalReceipt(sale, company, fiscal)
	case KindInvoice:
		return RenderInvoice(sale, company, fiscal)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
