package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/internal/domain"
)

func sampleSale() *domain.Sale {
	pix := "pix"
	return &domain.Sale{
		ID:           "venda-1",
		Number:       42,
		OperatorName: "Caixa 1",
		Items: []domain.SaleItem{
			{ProductID: "p1", Name: "Arroz 5kg", Quantity: 2, UnitPrice: 25, Subtotal: 50},
			{ProductID: "p2", Name: "<script>alert(1)</script>", Quantity: 1, UnitPrice: 50, Subtotal: 50},
		},
		Total:         100,
		PaymentMethod: &pix,
		Status:        domain.SaleStatusCompleted,
		CreatedAt:     time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
	}
}

func sampleCompany() *domain.Company {
	return &domain.Company{
		Name:      "Mercado Exemplo LTDA",
		TradeName: "Mercadinho",
		CNPJ:      "12345678000190",
		Address:   "Rua das Flores",
		Number:    "100",
		City:      "Campinas",
		State:     "SP",
		Phone:     "(19) 99999-0000",
	}
}

func TestMod11(t *testing.T) {
	tests := []struct {
		digits string
		want   int
	}{
		{"1234", 3},
		{"0000", 0},
		{"1", 9},
		{"3526031234567800019065001000000042112345678", 6},
	}

	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			assert.Equal(t, tt.want, Mod11(tt.digits))
		})
	}
}

func TestAccessKey(t *testing.T) {
	key := AccessKey(AccessKeyParams{
		UF:       "sp",
		IssuedAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		CNPJ:     "12.345.678/0001-90",
		Series:   1,
		Number:   42,
		Code:     12345678,
	})

	assert.Equal(t, "35260312345678000190650010000000421123456786", key)
	assert.Len(t, key, 44)
	assert.Equal(t, "65", key[20:22], "modelo NFC-e")
	assert.Equal(t, "3526 0312 3456 7800 0190 6500 1000 0000 4211 2345 6786", FormatAccessKey(key))

	short := AccessKey(AccessKeyParams{UF: "XX", CNPJ: "", Number: 1})
	assert.Len(t, short, 44)
	assert.True(t, strings.HasPrefix(short, "35"), "UF desconhecida usa o código padrão")
}

func TestComputeTaxes(t *testing.T) {
	defaults := ComputeTaxes(100, nil)
	assert.Equal(t, 18.0, defaults.ICMS)
	assert.Equal(t, 1.65, defaults.PIS)
	assert.Equal(t, 7.6, defaults.COFINS)
	assert.Equal(t, 27.25, defaults.Total)

	configured := ComputeTaxes(250, &domain.FiscalConfig{ICMSRate: 12})
	assert.Equal(t, 30.0, configured.ICMS)
	assert.Equal(t, 4.13, configured.PIS)
	assert.Equal(t, 19.0, configured.COFINS)
}

func TestRenderReceipt(t *testing.T) {
	html, err := RenderReceipt(sampleSale(), sampleCompany())
	require.NoError(t, err)

	assert.Contains(t, html, "Mercadinho")
	assert.Contains(t, html, "12.345.678/0001-90")
	assert.Contains(t, html, "Rua das Flores, 100 - Campinas/SP")
	assert.Contains(t, html, "R$ 100,00")
	assert.Contains(t, html, "Venda nº 42 - 14/03/2026 18:30")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "VENDA CANCELADA")
}

func TestRenderFiscalReceipt(t *testing.T) {
	html, err := RenderFiscalReceipt(sampleSale(), sampleCompany(), &domain.FiscalConfig{Series: 3})
	require.NoError(t, err)

	assert.Contains(t, html, "SEM VALOR FISCAL")
	assert.Contains(t, html, "HOMOLOGAÇÃO")
	assert.Contains(t, html, "NFC-e nº 42 Série 3")
	assert.Contains(t, html, "sefaz.sp.gov.br/nfce/qrcode")
	assert.Contains(t, html, "R$ 27,25")

	prod, err := RenderFiscalReceipt(sampleSale(), sampleCompany(), &domain.FiscalConfig{Environment: domain.EnvironmentProduction})
	require.NoError(t, err)
	assert.Contains(t, prod, "SEM VALOR FISCAL")
	assert.NotContains(t, prod, "HOMOLOGAÇÃO")
}

func TestRenderInvoice(t *testing.T) {
	html, err := RenderInvoice(sampleSale(), nil, nil)
	require.NoError(t, err)

	assert.Contains(t, html, "NOTA DE VENDA DISCRIMINADA")
	assert.Contains(t, html, "18,00%")
	assert.Contains(t, html, "R$ 18,00")
	assert.Contains(t, html, "R$ 1,65")
	assert.Contains(t, html, "R$ 7,60")
	assert.Contains(t, html, "R$ 27,25")
}

func TestRender(t *testing.T) {
	sale := sampleSale()
	reason := "Cliente desistiu"
	sale.Status = domain.SaleStatusCancelled
	sale.CancelReason = &reason

	for _, kind := range []string{KindReceipt, KindFiscalReceipt, KindInvoice} {
		html, err := Render(kind, sale, sampleCompany(), nil)
		require.NoError(t, err, kind)
		assert.Contains(t, html, "VENDA CANCELADA - Cliente desistiu", kind)
	}

	_, err := Render("boleto", sale, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestWhatsApp(t *testing.T) {
	text := RenderWhatsAppText(sampleSale(), sampleCompany())

	assert.True(t, strings.HasPrefix(text, "*Mercadinho*\n"))
	assert.Contains(t, text, "2x Arroz 5kg - R$ 50,00")
	assert.Contains(t, text, "*Total: R$ 100,00*")
	assert.Contains(t, text, "Pagamento: pix")

	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"Celular nacional recebe DDI", "(19) 99999-0000", "https://wa.me/5519999990000?text=Ol%C3%A1%20%26%20tchau"},
		{"Número já com DDI", "+55 19 99999-0000", "https://wa.me/5519999990000?text=Ol%C3%A1%20%26%20tchau"},
		{"Sem número", "", "https://wa.me/?text=Ol%C3%A1%20%26%20tchau"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WhatsAppLink(tt.phone, "Olá & tchau"))
		})
	}
}
