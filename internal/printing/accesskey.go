package printing

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/vfg2006/pdv-api/pkg/utils"
)

// Código do modelo NFC-e na chave de acesso
const modelNFCe = "65"

// ufCodes são os códigos IBGE das unidades federativas
var ufCodes = map[string]int{
	"RO": 11, "AC": 12, "AM": 13, "RR": 14, "PA": 15, "AP": 16, "TO": 17,
	"MA": 21, "PI": 22, "CE": 23, "RN": 24, "PB": 25, "PE": 26, "AL": 27, "SE": 28, "BA": 29,
	"MG": 31, "ES": 32, "RJ": 33, "SP": 35,
	"PR": 41, "SC": 42, "RS": 43,
	"MS": 50, "MT": 51, "GO": 52, "DF": 53,
}

const defaultUFCode = 35

func UFCode(uf string) int {
	if code, ok := ufCodes[strings.ToUpper(strings.TrimSpace(uf))]; ok {
		return code
	}
	return defaultUFCode
}

type AccessKeyParams struct {
	UF           string
	IssuedAt     time.Time
	CNPJ         string
	Series       int
	Number       int
	EmissionType int
	Code         int
}

// Mod11 calcula o dígito verificador da chave: pesos 2 a 9 da direita para a esquerda,
// 11 menos o resto, e 0 quando o resultado passa de 9.
func Mod11(digits string) int {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}

	dv := 11 - sum%11
	if dv >= 10 {
		return 0
	}
	return dv
}

// AccessKey monta a chave de 44 dígitos:
// cUF + AAMM + CNPJ + modelo + série + número + tpEmis + cNF + DV
func AccessKey(p AccessKeyParams) string {
	cnpj := utils.OnlyDigits(p.CNPJ)
	if len(cnpj) > 14 {
		cnpj = cnpj[len(cnpj)-14:]
	}
	cnpj = strings.Repeat("0", 14-len(cnpj)) + cnpj

	emission := p.EmissionType
	if emission <= 0 {
		emission = 1
	}

	base := fmt.Sprintf("%02d%s%s%s%03d%09d%d%08d",
		UFCode(p.UF),
		p.IssuedAt.Format("0601"),
		cnpj,
		modelNFCe,
		p.Series%1000,
		p.Number%1000000000,
		emission%10,
		p.Code%100000000,
	)

	return fmt.Sprintf("%s%d", base, Mod11(base))
}

// FormatAccessKey separa a chave em grupos de 4 dígitos, como no DANFE
func FormatAccessKey(key string) string {
	groups := make([]string, 0, 11)
	for i := 0; i < len(key); i += 4 {
		end := i + 4
		if end > len(key) {
			end = len(key)
		}
		groups = append(groups, key[i:end])
	}
	return strings.Join(groups, " ")
}

// numericCode deriva o cNF de 8 dígitos do ID da venda, estável entre impressões
func numericCode(saleID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(saleID))
	return int(h.Sum32() % 100000000)
}
