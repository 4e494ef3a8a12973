package shipping

import (
	"regexp"
	"strings"

	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// serviceTokens are matched in order against "NAME SERVICE"; the first hit wins.
var serviceTokens = []string{
	"CTCYES",
	"CTCSPS",
	"CTC",
	"YES",
	"REG",
	"BEST",
	"GOKIL",
	"JTR>200",
	"JTR>130",
	"JTR<130",
	"JTR",
	"STD",
	"IDLITE",
	"IDTRUCK",
	"EZ",
	"STANDARD",
	"UDRREG",
	"UDRONS",
	"DRGREG",
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

// Mapper converts ranked offers into checkout rates.
type Mapper struct {
	prices PriceConverter
}

func NewMapper(prices PriceConverter) *Mapper {
	if prices == nil {
		prices = IdentityPrice{}
	}
	return &Mapper{prices: prices}
}

// ToRankedRates keeps the input order.
func (m *Mapper) ToRankedRates(offers []model.Offer) []model.RankedRate {
	out := make([]model.RankedRate, 0, len(offers))
	for _, o := range offers {
		out = append(out, m.toRankedRate(o))
	}
	return out
}

func (m *Mapper) toRankedRate(o model.Offer) model.RankedRate {
	carrier := strings.ToLower(strings.TrimSpace(o.Code))
	code := CanonicalServiceCode(o.Name, o.Service)

	etd := strings.TrimSpace(o.ETD)
	if etd == "" {
		etd = "-"
	}

	return model.RankedRate{
		Carrier:      carrier,
		Label:        o.Name + " " + o.Service,
		Method:       "rajaongkir_" + carrier + "_" + strings.ToLower(code),
		ServiceCode:  code,
		Description:  strings.TrimSpace(o.Description),
		ETA:          "Est. " + etd,
		Cost:         o.Cost,
		DisplayPrice: m.prices.Convert(o.Cost),
	}
}

// CanonicalServiceCode derives a stable service token from the courier name
// and service label, e.g. ("J&T Express", "EZ") -> "EZ".
func CanonicalServiceCode(name, service string) string {
	full := strings.ToUpper(name + " " + service)
	for _, tok := range serviceTokens {
		if strings.Contains(full, tok) {
			return tok
		}
	}
	if code := nonAlnum.ReplaceAllString(strings.ToUpper(service), ""); code != "" {
		return code
	}
	return "DEFAULT"
}
