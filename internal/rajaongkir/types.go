package rajaongkir

import "github.com/akara/rajaongkir-adapter/pkg/model"

// Meta is the status envelope RajaOngkir wraps every response in.
type Meta struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Status  string `json:"status"`
}

// Destination is one match from the domestic destination search.
type Destination struct {
	ID              int    `json:"id"`
	Label           string `json:"label"`
	ProvinceName    string `json:"province_name"`
	CityName        string `json:"city_name"`
	DistrictName    string `json:"district_name"`
	SubdistrictName string `json:"subdistrict_name"`
	ZipCode         string `json:"zip_code"`
}

// DestinationResponse is returned by GET destination/domestic-destination.
type DestinationResponse struct {
	Meta Meta          `json:"meta"`
	Data []Destination `json:"data"`
}

// CostResponse is returned by POST calculate/domestic-cost.
type CostResponse struct {
	Meta Meta          `json:"meta"`
	Data []model.Offer `json:"data"`
}

// CostRequest holds the form fields of a domestic cost calculation.
// Courier is a colon-separated list of carrier codes, e.g. "jne:jnt".
type CostRequest struct {
	Origin      int
	Destination int
	Weight      int // grams
	Courier     string
	Price       string // "lowest" or "highest"
}

// destinationKey and costKey are the normalized parameter sets that identify
// cached responses.
type destinationKey struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
}

type costKey struct {
	Origin      int    `json:"origin"`
	Destination int    `json:"destination"`
	Weight      int    `json:"weight"`
	Courier     string `json:"courier"`
}
