/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  JSON shapes returned by the invoice API. Decimal amounts travel as
  strings so that clients never see binary floating point.

NAMING CONVENTION:
  - *DTO: Response types returned to clients

TYPES:
  CustomerDTO, InvoiceDTO, ShareDTO, ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/meter-invoice/billing"
)

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Street       string `json:"street"`
	Postcode     string `json:"postcode"`
	City         string `json:"city"`
	BaseTariff   string `json:"base_tariff"`   // currency per year
	EnergyTariff string `json:"energy_tariff"` // cents per unit
}

// InvoiceDTO is a computed invoice.
type InvoiceDTO struct {
	Customer    CustomerDTO `json:"customer"`
	Period      string      `json:"period"` // YYYY-MM
	Range       string      `json:"range"`
	Days        int         `json:"days"`
	Consumption string      `json:"consumption"`
	BasePrice   string      `json:"base_price"`
	EnergyPrice string      `json:"energy_price"`
	TotalPrice  string      `json:"total_price"`
	Shares      []ShareDTO  `json:"shares"`
}

// ShareDTO is one allocated share behind an invoice.
type ShareDTO struct {
	Date  string `json:"date"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func toCustomerDTO(c billing.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           c.ID,
		Name:         c.Name,
		Street:       c.Street,
		Postcode:     c.Postcode,
		City:         c.City,
		BaseTariff:   c.BaseTariff.String(),
		EnergyTariff: c.EnergyTariff.String(),
	}
}

func toInvoiceDTO(inv *billing.Invoice) InvoiceDTO {
	shares := make([]ShareDTO, 0, len(inv.Shares))
	for _, s := range inv.Shares {
		shares = append(shares, ShareDTO{
			Date:  s.Date.String(),
			Value: s.Value.String(),
			Kind:  s.Kind.String(),
		})
	}
	return InvoiceDTO{
		Customer:    toCustomerDTO(inv.Customer),
		Period:      inv.Period.String(),
		Range:       inv.Period.Range(),
		Days:        inv.Days,
		Consumption: inv.Consumption.String(),
		BasePrice:   inv.BasePrice.StringFixed(2),
		EnergyPrice: inv.EnergyPrice.StringFixed(2),
		TotalPrice:  inv.TotalPrice.StringFixed(2),
		Shares:      shares,
	}
}
