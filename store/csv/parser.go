package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/meter-invoice/billing"
)

var (
	customerColumns = []string{"id", "name", "street", "postcode", "city", "base_tariff", "energy_tariff"}
	readingColumns  = []string{"date", "customer", "value"}
)

// header maps lower-cased column names to their index and checks that
// every required column is present. Column order is free.
type header map[string]int

func readHeader(cr *csv.Reader, required []string) (header, error) {
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(row))
	for i, name := range row {
		// tolerate a UTF-8 BOM written by spreadsheet exports
		name = strings.TrimPrefix(name, "\ufeff")
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := h[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s (want %s)", strings.Join(missing, ","), strings.Join(required, ","))
	}
	return h, nil
}

func (h header) get(row []string, col string) string {
	i := h[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // validated per column
	cr.TrimLeadingSpace = true
	return cr
}

// ParseCustomersCSV parses customer records.
//
// Expected columns: id,name,street,postcode,city,base_tariff,energy_tariff
//
// Invalid rows are skipped and returned as a joined error (errors.Join).
func ParseCustomersCSV(r io.Reader) ([]billing.Customer, error) {
	cr := newReader(r)
	h, err := readHeader(cr, customerColumns)
	if err != nil {
		return nil, err
	}

	var (
		customers []billing.Customer
		rowErrs   []error
		rowNum    = 1 // header
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: read: %w", rowNum, err))
			continue
		}

		id := h.get(row, "id")
		if id == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: empty id", rowNum))
			continue
		}
		base, err := decimal.NewFromString(h.get(row, "base_tariff"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse base_tariff %q: %w", rowNum, h.get(row, "base_tariff"), err))
			continue
		}
		energy, err := decimal.NewFromString(h.get(row, "energy_tariff"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse energy_tariff %q: %w", rowNum, h.get(row, "energy_tariff"), err))
			continue
		}

		customers = append(customers, billing.Customer{
			ID:           id,
			Name:         h.get(row, "name"),
			Street:       h.get(row, "street"),
			Postcode:     h.get(row, "postcode"),
			City:         h.get(row, "city"),
			BaseTariff:   base,
			EnergyTariff: energy,
		})
	}

	if customers == nil {
		customers = []billing.Customer{}
	}
	return customers, errors.Join(rowErrs...)
}

// ParseMeterReadingsCSV parses meter readings.
//
// Expected columns: date,customer,value
//
// Dates may be ISO (2021-03-02) or dotted (02.03.2021). Negative values
// are rejected. Invalid rows are skipped and returned as a joined error.
func ParseMeterReadingsCSV(r io.Reader) ([]billing.MeterReading, error) {
	cr := newReader(r)
	h, err := readHeader(cr, readingColumns)
	if err != nil {
		return nil, err
	}

	var (
		readings []billing.MeterReading
		rowErrs  []error
		rowNum   = 1
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: read: %w", rowNum, err))
			continue
		}

		d, err := billing.ParseDate(h.get(row, "date"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowNum, err))
			continue
		}
		v, err := decimal.NewFromString(h.get(row, "value"))
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: parse value %q: %w", rowNum, h.get(row, "value"), err))
			continue
		}
		if v.IsNegative() {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: negative value %s", rowNum, v))
			continue
		}

		readings = append(readings, billing.MeterReading{
			Date:       d,
			CustomerID: h.get(row, "customer"),
			Value:      v,
		})
	}

	if readings == nil {
		readings = []billing.MeterReading{}
	}
	return readings, errors.Join(rowErrs...)
}
