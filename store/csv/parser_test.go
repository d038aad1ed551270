package csvstore

import (
	"strings"
	"testing"
	"time"
)

func TestParseCustomersCSV_OK(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader(strings.TrimSpace(`
id,name,street,postcode,city,base_tariff,energy_tariff
12345,Muster,Teststrasse 0,12345,Teststadt,140,24.8
6789,Adam,"Teststrasse2 7",56789,Teststadt2,170.0,20
`))

	customers, err := ParseCustomersCSV(csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(customers), 2; got != want {
		t.Fatalf("len(customers)=%d want %d", got, want)
	}
	c := customers[1]
	if c.ID != "6789" || c.Street != "Teststrasse2 7" || c.City != "Teststadt2" {
		t.Fatalf("customer[1]=%+v", c)
	}
	if got, want := c.BaseTariff.String(), "170"; got != want {
		t.Fatalf("base tariff=%s want %s", got, want)
	}
	if got, want := customers[0].EnergyTariff.String(), "24.8"; got != want {
		t.Fatalf("energy tariff=%s want %s", got, want)
	}
}

func TestParseCustomersCSV_ColumnOrderIsFree(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader("energy_tariff,base_tariff,city,postcode,street,name,id\n24.8,140,Teststadt,12345,Teststrasse 0,Muster,12345\n")

	customers, err := ParseCustomersCSV(csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customers[0].ID != "12345" || customers[0].Name != "Muster" {
		t.Fatalf("customer=%+v", customers[0])
	}
}

func TestParseCustomersCSV_MissingColumn(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader("id,name,street,postcode,city,base_tariff\n1,a,b,c,d,1\n")

	_, err := ParseCustomersCSV(csv)
	if err == nil || !strings.Contains(err.Error(), "energy_tariff") {
		t.Fatalf("expected missing energy_tariff error, got %v", err)
	}
}

func TestParseMeterReadingsCSV_OK(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader(strings.TrimSpace(`
date,customer,value
2021-02-08,12345,250
02.03.2021,12345,250.5
`))

	readings, err := ParseMeterReadingsCSV(csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := len(readings), 2; got != want {
		t.Fatalf("len(readings)=%d want %d", got, want)
	}
	if readings[1].Date.Month() != time.March || readings[1].Date.Day() != 2 {
		t.Fatalf("date[1]=%s want 2021-03-02", readings[1].Date)
	}
	if got, want := readings[1].Value.String(), "250.5"; got != want {
		t.Fatalf("value[1]=%s want %s", got, want)
	}
	if readings[0].CustomerID != "12345" {
		t.Fatalf("customer[0]=%q", readings[0].CustomerID)
	}
}

func TestParseMeterReadingsCSV_SkipsInvalidRows(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader(strings.TrimSpace(`
date,customer,value
2021-02-08,12345,250
not-a-date,12345,1
2021-03-02,12345,abc
2021-03-03,12345,-5
2021-03-30,12345,100
`))

	readings, err := ParseMeterReadingsCSV(csv)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if got, want := len(readings), 2; got != want {
		t.Fatalf("len(readings)=%d want %d", got, want)
	}
	for _, row := range []string{"row 3", "row 4", "row 5"} {
		if !strings.Contains(err.Error(), row) {
			t.Errorf("error %q does not mention %s", err, row)
		}
	}
}

func TestParseMeterReadingsCSV_BOMHeader(t *testing.T) {
	t.Parallel()

	csv := strings.NewReader("\ufeffdate,customer,value\n2021-02-08,1,2\n")

	readings, err := ParseMeterReadingsCSV(csv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("len(readings)=%d want 1", len(readings))
	}
}
