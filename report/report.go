/*
report.go - Fixed-layout text rendering of an invoice

PURPOSE:
  Turns a computed billing.Invoice into the plain-text report handed to
  the customer and stores it as report_<customer>_<month>.txt.

LAYOUT:
  Muster
  Teststrasse 0
  12345 Teststadt
  Abrechnungszeitraum 01.03.2021 bis 31.03.2021
  Komponente    Anzahl    Preis        Kosten
  ----------------------------------------------
  Grundpreis    31 Tage x 140 €/Jahr = 11.90 €
  Arbeitspreis  115 kWh x 24.8 ct/kWh = 28.52 €
  ----------------------------------------------
  Summe        40.42 €

  The energy line shows the whole-unit consumption, never currency.

SEE ALSO:
  - billing/engine.go: Produces the Invoice
  - cmd/invoice: Writes reports from the command line
  - api/handlers.go: Serves reports over HTTP
*/
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/meter-invoice/billing"
)

const rule = "----------------------------------------------"

// Lines returns the report lines without trailing newlines.
func Lines(inv *billing.Invoice) []string {
	c := inv.Customer
	return []string{
		c.Name,
		c.Street,
		strings.TrimSpace(c.Postcode + " " + c.City),
		"Abrechnungszeitraum " + inv.Period.Range(),
		"Komponente    Anzahl    Preis        Kosten",
		rule,
		fmt.Sprintf("Grundpreis    %d Tage x %s €/Jahr = %s €", inv.Days, c.BaseTariff.String(), inv.BasePrice.StringFixed(2)),
		fmt.Sprintf("Arbeitspreis  %s kWh x %s ct/kWh = %s €", inv.Consumption.String(), c.EnergyTariff.String(), inv.EnergyPrice.StringFixed(2)),
		rule,
		fmt.Sprintf("Summe        %s €", inv.TotalPrice.StringFixed(2)),
	}
}

// Render writes the report to w, one newline-terminated line each.
func Render(w io.Writer, inv *billing.Invoice) error {
	for _, line := range Lines(inv) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// FileName is the report file name for a customer and month,
// e.g. report_12345_3.txt.
func FileName(customerID string, month time.Month) string {
	return fmt.Sprintf("report_%s_%d.txt", customerID, int(month))
}

// WriteFile renders inv into dir and returns the written path.
// An existing report for the same customer and month is replaced.
func WriteFile(dir string, inv *billing.Invoice) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, FileName(inv.Customer.ID, inv.Period.Month))
	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := Render(tmp, inv); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
