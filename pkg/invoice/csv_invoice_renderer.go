package invoice

import (
	"bytes"
	"encoding/csv"

	log "github.com/sirupsen/logrus"
)

type CsvInvoiceRenderer interface {
	RenderInvoice(invoice Invoice, currency string) (string, error)
}

type CsvInvoiceRendererImpl struct {
}

func NewCsvInvoiceRenderer() *CsvInvoiceRendererImpl {
	return &CsvInvoiceRendererImpl{}
}

func (t *CsvInvoiceRendererImpl) RenderInvoice(invoice Invoice, currency string) (string, error) {
	data := make([][]string, 0, len(invoice.Lines)+8)
	data = append(data,
		[]string{"Invoice", invoice.Number},
		[]string{"Issued", invoice.IssueDate.Format("02/01/2006")},
		[]string{"Due", invoice.DueDate.Format("02/01/2006")},
		[]string{"Description", "Hours", "Rate (" + currency + ")", "Amount (" + currency + ")"},
	)
	for _, line := range invoice.Lines {
		data = append(data, []string{
			line.Description,
			line.Quantity.StringFixed(2),
			line.UnitRate.StringFixed(2),
			line.Amount.StringFixed(2),
		})
	}
	data = append(data,
		[]string{"Subtotal", "", "", invoice.Subtotal.StringFixed(2)},
		[]string{"Discount", "", "", invoice.DiscountValue.Neg().StringFixed(2)},
		[]string{"Total", "", "", invoice.Total.StringFixed(2)},
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
