package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	crmtransport "vitrine_backend/internal/crm/transport"
	"vitrine_backend/internal/quotes/repository"
	"vitrine_backend/internal/quotes/transport"
)

// quoteDocumentTmpl is the printable devis rendered for Gotenberg. Styling
// stays inline so the page renders without external assets.
const quoteDocumentTmpl = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<style>
	body { font-family: Helvetica, Arial, sans-serif; color: #1f2937; font-size: 13px; }
	h1 { font-size: 22px; margin-bottom: 2px; }
	.meta { color: #6b7280; margin-bottom: 24px; }
	table { width: 100%; border-collapse: collapse; margin-top: 16px; }
	th { text-align: left; border-bottom: 2px solid #1f2937; padding: 6px 8px; }
	td { border-bottom: 1px solid #e5e7eb; padding: 6px 8px; }
	td.num, th.num { text-align: right; }
	.optional { color: #6b7280; font-style: italic; }
	.totals { margin-top: 16px; margin-left: auto; width: 45%; }
	.totals td { border: none; padding: 3px 8px; }
	.totals .grand td { border-top: 2px solid #1f2937; font-weight: bold; font-size: 15px; }
	.notes { margin-top: 28px; white-space: pre-wrap; }
	.validity { margin-top: 12px; color: #6b7280; }
</style>
</head>
<body>
	<h1>Devis {{.QuoteNumber}}</h1>
	<div class="meta">
		{{.BusinessName}} — émis le {{.IssuedOn}}<br>
		À l'attention de {{.ClientName}}{{if .ClientEmail}} ({{.ClientEmail}}){{end}}
	</div>

	<table>
		<tr>
			<th>Désignation</th>
			<th class="num">Qté</th>
			<th class="num">PU HT</th>
			<th class="num">TVA</th>
			<th class="num">Total HT</th>
		</tr>
		{{range .Lines}}
		<tr{{if .Optional}} class="optional"{{end}}>
			<td>{{.Description}}{{if .Optional}} (option){{end}}</td>
			<td class="num">{{.Quantity}}</td>
			<td class="num">{{.UnitPrice}}</td>
			<td class="num">{{.TaxRate}}</td>
			<td class="num">{{.TotalBeforeTax}}</td>
		</tr>
		{{end}}
	</table>

	<table class="totals">
		<tr><td>Total HT</td><td class="num">{{.Subtotal}}</td></tr>
		{{if .Discount}}<tr><td>Remise</td><td class="num">-{{.Discount}}</td></tr>{{end}}
		{{range .VatLines}}<tr><td>TVA {{.Rate}}</td><td class="num">{{.Amount}}</td></tr>{{end}}
		<tr class="grand"><td>Total TTC</td><td class="num">{{.Total}}</td></tr>
	</table>

	{{if .ValidUntil}}<div class="validity">Devis valable jusqu'au {{.ValidUntil}}.</div>{{end}}
	{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
</body>
</html>`

type quoteDocumentLine struct {
	Description    string
	Quantity       string
	UnitPrice      string
	TaxRate        string
	TotalBeforeTax string
	Optional       bool
}

type quoteDocumentVat struct {
	Rate   string
	Amount string
}

type quoteDocumentData struct {
	QuoteNumber  string
	BusinessName string
	IssuedOn     string
	ClientName   string
	ClientEmail  string
	Lines        []quoteDocumentLine
	Subtotal     string
	Discount     string
	VatLines     []quoteDocumentVat
	Total        string
	ValidUntil   string
	Notes        string
}

// renderQuoteHTML builds the printable document for a quote. Totals come from
// the stored header; lines are recomputed for display only.
func renderQuoteHTML(quote *repository.Quote, items []repository.QuoteItem, client *crmtransport.ClientResponse, businessName string) ([]byte, error) {
	calc := CalculateQuote(quoteToCalculation(quote, items))

	lines := make([]quoteDocumentLine, 0, len(calc.Lines))
	for _, l := range calc.Lines {
		lines = append(lines, quoteDocumentLine{
			Description:    l.Description,
			Quantity:       formatQuantity(l.Quantity),
			UnitPrice:      formatEuros(l.UnitPriceCents),
			TaxRate:        formatRate(l.TaxRateBps),
			TotalBeforeTax: formatEuros(l.TotalBeforeTaxCents),
			Optional:       l.IsOptional && !l.IsSelected,
		})
	}

	vatLines := make([]quoteDocumentVat, 0, len(calc.VatBreakdown))
	for _, v := range calc.VatBreakdown {
		vatLines = append(vatLines, quoteDocumentVat{Rate: formatRate(v.RateBps), Amount: formatEuros(v.AmountCents)})
	}

	data := quoteDocumentData{
		QuoteNumber:  quote.QuoteNumber,
		BusinessName: businessName,
		IssuedOn:     quote.CreatedAt.Format("02/01/2006"),
		ClientName:   client.FirstName + " " + client.LastName,
		ClientEmail:  client.Email,
		Lines:        lines,
		Subtotal:     formatEuros(quote.SubtotalCents),
		VatLines:     vatLines,
		Total:        formatEuros(quote.TotalCents),
	}
	if quote.DiscountAmountCents > 0 {
		data.Discount = formatEuros(quote.DiscountAmountCents)
	}
	if quote.ValidUntil != nil {
		data.ValidUntil = quote.ValidUntil.Format("02/01/2006")
	}
	if quote.Notes != nil {
		data.Notes = *quote.Notes
	}

	tmpl, err := template.New("quote").Parse(quoteDocumentTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse quote template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render quote document: %w", err)
	}
	return buf.Bytes(), nil
}

func quoteToCalculation(quote *repository.Quote, items []repository.QuoteItem) transport.QuoteCalculationRequest {
	reqs := make([]transport.QuoteItemRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, transport.QuoteItemRequest{
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxRateBps:     item.TaxRateBps,
			IsOptional:     item.IsOptional,
			IsSelected:     item.IsSelected,
		})
	}
	return transport.QuoteCalculationRequest{
		PricingMode:   quote.PricingMode,
		DiscountType:  quote.DiscountType,
		DiscountValue: quote.DiscountValue,
		Items:         reqs,
	}
}

func formatQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return strings.ReplaceAll(s, ".", ",")
}

func formatEuros(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d,%02d €", sign, cents/100, cents%100)
}

func formatRate(bps int) string {
	if bps%100 == 0 {
		return fmt.Sprintf("%d %%", bps/100)
	}
	return strings.ReplaceAll(fmt.Sprintf("%.1f %%", float64(bps)/100.0), ".", ",")
}
