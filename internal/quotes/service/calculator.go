package service

import (
	"math"
	"sort"

	"vitrine_backend/internal/quotes/transport"
)

// roundCents rounds a float amount to the nearest cent.
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// lineNetPrice returns the net (hors taxes) unit price for the pricing mode.
// In inclusive mode the submitted price carries the TVA and gets stripped.
func lineNetPrice(unitPriceCents int64, taxRateBps int, pricingMode string) float64 {
	price := float64(unitPriceCents)
	if pricingMode == "inclusive" && taxRateBps > 0 {
		price /= 1.0 + float64(taxRateBps)/10000.0
	}
	return price
}

// discountAmount returns the discount in float-cents, capped at the subtotal.
func discountAmount(subtotal float64, discountType string, discountValue int64) float64 {
	var amount float64
	switch {
	case discountType == "percentage" && discountValue > 0:
		amount = subtotal * (float64(discountValue) / 100.0)
	case discountType == "fixed" && discountValue > 0:
		amount = float64(discountValue)
	}
	if amount > subtotal {
		return subtotal
	}
	return amount
}

// vatBreakdown applies the discount multiplier to the TVA collected at each
// rate and returns the total plus a breakdown sorted by rate.
func vatBreakdown(vatMap map[int]float64, multiplier float64) (int64, []transport.VatBreakdown) {
	var vatTotal int64
	breakdown := make([]transport.VatBreakdown, 0, len(vatMap))
	for rate, amount := range vatMap {
		adjusted := roundCents(amount * multiplier)
		vatTotal += adjusted
		breakdown = append(breakdown, transport.VatBreakdown{RateBps: rate, AmountCents: adjusted})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].RateBps < breakdown[j].RateBps })
	return vatTotal, breakdown
}

// CalculateQuote computes totals for a set of lines. TVA is computed per line
// and summed per rate; a discount reduces the taxable base, so the TVA shrinks
// by the same proportion. Optional lines are calculated for display but only
// selected ones count toward the total.
func CalculateQuote(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	pricingMode := req.PricingMode
	if pricingMode == "" {
		pricingMode = "exclusive"
	}
	discountType := req.DiscountType
	if discountType == "" {
		discountType = "percentage"
	}

	var subtotal float64
	vatMap := make(map[int]float64)
	lines := make([]transport.CalculatedLineItem, 0, len(req.Items))

	for _, item := range req.Items {
		netUnitPrice := lineNetPrice(item.UnitPriceCents, item.TaxRateBps, pricingMode)
		lineSubtotal := item.Quantity * netUnitPrice
		lineVat := lineSubtotal * (float64(item.TaxRateBps) / 10000.0)

		lines = append(lines, transport.CalculatedLineItem{
			Description:         item.Description,
			Quantity:            item.Quantity,
			UnitPriceCents:      item.UnitPriceCents,
			TaxRateBps:          item.TaxRateBps,
			IsOptional:          item.IsOptional,
			IsSelected:          item.IsSelected,
			TotalBeforeTaxCents: roundCents(lineSubtotal),
			TotalTaxCents:       roundCents(lineVat),
			LineTotalCents:      roundCents(lineSubtotal + lineVat),
		})

		if !item.IsOptional || item.IsSelected {
			subtotal += lineSubtotal
			vatMap[item.TaxRateBps] += lineVat
		}
	}

	subtotalCents := roundCents(subtotal)
	discount := discountAmount(subtotal, discountType, req.DiscountValue)
	discountCents := roundCents(discount)

	multiplier := 1.0
	if subtotal > 0 && discount > 0 {
		multiplier = (subtotal - discount) / subtotal
	}

	vatTotal, breakdown := vatBreakdown(vatMap, multiplier)

	return transport.QuoteCalculationResponse{
		Lines:               lines,
		SubtotalCents:       subtotalCents,
		DiscountAmountCents: discountCents,
		VatTotalCents:       vatTotal,
		VatBreakdown:        breakdown,
		TotalCents:          subtotalCents - discountCents + vatTotal,
	}
}
