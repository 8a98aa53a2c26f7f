package service

import (
	"testing"

	"vitrine_backend/internal/quotes/transport"
)

func TestCalculateQuote_ExclusivePricing(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		PricingMode: "exclusive",
		Items: []transport.QuoteItemRequest{
			{Description: "Site vitrine", Quantity: 1, UnitPriceCents: 100000, TaxRateBps: 2000},
			{Description: "Maintenance", Quantity: 3, UnitPriceCents: 5000, TaxRateBps: 2000},
		},
	}

	result := CalculateQuote(req)

	if result.SubtotalCents != 115000 {
		t.Fatalf("expected subtotal 115000, got %d", result.SubtotalCents)
	}
	if result.VatTotalCents != 23000 {
		t.Fatalf("expected TVA 23000, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 138000 {
		t.Fatalf("expected total 138000, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_InclusivePricingStripsVAT(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		PricingMode: "inclusive",
		Items: []transport.QuoteItemRequest{
			{Description: "Site vitrine", Quantity: 1, UnitPriceCents: 12000, TaxRateBps: 2000},
		},
	}

	result := CalculateQuote(req)

	if result.SubtotalCents != 10000 {
		t.Fatalf("expected subtotal 10000, got %d", result.SubtotalCents)
	}
	if result.VatTotalCents != 2000 {
		t.Fatalf("expected TVA 2000, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 12000 {
		t.Fatalf("expected total 12000, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_DiscountReducesVATProportionally(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		DiscountType:  "percentage",
		DiscountValue: 10,
		Items: []transport.QuoteItemRequest{
			{Description: "Site vitrine", Quantity: 1, UnitPriceCents: 100000, TaxRateBps: 2000},
		},
	}

	result := CalculateQuote(req)

	if result.DiscountAmountCents != 10000 {
		t.Fatalf("expected discount 10000, got %d", result.DiscountAmountCents)
	}
	if result.VatTotalCents != 18000 {
		t.Fatalf("expected TVA 18000 on the discounted base, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 108000 {
		t.Fatalf("expected total 108000, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_FixedDiscountCappedAtSubtotal(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		DiscountType:  "fixed",
		DiscountValue: 50000,
		Items: []transport.QuoteItemRequest{
			{Description: "Audit", Quantity: 1, UnitPriceCents: 20000, TaxRateBps: 2000},
		},
	}

	result := CalculateQuote(req)

	if result.DiscountAmountCents != 20000 {
		t.Fatalf("expected discount capped at 20000, got %d", result.DiscountAmountCents)
	}
	if result.VatTotalCents != 0 {
		t.Fatalf("expected no TVA on a fully discounted quote, got %d", result.VatTotalCents)
	}
	if result.TotalCents != 0 {
		t.Fatalf("expected total 0, got %d", result.TotalCents)
	}
}

func TestCalculateQuote_OptionalLineExcludedUnlessSelected(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "Site vitrine", Quantity: 1, UnitPriceCents: 100000, TaxRateBps: 2000},
			{Description: "Logo", Quantity: 1, UnitPriceCents: 30000, TaxRateBps: 2000, IsOptional: true},
		},
	}

	result := CalculateQuote(req)
	if result.SubtotalCents != 100000 {
		t.Fatalf("unselected optional line must not count, got subtotal %d", result.SubtotalCents)
	}
	if result.Lines[1].LineTotalCents != 36000 {
		t.Fatalf("optional line still gets calculated for display, got %d", result.Lines[1].LineTotalCents)
	}

	req.Items[1].IsSelected = true
	result = CalculateQuote(req)
	if result.SubtotalCents != 130000 {
		t.Fatalf("selected optional line must count, got subtotal %d", result.SubtotalCents)
	}
}

func TestCalculateQuote_VatBreakdownSortedByRate(t *testing.T) {
	req := transport.QuoteCalculationRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "Prestation standard", Quantity: 1, UnitPriceCents: 10000, TaxRateBps: 2000},
			{Description: "Prestation taux réduit", Quantity: 1, UnitPriceCents: 10000, TaxRateBps: 550},
		},
	}

	result := CalculateQuote(req)

	if len(result.VatBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown lines, got %d", len(result.VatBreakdown))
	}
	if result.VatBreakdown[0].RateBps != 550 || result.VatBreakdown[1].RateBps != 2000 {
		t.Fatalf("expected breakdown sorted by rate, got %+v", result.VatBreakdown)
	}
	if result.VatBreakdown[0].AmountCents != 550 || result.VatBreakdown[1].AmountCents != 2000 {
		t.Fatalf("unexpected breakdown amounts: %+v", result.VatBreakdown)
	}
}
