// Package transport defines the request and response DTOs for the quotes module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuoteItemRequest is one line of a quote as submitted by the owner.
type QuoteItemRequest struct {
	Description    string  `json:"description" validate:"required,max=500"`
	Quantity       float64 `json:"quantity" validate:"gt=0"`
	UnitPriceCents int64   `json:"unitPriceCents" validate:"gte=0"`
	TaxRateBps     int     `json:"taxRateBps" validate:"gte=0,lte=3000"`
	IsOptional     bool    `json:"isOptional"`
	IsSelected     bool    `json:"isSelected"`
}

// QuoteCalculationRequest computes totals without persisting anything.
type QuoteCalculationRequest struct {
	PricingMode   string             `json:"pricingMode" validate:"omitempty,oneof=exclusive inclusive"`
	DiscountType  string             `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue int64              `json:"discountValue" validate:"gte=0"`
	Items         []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CalculatedLineItem is one line with its computed totals. Optional lines are
// fully calculated so the client can see their price, but only selected ones
// count toward the grand total.
type CalculatedLineItem struct {
	Description         string  `json:"description"`
	Quantity            float64 `json:"quantity"`
	UnitPriceCents      int64   `json:"unitPriceCents"`
	TaxRateBps          int     `json:"taxRateBps"`
	IsOptional          bool    `json:"isOptional"`
	IsSelected          bool    `json:"isSelected"`
	TotalBeforeTaxCents int64   `json:"totalBeforeTaxCents"`
	TotalTaxCents       int64   `json:"totalTaxCents"`
	LineTotalCents      int64   `json:"lineTotalCents"`
}

// VatBreakdown reports the TVA owed at one rate.
type VatBreakdown struct {
	RateBps     int   `json:"rateBps"`
	AmountCents int64 `json:"amountCents"`
}

// QuoteCalculationResponse carries the computed totals.
type QuoteCalculationResponse struct {
	Lines               []CalculatedLineItem `json:"lines"`
	SubtotalCents       int64                `json:"subtotalCents"`
	DiscountAmountCents int64                `json:"discountAmountCents"`
	VatTotalCents       int64                `json:"vatTotalCents"`
	VatBreakdown        []VatBreakdown       `json:"vatBreakdown"`
	TotalCents          int64                `json:"totalCents"`
}

// CreateQuoteRequest creates a draft quote for a CRM client.
type CreateQuoteRequest struct {
	ClientID      uuid.UUID          `json:"clientId" validate:"required"`
	PricingMode   string             `json:"pricingMode" validate:"omitempty,oneof=exclusive inclusive"`
	DiscountType  string             `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue int64              `json:"discountValue" validate:"gte=0"`
	ValidUntil    *time.Time         `json:"validUntil"`
	Notes         *string            `json:"notes" validate:"omitempty,max=2000"`
	Items         []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuoteRequest replaces the content of a draft quote.
type UpdateQuoteRequest struct {
	PricingMode   string             `json:"pricingMode" validate:"omitempty,oneof=exclusive inclusive"`
	DiscountType  string             `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue int64              `json:"discountValue" validate:"gte=0"`
	ValidUntil    *time.Time         `json:"validUntil"`
	Notes         *string            `json:"notes" validate:"omitempty,max=2000"`
	Items         []QuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateQuoteStatusRequest moves a quote through its lifecycle.
type UpdateQuoteStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sent accepted declined"`
}

// ListQuotesRequest filters the quote list.
type ListQuotesRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=draft sent accepted declined"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// QuoteItemResponse is one persisted quote line.
type QuoteItemResponse struct {
	ID             uuid.UUID `json:"id"`
	Description    string    `json:"description"`
	Quantity       float64   `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TaxRateBps     int       `json:"taxRateBps"`
	IsOptional     bool      `json:"isOptional"`
	IsSelected     bool      `json:"isSelected"`
	SortOrder      int       `json:"sortOrder"`
}

// QuoteResponse is the full quote representation.
type QuoteResponse struct {
	ID                  uuid.UUID           `json:"id"`
	QuoteNumber         string              `json:"quoteNumber"`
	ClientID            uuid.UUID           `json:"clientId"`
	Status              string              `json:"status"`
	PricingMode         string              `json:"pricingMode"`
	DiscountType        string              `json:"discountType"`
	DiscountValue       int64               `json:"discountValue"`
	SubtotalCents       int64               `json:"subtotalCents"`
	DiscountAmountCents int64               `json:"discountAmountCents"`
	VatTotalCents       int64               `json:"vatTotalCents"`
	TotalCents          int64               `json:"totalCents"`
	ValidUntil          *time.Time          `json:"validUntil,omitempty"`
	Notes               *string             `json:"notes,omitempty"`
	SentAt              *time.Time          `json:"sentAt,omitempty"`
	Items               []QuoteItemResponse `json:"items"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}
