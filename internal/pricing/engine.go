package pricing

import (
	"math"
	"time"

	"github.com/noah-isme/backend-mart/internal/cart"
	"github.com/noah-isme/backend-mart/internal/catalog"
)

// Money represents a monetary value in whole currency units.
type Money = catalog.Money

// Discount thresholds and rates.
const (
	QuantityDiscountThreshold = 10
	BulkDiscountThreshold     = 30
	BulkDiscountRate          = 0.25
	TuesdayDiscountRate       = 0.10
)

// itemDiscountRates maps a product to the rate applied once its line
// quantity reaches QuantityDiscountThreshold.
var itemDiscountRates = map[string]float64{
	catalog.KeyboardID:    0.10,
	catalog.MouseID:       0.15,
	catalog.MonitorArmID:  0.20,
	catalog.LaptopPouchID: 0.05,
	catalog.SpeakerID:     0.25,
}

// ItemDiscountRate returns the per-product quantity discount rate, or 0
// for products without one.
func ItemDiscountRate(productID string) float64 {
	return itemDiscountRates[productID]
}

// DiscountType tags which discount family produced the final total.
type DiscountType string

const (
	DiscountNone     DiscountType = "none"
	DiscountProduct  DiscountType = "product"
	DiscountBulk     DiscountType = "bulk"
	DiscountTuesday  DiscountType = "tuesday"
	DiscountCombined DiscountType = "combined"
)

// LineQuote is the priced projection of a single cart line.
type LineQuote struct {
	ProductID     string  `json:"productId"`
	Name          string  `json:"name"`
	Qty           int     `json:"qty"`
	UnitPrice     Money   `json:"unitPrice"`
	OriginalPrice Money   `json:"originalPrice"`
	LineTotal     Money   `json:"lineTotal"`
	DiscountRate  float64 `json:"discountRate"`
	OnSale        bool    `json:"onSale"`
	SuggestSale   bool    `json:"suggestSale"`
}

// ItemDiscount reports a triggered per-product discount for display.
type ItemDiscount struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Summary aggregates the priced cart.
type Summary struct {
	Lines         []LineQuote    `json:"lines"`
	Subtotal      Money          `json:"subtotal"`
	ItemCount     int            `json:"itemCount"`
	ItemDiscounts []ItemDiscount `json:"itemDiscounts"`
	Total         Money          `json:"total"`
	DiscountRate  float64        `json:"discountRate"`
	SavedAmount   Money          `json:"savedAmount"`
	IsTuesday     bool           `json:"isTuesday"`
	IsBulk        bool           `json:"isBulk"`
	Type          DiscountType   `json:"type"`
}

// IsTuesday reports whether the given instant falls on a Tuesday.
func IsTuesday(now time.Time) bool {
	return now.Weekday() == time.Tuesday
}

// Quote prices the cart against the catalog. It is a pure function: the
// same lines, products and instant always yield the same summary.
//
// Lines referencing a product missing from the catalog are skipped rather
// than failing the whole quote; the cart operations never produce such a
// line, so this only covers defensively against torn inputs.
//
// The pipeline follows fixed precedence: per-line quantity discounts are
// computed first, a 30+ item bulk discount replaces them entirely, and the
// Tuesday discount multiplies whatever total remains. Intermediate math
// runs on float64 and the result is rounded once at the end.
func Quote(lines []cart.Line, products []catalog.Product, now time.Time) Summary {
	index := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}

	var (
		subtotal      Money
		running       float64
		itemCount     int
		quotes        []LineQuote
		itemDiscounts []ItemDiscount
	)
	for _, line := range lines {
		product, ok := index[line.ProductID]
		if !ok {
			continue
		}
		lineTotal := product.Price * Money(line.Qty)
		subtotal += lineTotal
		itemCount += line.Qty

		rate := 0.0
		if line.Qty >= QuantityDiscountThreshold {
			rate = ItemDiscountRate(product.ID)
		}
		if rate > 0 {
			itemDiscounts = append(itemDiscounts, ItemDiscount{Name: product.Name, Percent: rate * 100})
		}
		running += float64(lineTotal) * (1 - rate)

		quotes = append(quotes, LineQuote{
			ProductID:     product.ID,
			Name:          product.Name,
			Qty:           line.Qty,
			UnitPrice:     product.Price,
			OriginalPrice: product.OriginalPrice,
			LineTotal:     lineTotal,
			DiscountRate:  rate,
			OnSale:        product.OnSale,
			SuggestSale:   product.SuggestSale,
		})
	}

	isBulk := itemCount >= BulkDiscountThreshold
	if isBulk {
		// The bulk discount applies to the full subtotal and replaces
		// every per-product discount.
		running = float64(subtotal) * (1 - BulkDiscountRate)
		itemDiscounts = nil
	}

	isTuesday := IsTuesday(now)
	if isTuesday && running > 0 {
		running *= 1 - TuesdayDiscountRate
	}

	total := Money(math.Round(running))
	rate := 0.0
	if subtotal > 0 {
		rate = 1 - running/float64(subtotal)
	}

	return Summary{
		Lines:         quotes,
		Subtotal:      subtotal,
		ItemCount:     itemCount,
		ItemDiscounts: itemDiscounts,
		Total:         total,
		DiscountRate:  rate,
		SavedAmount:   Money(math.Round(float64(subtotal) - running)),
		IsTuesday:     isTuesday,
		IsBulk:        isBulk,
		Type:          discountType(isBulk, isTuesday, len(itemDiscounts) > 0),
	}
}

func discountType(isBulk, isTuesday, hasItemDiscounts bool) DiscountType {
	switch {
	case isBulk && isTuesday:
		return DiscountCombined
	case isBulk:
		return DiscountBulk
	case isTuesday:
		return DiscountTuesday
	case hasItemDiscounts:
		return DiscountProduct
	default:
		return DiscountNone
	}
}
