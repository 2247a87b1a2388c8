package pricing

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/noah-isme/backend-mart/internal/cart"
	"github.com/noah-isme/backend-mart/internal/catalog"
)

// 2025-07-01 fell on a Tuesday, 2025-07-02 on a Wednesday.
var (
	tuesday = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	weekday = time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC)
)

func TestQuoteEmptyCart(t *testing.T) {
	s := Quote(nil, catalog.Seed(), weekday)
	if s.Subtotal != 0 || s.Total != 0 || s.DiscountRate != 0 || s.SavedAmount != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if len(s.Lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(s.Lines))
	}
	if s.Type != DiscountNone {
		t.Fatalf("expected type none, got %s", s.Type)
	}
}

func TestQuoteSingleItemNoDiscount(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 1}}
	s := Quote(lines, catalog.Seed(), weekday)
	if s.Subtotal != 10000 || s.Total != 10000 {
		t.Fatalf("expected 10000/10000, got %d/%d", s.Subtotal, s.Total)
	}
	if s.DiscountRate != 0 || s.SavedAmount != 0 {
		t.Fatalf("expected no discount, got rate %f saved %d", s.DiscountRate, s.SavedAmount)
	}
}

func TestQuoteItemDiscountAtThreshold(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 10}}
	s := Quote(lines, catalog.Seed(), weekday)
	if s.Total != 90000 {
		t.Fatalf("expected 90000 after 10%% item discount, got %d", s.Total)
	}
	if len(s.ItemDiscounts) != 1 || s.ItemDiscounts[0].Percent != 10 {
		t.Fatalf("expected one 10%% item discount, got %+v", s.ItemDiscounts)
	}
	if s.Type != DiscountProduct {
		t.Fatalf("expected type product, got %s", s.Type)
	}
}

func TestQuoteBelowThresholdNoItemDiscount(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 9}}
	s := Quote(lines, catalog.Seed(), weekday)
	if s.Total != 90000 || len(s.ItemDiscounts) != 0 {
		t.Fatalf("expected 90000 with no item discount, got %d (%+v)", s.Total, s.ItemDiscounts)
	}
}

func TestQuotePerProductRates(t *testing.T) {
	cases := []struct {
		id   string
		rate float64
	}{
		{catalog.KeyboardID, 0.10},
		{catalog.MouseID, 0.15},
		{catalog.MonitorArmID, 0.20},
		{catalog.LaptopPouchID, 0.05},
		{catalog.SpeakerID, 0.25},
	}
	for _, tc := range cases {
		if got := ItemDiscountRate(tc.id); got != tc.rate {
			t.Fatalf("%s: expected rate %f, got %f", tc.id, tc.rate, got)
		}
	}
	if got := ItemDiscountRate("p42"); got != 0 {
		t.Fatalf("unknown product: expected 0, got %f", got)
	}
}

func TestQuoteBulkOverridesItemDiscounts(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 30}}
	s := Quote(lines, catalog.Seed(), weekday)
	// 25% off the subtotal, not the 10% item discount.
	if s.Total != 225000 {
		t.Fatalf("expected 225000, got %d", s.Total)
	}
	if len(s.ItemDiscounts) != 0 {
		t.Fatalf("bulk discount must clear item discounts, got %+v", s.ItemDiscounts)
	}
	if !s.IsBulk || s.Type != DiscountBulk {
		t.Fatalf("expected bulk type, got %s (bulk=%v)", s.Type, s.IsBulk)
	}
}

func TestQuoteBulkAcrossLines(t *testing.T) {
	lines := []cart.Line{
		{ProductID: catalog.KeyboardID, Qty: 15},
		{ProductID: catalog.MouseID, Qty: 15},
	}
	s := Quote(lines, catalog.Seed(), weekday)
	if s.ItemCount != 30 {
		t.Fatalf("expected item count 30, got %d", s.ItemCount)
	}
	// (15*10000 + 15*20000) * 0.75
	if s.Total != 337500 {
		t.Fatalf("expected 337500, got %d", s.Total)
	}
}

func TestQuoteTuesdayStacksMultiplicatively(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 1}}
	s := Quote(lines, catalog.Seed(), tuesday)
	if s.Total != 9000 {
		t.Fatalf("expected 9000 on Tuesday, got %d", s.Total)
	}
	if !s.IsTuesday || s.Type != DiscountTuesday {
		t.Fatalf("expected tuesday type, got %s", s.Type)
	}
	if s.SavedAmount != 1000 {
		t.Fatalf("expected saved 1000, got %d", s.SavedAmount)
	}
}

func TestQuoteCombinedBulkTuesday(t *testing.T) {
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 30}}
	s := Quote(lines, catalog.Seed(), tuesday)
	// 300000 * 0.75 * 0.9
	if s.Total != 202500 {
		t.Fatalf("expected 202500, got %d", s.Total)
	}
	if s.Type != DiscountCombined {
		t.Fatalf("expected combined type, got %s", s.Type)
	}
	wantRate := 1 - 202500.0/300000.0
	if math.Abs(s.DiscountRate-wantRate) > 1e-9 {
		t.Fatalf("expected rate %f, got %f", wantRate, s.DiscountRate)
	}
}

func TestQuoteSkipsUnknownProducts(t *testing.T) {
	lines := []cart.Line{
		{ProductID: "p42", Qty: 3},
		{ProductID: catalog.MouseID, Qty: 2},
	}
	s := Quote(lines, catalog.Seed(), weekday)
	if s.Subtotal != 40000 || len(s.Lines) != 1 {
		t.Fatalf("expected the dangling line to be skipped, got %+v", s)
	}
}

func TestQuoteUsesCurrentPrices(t *testing.T) {
	store := catalog.NewStore(catalog.Seed())
	if _, err := store.StartFlashSale(catalog.KeyboardID); err != nil {
		t.Fatalf("start flash sale: %v", err)
	}
	lines := []cart.Line{{ProductID: catalog.KeyboardID, Qty: 1}}
	s := Quote(lines, store.List(), weekday)
	if s.Total != 8000 {
		t.Fatalf("expected flash sale price 8000, got %d", s.Total)
	}
	if !s.Lines[0].OnSale {
		t.Fatal("expected line to carry the sale flag")
	}
}

func TestQuoteDeterministic(t *testing.T) {
	lines := []cart.Line{
		{ProductID: catalog.KeyboardID, Qty: 12},
		{ProductID: catalog.SpeakerID, Qty: 4},
	}
	a := Quote(lines, catalog.Seed(), weekday)
	b := Quote(lines, catalog.Seed(), weekday)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("quote not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestQuoteMonotonicPastThreshold(t *testing.T) {
	seed := catalog.Seed()
	discounted := Quote([]cart.Line{{ProductID: catalog.SpeakerID, Qty: 10}}, seed, weekday)
	undiscounted := Money(10) * 25000
	if discounted.Total >= undiscounted {
		t.Fatalf("crossing the threshold must reduce the total: %d >= %d", discounted.Total, undiscounted)
	}
}
