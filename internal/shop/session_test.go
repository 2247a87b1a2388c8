package shop

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/noah-isme/backend-mart/internal/catalog"
)

var wednesday = time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return wednesday }

func TestNewSessionSeedsCatalog(t *testing.T) {
	s := NewSession("s1", fixedNow)
	view := s.Snapshot()
	if len(view.Catalog.Products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(view.Catalog.Products))
	}
	if view.Revision != 0 {
		t.Fatalf("expected revision 0, got %d", view.Revision)
	}
	if len(view.Cart) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(view.Cart))
	}
	if view.Catalog.TotalStock != 110 {
		t.Fatalf("expected total stock 110, got %d", view.Catalog.TotalStock)
	}
	if view.Catalog.StockWarning {
		t.Fatal("did not expect stock warning on a fresh catalog")
	}
}

func TestAddItemTracksSelectionAndRevision(t *testing.T) {
	s := NewSession("s1", fixedNow)
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	view := s.Snapshot()
	if view.LastSelected != catalog.KeyboardID {
		t.Fatalf("expected last selected %s, got %s", catalog.KeyboardID, view.LastSelected)
	}
	if view.Revision != 1 {
		t.Fatalf("expected revision 1, got %d", view.Revision)
	}
	if got := view.Cart[0].Qty; got != 1 {
		t.Fatalf("expected qty 1, got %d", got)
	}
	for _, p := range view.Catalog.Products {
		if p.ID == catalog.KeyboardID && p.Stock != 49 {
			t.Fatalf("expected keyboard stock 49, got %d", p.Stock)
		}
	}
}

func TestStartSuggestionSaleNeedsCartAndSelection(t *testing.T) {
	s := NewSession("s1", fixedNow)
	if _, ok := s.StartSuggestionSale(); ok {
		t.Fatal("expected no suggestion on an empty cart")
	}
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	product, ok := s.StartSuggestionSale()
	if !ok {
		t.Fatal("expected a suggestion to fire")
	}
	if product.ID == catalog.KeyboardID {
		t.Fatal("suggestion must differ from the last selection")
	}
	if product.ID != catalog.MouseID {
		t.Fatalf("expected first eligible product %s, got %s", catalog.MouseID, product.ID)
	}
	if product.Price != 19000 {
		t.Fatalf("expected 5%% off 20000 = 19000, got %d", product.Price)
	}
	if !product.SuggestSale {
		t.Fatal("expected suggest sale flag set")
	}
}

func TestStartSuggestionSaleSkipsAlreadySuggested(t *testing.T) {
	s := NewSession("s1", fixedNow)
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	first, ok := s.StartSuggestionSale()
	if !ok {
		t.Fatal("expected first suggestion")
	}
	second, ok := s.StartSuggestionSale()
	if !ok {
		t.Fatal("expected second suggestion")
	}
	if first.ID == second.ID {
		t.Fatalf("expected a different product, got %s twice", first.ID)
	}
}

func TestStartRandomFlashSaleDiscountsOriginalPrice(t *testing.T) {
	s := NewSession("s1", fixedNow)
	rng := rand.New(rand.NewSource(7))
	var fired catalog.Product
	ok := false
	for i := 0; i < 100 && !ok; i++ {
		fired, ok = s.StartRandomFlashSale(rng)
	}
	if !ok {
		t.Fatal("expected a flash sale to fire eventually")
	}
	if !fired.OnSale {
		t.Fatal("expected on-sale flag set")
	}
	want := catalog.Money(math.Round(float64(fired.OriginalPrice) * 0.8))
	if fired.Price != want {
		t.Fatalf("expected price %d, got %d", want, fired.Price)
	}
	if fired.Stock <= 0 {
		t.Fatal("flash sale fired on an out-of-stock product")
	}
}

func TestPromotionBumpsRevision(t *testing.T) {
	s := NewSession("s1", fixedNow)
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := s.Revision()
	if _, ok := s.StartSuggestionSale(); !ok {
		t.Fatal("expected suggestion to fire")
	}
	if s.Revision() != before+1 {
		t.Fatalf("expected revision %d, got %d", before+1, s.Revision())
	}
}

func TestQuoteReflectsCartAndPromotions(t *testing.T) {
	s := NewSession("s1", fixedNow)
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddItem(catalog.KeyboardID); err != nil {
		t.Fatalf("add: %v", err)
	}
	view, revision := s.Quote(wednesday)
	if revision != 2 {
		t.Fatalf("expected revision 2, got %d", revision)
	}
	if view.Pricing.Total != 20000 {
		t.Fatalf("expected total 20000, got %d", view.Pricing.Total)
	}
	if view.Points.Total != 20 {
		t.Fatalf("expected 20 points, got %d", view.Points.Total)
	}
}
