package shop

import (
	"math/rand"
	"sync"
	"time"

	"github.com/noah-isme/backend-mart/internal/cart"
	"github.com/noah-isme/backend-mart/internal/catalog"
	"github.com/noah-isme/backend-mart/internal/points"
	"github.com/noah-isme/backend-mart/internal/pricing"
)

// Session is a single shopper's world: a freshly seeded catalog, a cart,
// the last-selected product and a revision counter. Every mutation and
// recompute is funnelled through one mutex so promotion timers and HTTP
// requests never observe a half-applied change.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	catalog      *catalog.Store
	cart         *cart.Cart
	svc          cart.Service
	lastSelected string
	revision     uint64
	touchedAt    time.Time
	now          func() time.Time
}

// NewSession seeds a session with the initial catalog.
func NewSession(id string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	store := catalog.NewStore(catalog.Seed())
	created := now()
	return &Session{
		ID:        id,
		CreatedAt: created,
		catalog:   store,
		cart:      cart.New(),
		svc:       cart.Service{Catalog: store},
		touchedAt: created,
		now:       now,
	}
}

// Touch refreshes the session's idle timer.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touchedAt = s.now()
	s.mu.Unlock()
}

// TouchedAt returns the time of the last interaction.
func (s *Session) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// Revision returns the current revision counter. It increases on every
// successful mutation, including promotion fires.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// AddItem puts one unit of the product into the cart and records it as the
// last selection.
func (s *Session) AddItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.svc.Add(s.cart, productID); err != nil {
		return err
	}
	s.lastSelected = productID
	s.bump()
	return nil
}

// ChangeQty adjusts a cart line by delta; zero or below removes the line.
func (s *Session) ChangeQty(productID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.svc.ChangeQty(s.cart, productID, delta); err != nil {
		return err
	}
	s.bump()
	return nil
}

// RemoveItem deletes a cart line and returns its stock to the catalog.
func (s *Session) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.svc.Remove(s.cart, productID); err != nil {
		return err
	}
	s.bump()
	return nil
}

// StartRandomFlashSale picks one random product and tries to start a flash
// sale on it. Ineligible picks (already on sale, no stock) fail silently.
func (s *Session) StartRandomFlashSale(rng *rand.Rand) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	products := s.catalog.List()
	if len(products) == 0 {
		return catalog.Product{}, false
	}
	pick := products[rng.Intn(len(products))]
	product, err := s.catalog.StartFlashSale(pick.ID)
	if err != nil {
		return catalog.Product{}, false
	}
	s.bump()
	return product, true
}

// StartSuggestionSale discounts the first product that differs from the
// last selection, has stock and is not already suggested. It only fires
// while the cart is non-empty and something has been selected.
func (s *Session) StartSuggestionSale() (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart.Empty() || s.lastSelected == "" {
		return catalog.Product{}, false
	}
	for _, p := range s.catalog.List() {
		if p.ID == s.lastSelected || p.Stock <= 0 || p.SuggestSale {
			continue
		}
		product, err := s.catalog.StartSuggestionSale(p.ID)
		if err != nil {
			continue
		}
		s.bump()
		return product, true
	}
	return catalog.Product{}, false
}

// Snapshot returns the session view for API responses.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionView{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		Revision:     s.revision,
		LastSelected: s.lastSelected,
		Catalog:      s.catalogView(),
		Cart:         s.cart.Lines(),
	}
}

// CatalogView returns the catalog listing with stock annotations.
func (s *Session) CatalogView() CatalogView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogView()
}

// Quote computes the price and points summaries for the current cart.
// It returns the revision the quote belongs to so callers can memoize.
func (s *Session) Quote(now time.Time) (QuoteView, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.cart.Lines()
	products := s.catalog.List()
	summary := pricing.Quote(lines, products, now)
	result := points.Compute(lines, products, summary.Total, now)
	return QuoteView{Pricing: summary, Points: result}, s.revision
}

// bump invalidates memoized quotes. Callers hold s.mu.
func (s *Session) bump() {
	s.revision++
	s.touchedAt = s.now()
}

func (s *Session) catalogView() CatalogView {
	products := s.catalog.List()
	views := make([]ProductView, 0, len(products))
	total := 0
	for _, p := range products {
		total += p.Stock
		views = append(views, ProductView{Product: p, LowStock: p.LowStock()})
	}
	return CatalogView{
		Products:     views,
		TotalStock:   total,
		StockWarning: total < catalog.TotalStockWarningThreshold,
	}
}

// ProductView decorates a product with its low-stock flag.
type ProductView struct {
	catalog.Product
	LowStock bool `json:"lowStock"`
}

// CatalogView is the catalog listing with aggregate stock annotations.
type CatalogView struct {
	Products     []ProductView `json:"products"`
	TotalStock   int           `json:"totalStock"`
	StockWarning bool          `json:"stockWarning"`
}

// SessionView is the full session representation returned by the API.
type SessionView struct {
	ID           string      `json:"id"`
	CreatedAt    time.Time   `json:"createdAt"`
	Revision     uint64      `json:"revision"`
	LastSelected string      `json:"lastSelected,omitempty"`
	Catalog      CatalogView `json:"catalog"`
	Cart         []cart.Line `json:"cart"`
}

// QuoteView bundles the pricing and loyalty point results for one cart.
type QuoteView struct {
	Pricing pricing.Summary `json:"pricing"`
	Points  points.Result   `json:"points"`
}
