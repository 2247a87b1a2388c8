package catalog

import (
	"errors"
	"math"
	"sync"
)

// ErrNotFound indicates the product id is not part of the catalog.
var ErrNotFound = errors.New("product not found")

// ErrInsufficientStock is returned when a stock adjustment would drive the
// stock count negative.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrSaleNotEligible is returned when a promotion cannot be started for the
// product (no stock left, or the same promotion already runs).
var ErrSaleNotEligible = errors.New("product not eligible for sale")

// Store holds the mutable catalog of a single shopping session. All access
// goes through the store; callers never share Product pointers.
type Store struct {
	mu       sync.RWMutex
	order    []string
	products map[string]*Product
}

// NewStore builds a store from the given products, preserving their order.
func NewStore(products []Product) *Store {
	s := &Store{products: make(map[string]*Product, len(products))}
	for i := range products {
		p := products[i]
		s.order = append(s.order, p.ID)
		s.products[p.ID] = &p
	}
	return s
}

// Get returns a copy of the product and whether it exists.
func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, false
	}
	return *p, true
}

// List returns copies of all products in seed order.
func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.products[id])
	}
	return out
}

// AdjustStock changes the stock count by delta. The adjustment is rejected
// if it would drive the count below zero.
func (s *Store) AdjustStock(id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	next := p.Stock + delta
	if next < 0 {
		return ErrInsufficientStock
	}
	p.Stock = next
	return nil
}

// TotalStock reports the stock count summed over the whole catalog.
func (s *Store) TotalStock() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, p := range s.products {
		total += p.Stock
	}
	return total
}

// StartFlashSale marks the product as on flash sale and reprices it at 20%
// off the original price.
func (s *Store) StartFlashSale(id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if p.OnSale || p.Stock <= 0 {
		return Product{}, ErrSaleNotEligible
	}
	p.OnSale = true
	p.Price = Money(math.Round(float64(p.OriginalPrice) * (1 - FlashSaleRate)))
	return *p, nil
}

// StartSuggestionSale marks the product as suggestion-discounted and takes
// 5% off the current price, stacking with an active flash sale.
func (s *Store) StartSuggestionSale(id string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if p.SuggestSale || p.Stock <= 0 {
		return Product{}, ErrSaleNotEligible
	}
	p.SuggestSale = true
	p.Price = Money(math.Round(float64(p.Price) * (1 - SuggestionSaleRate)))
	return *p, nil
}
