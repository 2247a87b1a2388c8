package cart

import (
	"errors"
	"strings"

	"github.com/noah-isme/backend-mart/internal/catalog"
)

// ErrInvalidProduct is returned when no product was selected or the
// selected id is unknown to the catalog.
var ErrInvalidProduct = errors.New("invalid product")

// ErrProductNotFound indicates a cart mutation references a catalog id
// that no longer exists.
var ErrProductNotFound = errors.New("product not found")

// ErrOutOfStock indicates the product has no available stock at add time.
var ErrOutOfStock = errors.New("out of stock")

// ErrInsufficientStock indicates a quantity increase exceeds the available
// catalog stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrItemNotFound indicates the cart holds no line for the product.
var ErrItemNotFound = errors.New("cart item not found")

// Service applies cart mutations against a session catalog. Every
// operation is all-or-nothing: on failure neither cart nor catalog change.
//
// The central invariant is stock conservation: for every product the
// catalog stock plus the cart quantity equals the initial stock.
type Service struct {
	Catalog *catalog.Store
}

// Add puts one unit of the product into the cart, creating the line on
// first add. Catalog stock is decremented by the same amount.
func (s *Service) Add(c *Cart, productID string) error {
	if s == nil || s.Catalog == nil {
		return errors.New("cart service not configured")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrInvalidProduct
	}
	product, ok := s.Catalog.Get(productID)
	if !ok {
		return ErrInvalidProduct
	}
	if product.Stock <= 0 {
		return ErrOutOfStock
	}
	existing := c.Qty(productID)
	if existing > 0 {
		// Invariant-preserving guard: the new line quantity must stay
		// within catalog stock plus what the line already holds.
		if existing+1 > product.Stock+existing {
			return ErrOutOfStock
		}
		if err := s.Catalog.AdjustStock(productID, -1); err != nil {
			return ErrOutOfStock
		}
		c.setQty(productID, existing+1)
		return nil
	}
	if err := s.Catalog.AdjustStock(productID, -1); err != nil {
		return ErrOutOfStock
	}
	c.append(productID, 1)
	return nil
}

// ChangeQty adjusts the line quantity by delta. A result of zero or below
// removes the line and returns its full quantity to the catalog. Increases
// beyond available stock fail without touching any state.
func (s *Service) ChangeQty(c *Cart, productID string, delta int) error {
	if s == nil || s.Catalog == nil {
		return errors.New("cart service not configured")
	}
	current := c.Qty(productID)
	if current == 0 {
		return ErrItemNotFound
	}
	product, ok := s.Catalog.Get(productID)
	if !ok {
		return ErrProductNotFound
	}
	next := current + delta
	if next <= 0 {
		return s.Remove(c, productID)
	}
	if delta > 0 && delta > product.Stock {
		return ErrInsufficientStock
	}
	if err := s.Catalog.AdjustStock(productID, -delta); err != nil {
		return ErrInsufficientStock
	}
	c.setQty(productID, next)
	return nil
}

// Remove deletes the line and returns its full quantity to the catalog.
func (s *Service) Remove(c *Cart, productID string) error {
	if s == nil || s.Catalog == nil {
		return errors.New("cart service not configured")
	}
	current := c.Qty(productID)
	if current == 0 {
		return ErrItemNotFound
	}
	if _, ok := s.Catalog.Get(productID); !ok {
		return ErrProductNotFound
	}
	if err := s.Catalog.AdjustStock(productID, current); err != nil {
		return err
	}
	c.remove(productID)
	return nil
}
