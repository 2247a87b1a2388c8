package cart

// Line is a cart entry. Qty is always positive; a line that would reach
// zero is removed instead.
type Line struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Cart is an ordered set of lines with at most one line per product.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Qty returns the quantity of the line for the product, or 0.
func (c *Cart) Qty(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Qty
	}
	return 0
}

// TotalQty sums quantities across all lines.
func (c *Cart) TotalQty() int {
	total := 0
	for _, l := range c.lines {
		total += l.Qty
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) append(productID string, qty int) {
	c.lines = append(c.lines, Line{ProductID: productID, Qty: qty})
}

func (c *Cart) setQty(productID string, qty int) {
	if i := c.index(productID); i >= 0 {
		c.lines[i].Qty = qty
	}
}

func (c *Cart) remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}
