package points

import (
	"fmt"
	"time"

	"github.com/noah-isme/backend-mart/internal/cart"
	"github.com/noah-isme/backend-mart/internal/catalog"
	"github.com/noah-isme/backend-mart/internal/pricing"
)

// Loyalty point constants. Base points accrue per 1000 currency units of
// the final total.
const (
	CalculationBase = 1000
	ComboBonus      = 50
	FullSetBonus    = 100
)

// Bulk purchase bonus tiers. Only the largest matching tier applies.
const (
	SmallBulkThreshold  = 10
	MediumBulkThreshold = 20
	LargeBulkThreshold  = 30
	SmallBulkBonus      = 20
	MediumBulkBonus     = 50
	LargeBulkBonus      = 100
)

// Result is the computed loyalty outcome for a cart.
type Result struct {
	Base      int      `json:"basePoints"`
	Total     int      `json:"totalPoints"`
	IsTuesday bool     `json:"isTuesday"`
	Breakdown []string `json:"breakdown"`
}

// Compute derives earned points from the cart composition and the final
// priced total. Pure function; the empty cart yields the zero result.
//
// Order of accrual: base points, Tuesday doubling of the base, additive
// combo bonuses, then a single bulk quantity bonus. Breakdown lines are
// appended in that same order.
func Compute(lines []cart.Line, products []catalog.Product, total pricing.Money, now time.Time) Result {
	if len(lines) == 0 {
		return Result{}
	}

	index := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		index[p.ID] = p
	}

	base := int(total / CalculationBase)
	var breakdown []string
	if base > 0 {
		breakdown = append(breakdown, fmt.Sprintf("기본: %dp", base))
	}

	running := base
	isTuesday := pricing.IsTuesday(now)
	doubled := isTuesday && base > 0
	if doubled {
		running = base * 2
		breakdown = append(breakdown, "화요일 2배")
	}

	var hasKeyboard, hasMouse, hasMonitorArm bool
	itemCount := 0
	for _, line := range lines {
		product, ok := index[line.ProductID]
		if !ok {
			continue
		}
		itemCount += line.Qty
		switch product.ID {
		case catalog.KeyboardID:
			hasKeyboard = true
		case catalog.MouseID:
			hasMouse = true
		case catalog.MonitorArmID:
			hasMonitorArm = true
		}
	}

	if hasKeyboard && hasMouse {
		running += ComboBonus
		breakdown = append(breakdown, fmt.Sprintf("키보드+마우스 세트 +%dp", ComboBonus))
		if hasMonitorArm {
			running += FullSetBonus
			breakdown = append(breakdown, fmt.Sprintf("풀세트 구매 +%dp", FullSetBonus))
		}
	}

	switch {
	case itemCount >= LargeBulkThreshold:
		running += LargeBulkBonus
		breakdown = append(breakdown, fmt.Sprintf("대량구매(%d개+) +%dp", LargeBulkThreshold, LargeBulkBonus))
	case itemCount >= MediumBulkThreshold:
		running += MediumBulkBonus
		breakdown = append(breakdown, fmt.Sprintf("대량구매(%d개+) +%dp", MediumBulkThreshold, MediumBulkBonus))
	case itemCount >= SmallBulkThreshold:
		running += SmallBulkBonus
		breakdown = append(breakdown, fmt.Sprintf("대량구매(%d개+) +%dp", SmallBulkThreshold, SmallBulkBonus))
	}

	return Result{
		Base:      base,
		Total:     running,
		IsTuesday: doubled,
		Breakdown: breakdown,
	}
}
