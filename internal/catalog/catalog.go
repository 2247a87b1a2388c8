package catalog

// Money represents a monetary value in whole currency units.
type Money = int64

// Well-known product identifiers. The catalog carries exactly these five.
const (
	KeyboardID    = "p1"
	MouseID       = "p2"
	MonitorArmID  = "p3"
	LaptopPouchID = "p4"
	SpeakerID     = "p5"
)

// Stock display thresholds.
const (
	LowStockThreshold          = 5
	TotalStockWarningThreshold = 50
)

// Promotion rates. Flash sales discount the original price, suggestion
// sales discount the current price and therefore compound.
const (
	FlashSaleRate      = 0.20
	SuggestionSaleRate = 0.05
)

// Product is a catalog entry. Price never exceeds OriginalPrice and Stock
// never goes negative.
type Product struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         Money  `json:"price"`
	OriginalPrice Money  `json:"originalPrice"`
	Stock         int    `json:"stock"`
	OnSale        bool   `json:"onSale"`
	SuggestSale   bool   `json:"suggestSale"`
}

// LowStock reports whether the product should surface a low stock warning.
func (p Product) LowStock() bool {
	return p.Stock > 0 && p.Stock < LowStockThreshold
}

// Seed returns the initial catalog. Prices equal original prices and no
// promotion is active.
func Seed() []Product {
	return []Product{
		{ID: KeyboardID, Name: "버그 없애는 키보드", Price: 10000, OriginalPrice: 10000, Stock: 50},
		{ID: MouseID, Name: "생산성 폭발 마우스", Price: 20000, OriginalPrice: 20000, Stock: 30},
		{ID: MonitorArmID, Name: "거북목 탈출 모니터암", Price: 30000, OriginalPrice: 30000, Stock: 20},
		{ID: LaptopPouchID, Name: "에러 방지 노트북 파우치", Price: 15000, OriginalPrice: 15000, Stock: 0},
		{ID: SpeakerID, Name: "코딩할 때 듣는 Lo-Fi 스피커", Price: 25000, OriginalPrice: 25000, Stock: 10},
	}
}
