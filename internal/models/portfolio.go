// Package models defines data structures for Vanguard
package models

import "strings"

// Category discriminates the priced-asset variants
type Category string

const (
	CategoryCrypto Category = "crypto"
	CategoryStock  Category = "stock"
	CategoryCash   Category = "cash"
)

// ValidHoldingCategory reports whether c may be used for an owned holding.
func ValidHoldingCategory(c Category) bool {
	switch c {
	case CategoryCrypto, CategoryStock, CategoryCash:
		return true
	}
	return false
}

// ValidWatchCategory reports whether c may be used for a watched asset (no cash).
func ValidWatchCategory(c Category) bool {
	return c == CategoryCrypto || c == CategoryStock
}

// MaxAmount bounds every user-entered quantity, price or money figure so
// derived values stay finite.
const MaxAmount = 1e12

// ValidAmount reports whether v is a positive amount no larger than MaxAmount.
func ValidAmount(v float64) bool {
	return v > 0 && v <= MaxAmount
}

// TrendLength is the fixed number of points kept in every sparkline trend.
const TrendLength = 20

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// PricedAsset is the capability shared by holdings and watched assets:
// an identified symbol with a live price and a fixed-length trend.
type PricedAsset struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Category     Category  `json:"type"`
	CurrentPrice float64   `json:"current_price"`
	Trend        []float64 `json:"trend"`
}

// Quote returns the asset's symbol and latest price.
func (p PricedAsset) Quote() Quote {
	return Quote{Symbol: p.Symbol, Price: p.CurrentPrice}
}

// Holding is an owned asset. Its value is always derived, never stored.
type Holding struct {
	PricedAsset
	Amount float64 `json:"amount"`
}

// WatchedAsset is a tracked, non-owned asset.
type WatchedAsset struct {
	PricedAsset
}

// Quote is a symbol/price pair from any tracked list (indices, holdings, watch list).
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// ValuedHolding is a holding annotated with its derived value.
// Priced is false when no price was known for the symbol; Value is then 0.
type ValuedHolding struct {
	Holding
	Value  float64 `json:"value"`
	Priced bool    `json:"priced"`
}

// AllocationSlice is one segment of an allocation breakdown.
type AllocationSlice struct {
	Key     string  `json:"key"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Valuation is the derived view of the holdings at the current prices.
type Valuation struct {
	Holdings   []ValuedHolding   `json:"holdings"`
	Total      float64           `json:"total"`
	ByCategory []AllocationSlice `json:"by_category"`
	BySymbol   []AllocationSlice `json:"by_symbol"`
}
