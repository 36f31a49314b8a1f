// Package portfolio derives holding values, totals and allocations
package portfolio

import "github.com/bobmcallan/vanguard/internal/models"

// categoryOrder fixes the order of the category allocation slices.
var categoryOrder = []models.Category{models.CategoryCrypto, models.CategoryStock, models.CategoryCash}

// Prices builds the symbol-to-price lookup from the holdings' live prices.
// When a symbol is held twice the later holding's price wins; both carry
// the same live price under the tick pipeline.
func Prices(holdings []models.Holding) map[string]float64 {
	prices := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		prices[h.Symbol] = h.CurrentPrice
	}
	return prices
}

// Value annotates each holding with amount × price and totals them.
// A holding whose symbol has no price is valued at 0 and marked unpriced.
func Value(holdings []models.Holding, prices map[string]float64) models.Valuation {
	valued := make([]models.ValuedHolding, 0, len(holdings))
	for _, h := range holdings {
		price, ok := prices[h.Symbol]
		vh := models.ValuedHolding{Holding: h, Priced: ok}
		if ok {
			vh.Value = h.Amount * price
		}
		valued = append(valued, vh)
	}
	return Allocate(valued)
}

// Allocate totals already-valued holdings and breaks the total down by
// category and by symbol. Percentages are 0 when the total is 0.
func Allocate(valued []models.ValuedHolding) models.Valuation {
	v := models.Valuation{Holdings: valued}
	if v.Holdings == nil {
		v.Holdings = []models.ValuedHolding{}
	}

	byCategory := make(map[models.Category]float64, len(categoryOrder))
	bySymbol := make(map[string]float64)
	var symbols []string

	for _, vh := range valued {
		v.Total += vh.Value
		byCategory[vh.Category] += vh.Value
		if _, seen := bySymbol[vh.Symbol]; !seen {
			symbols = append(symbols, vh.Symbol)
		}
		bySymbol[vh.Symbol] += vh.Value
	}

	v.ByCategory = make([]models.AllocationSlice, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		v.ByCategory = append(v.ByCategory, slice(string(c), byCategory[c], v.Total))
	}

	v.BySymbol = make([]models.AllocationSlice, 0, len(symbols))
	for _, s := range symbols {
		v.BySymbol = append(v.BySymbol, slice(s, bySymbol[s], v.Total))
	}

	return v
}

// Buckets maps the category allocation onto the planner's risk buckets:
// cash is safe, stocks are growth and crypto is speculative.
func Buckets(v models.Valuation) models.AllocationSplit {
	var split models.AllocationSplit
	for _, s := range v.ByCategory {
		switch models.Category(s.Key) {
		case models.CategoryCash:
			split.Safe = s.Percent
		case models.CategoryStock:
			split.Growth = s.Percent
		case models.CategoryCrypto:
			split.Speculative = s.Percent
		}
	}
	return split
}

func slice(key string, value, total float64) models.AllocationSlice {
	s := models.AllocationSlice{Key: key, Value: value}
	if total != 0 {
		s.Percent = value / total * 100
	}
	return s
}
