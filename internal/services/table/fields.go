package table

import "github.com/bobmcallan/vanguard/internal/models"

// Sort keys shared by the holdings and watch list tables.
const (
	KeySymbol       = "symbol"
	KeyType         = "type"
	KeyCurrentPrice = "current_price"
	KeyAmount       = "amount"
	KeyValue        = "value"
)

// HoldingFields are the sortable columns of the holdings table.
var HoldingFields = Fields[models.ValuedHolding]{
	KeySymbol: func(h models.ValuedHolding) (any, bool) { return h.Symbol, true },
	KeyType:   func(h models.ValuedHolding) (any, bool) { return string(h.Category), true },
	KeyAmount: func(h models.ValuedHolding) (any, bool) { return h.Amount, true },
	KeyCurrentPrice: func(h models.ValuedHolding) (any, bool) {
		return h.CurrentPrice, h.Priced
	},
	KeyValue: func(h models.ValuedHolding) (any, bool) {
		return h.Value, h.Priced
	},
}

// WatchFields are the sortable columns of the watch list table.
var WatchFields = Fields[models.WatchedAsset]{
	KeySymbol:       func(w models.WatchedAsset) (any, bool) { return w.Symbol, true },
	KeyType:         func(w models.WatchedAsset) (any, bool) { return string(w.Category), true },
	KeyCurrentPrice: func(w models.WatchedAsset) (any, bool) { return w.CurrentPrice, true },
}

// HoldingText is the filterable text of a holding: symbol and category.
func HoldingText(h models.ValuedHolding) []string {
	return []string{h.Symbol, string(h.Category)}
}

// NewsText is the filterable text of a headline: title and source.
func NewsText(n models.NewsItem) []string {
	return []string{n.Title, n.Source}
}

// FilterNews applies the text query and the sentiment filter ("all" or empty
// matches every sentiment).
func FilterNews(news []models.NewsItem, query, sentiment string) []models.NewsItem {
	matched := Filter(news, query, NewsText)
	if sentiment == "" || sentiment == "all" {
		return matched
	}
	out := matched[:0]
	for _, n := range matched {
		if string(n.Sentiment) == sentiment {
			out = append(out, n)
		}
	}
	return out
}
