package market

import (
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vanguard/internal/models"
)

// DefaultNewPrice is the base a newly added asset's first simulated price walks from.
const DefaultNewPrice = 100.0

// Indices returns the fixed index quotes a session starts from.
func Indices() []models.MarketIndex {
	return []models.MarketIndex{
		{Symbol: "^GSPC", Name: "S&P 500", Price: 4783.45, Change: 0.45},
		{Symbol: "^IXIC", Name: "NASDAQ", Price: 15628.90, Change: -0.12},
		{Symbol: "BTC-USD", Name: "Bitcoin", Price: 64230.50, Change: 2.34},
		{Symbol: "ETH-USD", Name: "Ethereum", Price: 3450.20, Change: 1.56},
	}
}

// News returns the fixed headlines a session starts from.
func News() []models.NewsItem {
	return []models.NewsItem{
		{ID: "1", Title: "Fed Signals Potential Rate Cuts Later This Year", Source: "Finance Daily", Time: "2h ago", Sentiment: models.SentimentPositive, URL: "#"},
		{ID: "2", Title: "Tech Stocks Rally Ahead of Earnings Season", Source: "MarketWatch", Time: "4h ago", Sentiment: models.SentimentPositive, URL: "#"},
		{ID: "3", Title: "Crypto Regulation Talks Heat Up in Congress", Source: "CoinDesk", Time: "5h ago", Sentiment: models.SentimentNeutral, URL: "#"},
		{ID: "4", Title: "Oil Prices Dip Amid Global Demand Concerns", Source: "Bloomberg", Time: "6h ago", Sentiment: models.SentimentNegative, URL: "#"},
	}
}

// NewHolding builds a holding with a fresh id and trend.
func NewHolding(w *Walker, symbol string, category models.Category, amount, price float64) models.Holding {
	trend := w.Sparkline()
	if category == models.CategoryCash {
		trend = FlatTrend(price)
	}
	return models.Holding{
		PricedAsset: models.PricedAsset{
			ID:           uuid.NewString(),
			Symbol:       models.NormalizeSymbol(symbol),
			Category:     category,
			CurrentPrice: price,
			Trend:        trend,
		},
		Amount: amount,
	}
}

// NewWatchedAsset builds a watched asset with a fresh id and trend.
func NewWatchedAsset(w *Walker, symbol string, category models.Category, price float64) models.WatchedAsset {
	return models.WatchedAsset{
		PricedAsset: models.PricedAsset{
			ID:           uuid.NewString(),
			Symbol:       models.NormalizeSymbol(symbol),
			Category:     category,
			CurrentPrice: price,
			Trend:        w.Sparkline(),
		},
	}
}

// SeedHoldings returns the demo portfolio a session starts with.
func SeedHoldings(w *Walker) []models.Holding {
	return []models.Holding{
		NewHolding(w, "BTC", models.CategoryCrypto, 0.5, 64230),
		NewHolding(w, "ETH", models.CategoryCrypto, 5.0, 3450),
		NewHolding(w, "TSLA", models.CategoryStock, 20, 225),
		NewHolding(w, "USDT", models.CategoryCash, 15000, 1),
	}
}

// SeedWatchlist returns the demo watch list a session starts with.
func SeedWatchlist(w *Walker) []models.WatchedAsset {
	return []models.WatchedAsset{
		NewWatchedAsset(w, "NVDA", models.CategoryStock, 850),
		NewWatchedAsset(w, "SOL", models.CategoryCrypto, 145),
	}
}

// SeedAlerts returns the demo alerts a session starts with.
func SeedAlerts(now time.Time) []models.PriceAlert {
	return []models.PriceAlert{
		{ID: uuid.NewString(), Symbol: "BTC", TargetPrice: 65000, Condition: models.ConditionAbove, Active: true, CreatedAt: now},
		{ID: uuid.NewString(), Symbol: "ETH", TargetPrice: 3000, Condition: models.ConditionBelow, Active: true, CreatedAt: now},
	}
}

// BrokerageHoldings returns the positions a simulated brokerage import yields.
func BrokerageHoldings(w *Walker) []models.Holding {
	return []models.Holding{
		NewHolding(w, "AAPL", models.CategoryStock, 15, 189.50),
		NewHolding(w, "MSFT", models.CategoryStock, 10, 415.20),
		NewHolding(w, "VTI", models.CategoryStock, 25, 245.00),
	}
}
