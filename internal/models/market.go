package models

// MarketIndex is a quoted market index. Only Price changes per tick.
type MarketIndex struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"` // percent since the fixed reference
}

// Sentiment tags a news item
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// NewsItem is an immutable headline.
type NewsItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Time      string    `json:"time"`
	Sentiment Sentiment `json:"sentiment"`
	URL       string    `json:"url"`
}

// Timeframe selects the span of a reconstructed history.
type Timeframe string

const (
	Timeframe1D Timeframe = "1D"
	Timeframe1W Timeframe = "1W"
	Timeframe1M Timeframe = "1M"
	Timeframe1Y Timeframe = "1Y"
)

// ParseTimeframe returns the timeframe for s, defaulting to 1M when s is empty.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(s) {
	case Timeframe1D, Timeframe1W, Timeframe1M, Timeframe1Y:
		return Timeframe(s), true
	case "":
		return Timeframe1M, true
	}
	return "", false
}

// PerformancePoint is one labelled point of a value history.
type PerformancePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}
