// Package alert evaluates price alerts against the latest quotes
package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/models"
)

// Quotes collects every tracked price in lookup order: indices, holdings, then the watch list.
func Quotes(indices []models.MarketIndex, holdings []models.Holding, watchlist []models.WatchedAsset) []models.Quote {
	quotes := make([]models.Quote, 0, len(indices)+len(holdings)+len(watchlist))
	for _, idx := range indices {
		quotes = append(quotes, models.Quote{Symbol: idx.Symbol, Price: idx.Price})
	}
	for _, h := range holdings {
		quotes = append(quotes, h.Quote())
	}
	for _, w := range watchlist {
		quotes = append(quotes, w.Quote())
	}
	return quotes
}

// Resolve finds the price for symbol: the first exact match wins, otherwise
// the first quote whose symbol starts with it (BTC resolves to BTC-USD).
func Resolve(symbol string, quotes []models.Quote) (float64, bool) {
	for _, q := range quotes {
		if q.Symbol == symbol {
			return q.Price, true
		}
	}
	for _, q := range quotes {
		if strings.HasPrefix(q.Symbol, symbol) {
			return q.Price, true
		}
	}
	return 0, false
}

// Evaluate checks every active alert against quotes. Alerts whose condition
// holds are deactivated and produce one notification each; inactive alerts
// and alerts without a resolvable price are returned untouched. The input
// slice is not modified.
func Evaluate(alerts []models.PriceAlert, quotes []models.Quote, now time.Time) ([]models.PriceAlert, []models.Notification) {
	out := make([]models.PriceAlert, len(alerts))
	copy(out, alerts)

	var fired []models.Notification
	for i := range out {
		a := &out[i]
		if !a.Active || a.Symbol == "" {
			continue
		}
		price, ok := Resolve(a.Symbol, quotes)
		if !ok || !a.Satisfied(price) {
			continue
		}

		triggered := now
		a.Active = false
		a.TriggeredAt = &triggered
		fired = append(fired, models.Notification{
			ID:        uuid.NewString(),
			Message:   Message(a.Symbol, price),
			CreatedAt: now,
		})
	}
	return out, fired
}

// Message is the notification text for a triggered alert.
func Message(symbol string, price float64) string {
	return fmt.Sprintf("Price Alert: %s reached $%s", symbol, common.FormatPrice(price))
}
