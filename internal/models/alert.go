package models

import "time"

// AlertCondition is the direction a price must cross to trigger an alert
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// PriceAlert fires once when its symbol's price satisfies Condition
// relative to TargetPrice. A triggered alert is never re-armed.
type PriceAlert struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	TargetPrice float64        `json:"target_price"`
	Condition   AlertCondition `json:"condition"`
	Active      bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}

// Satisfied reports whether price meets the alert's threshold condition.
func (a PriceAlert) Satisfied(price float64) bool {
	switch a.Condition {
	case ConditionAbove:
		return price >= a.TargetPrice
	case ConditionBelow:
		return price <= a.TargetPrice
	}
	return false
}

// Notification is a user-facing message created by an alert trigger or a brokerage import.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
