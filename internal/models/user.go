package models

import "strings"

// User is the (mock) authenticated dashboard user.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUser derives the display name from the local part of the email address.
func NewUser(email string) User {
	email = strings.TrimSpace(email)
	name := email
	if i := strings.Index(email, "@"); i > 0 {
		name = email[:i]
	}
	return User{Email: email, Name: name}
}

// Tab is a dashboard view.
type Tab string

const (
	TabOverview  Tab = "overview"
	TabPortfolio Tab = "portfolio"
	TabPlanner   Tab = "planner"
	TabAdvisor   Tab = "advisor"
	TabSettings  Tab = "settings"
)

// NotificationSettings toggles the notification channels.
type NotificationSettings struct {
	Email        bool `json:"email"`
	Push         bool `json:"push"`
	WeeklyReport bool `json:"weekly_report"`
}

// Settings holds the per-session user preferences.
type Settings struct {
	Currency      string               `json:"currency" validate:"required,oneof=USD EUR GBP JPY"`
	Language      string               `json:"language" validate:"required,oneof=en es fr de"`
	Notifications NotificationSettings `json:"notifications"`
	TwoFactor     bool                 `json:"two_factor"`
	ProfileName   string               `json:"profile_name" validate:"required,max=64"`
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings(u User) Settings {
	return Settings{
		Currency: "USD",
		Language: "en",
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
		},
		ProfileName: u.Name,
	}
}

// ValidTab reports whether t names a dashboard view.
func ValidTab(t Tab) bool {
	switch t {
	case TabOverview, TabPortfolio, TabPlanner, TabAdvisor, TabSettings:
		return true
	}
	return false
}
