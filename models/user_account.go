package models

// UserAccount is the admin view of a platform user.
type UserAccount struct {
	ID                      string                  `json:"id"`
	FullName                string                  `json:"fullName"`
	Email                   string                  `json:"email"`
	Phone                   string                  `json:"phone"`
	Role                    string                  `json:"role"`
	Status                  string                  `json:"status"`
	Address                 Address                 `json:"address"`
	NotificationPreferences NotificationPreferences `json:"notificationPreferences"`
	SecuritySettings        SecuritySettings        `json:"securitySettings"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type NotificationPreferences struct {
	Email     bool `json:"email"`
	SMS       bool `json:"sms"`
	Push      bool `json:"push"`
	Marketing bool `json:"marketing"`
}

type SecuritySettings struct {
	TwoFactorEnabled    bool   `json:"twoFactorEnabled"`
	PasswordLastChanged string `json:"passwordLastChanged"`
	LastLoginIP         string `json:"lastLoginIp"`
}

// DefaultNotificationPreferences are applied to accounts created without explicit choices.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, SMS: true, Push: true, Marketing: false}
}
