package form

import (
	"maps"
	"strings"

	"github.com/amirphl/morevans-pricing/models"
)

// Checkbox groups of the account form.
const (
	GroupNotificationPreferences = "notificationPreferences"
	GroupSecuritySettings        = "securitySettings"
)

// UserAccountForm edits an account. Checkbox groups are kept as flat maps so a single toggle
// can be merged into its group without touching siblings.
type UserAccountForm struct {
	account models.UserAccount
	groups  map[string]map[string]bool
	touched map[string]bool
}

func NewUserAccountForm(account models.UserAccount) *UserAccountForm {
	n := account.NotificationPreferences
	return &UserAccountForm{
		account: account,
		groups: map[string]map[string]bool{
			GroupNotificationPreferences: {
				"email":     n.Email,
				"sms":       n.SMS,
				"push":      n.Push,
				"marketing": n.Marketing,
			},
			GroupSecuritySettings: {
				"twoFactorEnabled": account.SecuritySettings.TwoFactorEnabled,
			},
		},
		touched: make(map[string]bool),
	}
}

// SetChecked merges one checkbox into its group and leaves the other keys as they are.
func (f *UserAccountForm) SetChecked(group, key string, checked bool) {
	next := maps.Clone(f.groups[group])
	if next == nil {
		next = make(map[string]bool)
	}
	next[key] = checked
	f.groups[group] = next
	f.touched[group+"."+key] = true
}

func (f *UserAccountForm) Checked(group, key string) bool {
	return f.groups[group][key]
}

// SetField assigns a text field. Address fields use the "address." prefix.
func (f *UserAccountForm) SetField(key, value string) {
	if sub, ok := strings.CutPrefix(key, "address."); ok {
		a := &f.account.Address
		switch sub {
		case "street":
			a.Street = value
		case "city":
			a.City = value
		case "state":
			a.State = value
		case "country":
			a.Country = value
		case "postalCode":
			a.PostalCode = value
		}
	} else {
		switch key {
		case "fullName":
			f.account.FullName = value
		case "email":
			f.account.Email = value
		case "phone":
			f.account.Phone = value
		case "role":
			f.account.Role = value
		case "status":
			f.account.Status = value
		}
	}
	f.touched[key] = true
}

func (f *UserAccountForm) Touched(key string) bool { return f.touched[key] }

// Account returns the edited account with the checkbox groups folded back in.
func (f *UserAccountForm) Account() models.UserAccount {
	a := f.account
	n := f.groups[GroupNotificationPreferences]
	a.NotificationPreferences = models.NotificationPreferences{
		Email:     n["email"],
		SMS:       n["sms"],
		Push:      n["push"],
		Marketing: n["marketing"],
	}
	a.SecuritySettings.TwoFactorEnabled = f.groups[GroupSecuritySettings]["twoFactorEnabled"]
	return a
}
