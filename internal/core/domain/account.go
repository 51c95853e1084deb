package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	AccountActive   = "active"
	AccountInactive = "inactive"
	AccountBanned   = "banned"
)

// Account models a principal able to authenticate and list items for sale.
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	PhoneNumber    string     `json:"phoneNumber"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	SellerRating   *float64   `json:"sellerRating,omitempty"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// BootstrapRole picks the role of a new account from the number of accounts
// that already exist: the very first account administers the marketplace.
func BootstrapRole(existing int64) string {
	if existing == 0 {
		return RoleAdmin
	}
	return RoleUser
}
