// Package entity defines the domain entities for the account feature.
package entity

import (
	"slices"
	"time"
)

// Role is a coarse permission tier attached to every account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Status is the activation state of an account, stored as 0 or 1.
type Status int

const (
	StatusDisabled Status = 0
	StatusEnabled  Status = 1
)

// IsValid reports whether s is 0 or 1.
func (s Status) IsValid() bool {
	return s == StatusDisabled || s == StatusEnabled
}

// Location is the serviceable region of an account.
type Location string

// DefaultLocation is applied on registration when no location is supplied.
const DefaultLocation Location = "India"

// AllowedLocations lists the regions currently served.
var AllowedLocations = []Location{
	"India", "USA", "Canada", "Australia", "Germany", "China",
}

// IsValid reports whether l is in AllowedLocations.
func (l Location) IsValid() bool {
	return slices.Contains(AllowedLocations, l)
}

// Account represents a registered account.
// PasswordHash is excluded from JSON so it can never leak through a
// serialized record (HTTP bodies, cache entries).
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Location     Location  `json:"location"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     Status    `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsEnabled reports whether the account may authenticate.
func (a *Account) IsEnabled() bool {
	return a.IsActive == StatusEnabled
}

// ProfileChanges carries a partial update of the mutable profile fields.
// A nil field is left untouched.
type ProfileChanges struct {
	FirstName *string
	LastName  *string
	Location  *Location
}

// IsEmpty reports whether no field is set.
func (c ProfileChanges) IsEmpty() bool {
	return c.FirstName == nil && c.LastName == nil && c.Location == nil
}
