package dto

import (
	"time"

	"account_backend/internal/feature/account/domain/entity"
)

// AccountRes is the public view of an account. It has no password field.
type AccountRes struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Location  string    `json:"location"`
	Role      string    `json:"role"`
	IsActive  int       `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewAccountRes converts an entity to its public view.
func NewAccountRes(a *entity.Account) AccountRes {
	return AccountRes{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Location:  string(a.Location),
		Role:      string(a.Role),
		IsActive:  int(a.IsActive),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// LoginUser is the account summary returned with a token.
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRes is the body of a successful login.
type LoginRes struct {
	Status string    `json:"status"`
	Token  string    `json:"token"`
	User   LoginUser `json:"user"`
}

// ProfileRes is the body of GET /profile.
type ProfileRes struct {
	Status  string     `json:"status"`
	Details AccountRes `json:"details"`
}

// UserRes is the body of profile and role updates.
type UserRes struct {
	Status string     `json:"status"`
	User   AccountRes `json:"user"`
}

// ListRes is the body of GET /users.
type ListRes struct {
	Status string       `json:"status"`
	List   []AccountRes `json:"list"`
}

// NewListRes converts accounts to their public view. An empty result renders as [].
func NewListRes(status string, accounts []entity.Account) ListRes {
	list := make([]AccountRes, 0, len(accounts))
	for i := range accounts {
		list = append(list, NewAccountRes(&accounts[i]))
	}
	return ListRes{Status: status, List: list}
}
