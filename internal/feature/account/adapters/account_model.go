package adapters

import (
	"time"

	"account_backend/internal/feature/account/domain/entity"
)

// AccountModel is the GORM model for the accounts table.
// IsActive, Role and Location carry no `default` tag: GORM skips zero-valued
// fields that have a default, which would silently turn IsActive=0 into 1.
type AccountModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Username     string    `gorm:"size:64;not null;uniqueIndex"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	FirstName    string    `gorm:"size:100;not null"`
	LastName     string    `gorm:"size:100;not null"`
	Location     string    `gorm:"size:64;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:16;not null"`
	IsActive     int       `gorm:"not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToEntity converts the GORM model to a domain entity.
func (m *AccountModel) ToEntity() *entity.Account {
	return &entity.Account{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Location:     entity.Location(m.Location),
		PasswordHash: m.PasswordHash,
		Role:         entity.Role(m.Role),
		IsActive:     entity.Status(m.IsActive),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// AccountModelFromEntity converts a domain entity to a GORM model.
func AccountModelFromEntity(a *entity.Account) *AccountModel {
	return &AccountModel{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Location:     string(a.Location),
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		IsActive:     int(a.IsActive),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
