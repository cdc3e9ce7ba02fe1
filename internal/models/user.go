package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;size:42;not null" json:"walletAddress"` // lowercase 0x hex
	IsAdmin       bool      `gorm:"default:false" json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicUser is the shape returned to clients.
type PublicUser struct {
	ID            string `json:"id"`
	WalletAddress string `json:"walletAddress"`
	IsAdmin       bool   `json:"isAdmin"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, WalletAddress: u.WalletAddress, IsAdmin: u.IsAdmin}
}
