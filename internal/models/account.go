// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CrossAccount is the canonical actor identity for the whole registry: a
// primary-chain address plus an optional secondary-chain identifier.
// Ownership checks compare both fields, never just the primary address.
type CrossAccount struct {
	Address     string `json:"address" gorm:"size:66"`
	SecondaryID string `json:"secondary_id,omitempty" gorm:"size:66"`
}

func (a CrossAccount) Equal(b CrossAccount) bool {
	return a.Address == b.Address && a.SecondaryID == b.SecondaryID
}

func (a CrossAccount) IsZero() bool {
	return a.Address == "" && a.SecondaryID == ""
}

type User struct {
	BaseModel
	Username     string       `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string       `json:"-" gorm:"size:255;not null"`
	Account      CrossAccount `json:"account" gorm:"embedded;embeddedPrefix:account_"`
	Status       UserStatus   `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB        `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt  *time.Time   `json:"last_login_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
