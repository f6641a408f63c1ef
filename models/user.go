package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account. Email is the login identifier.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username     string     `json:"username" gorm:"size:50;not null;uniqueIndex"`
	FirstName    string     `json:"first_name" gorm:"size:55;not null"`
	LastName     string     `json:"last_name" gorm:"size:55;not null"`
	Bio          string     `json:"bio" gorm:"size:500"`
	ProfilePhoto string     `json:"profile_photo" gorm:"type:text"`
	Password     string     `json:"-" gorm:"size:128;not null"`
	IsStaff      bool       `json:"is_staff" gorm:"not null;default:false"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	IsSuperuser  bool       `json:"is_superuser" gorm:"not null;default:false"`
	DateJoined   time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (u *User) HashPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// NormalizeEmail lowercases the domain part of an address, leaving the local
// part untouched.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
