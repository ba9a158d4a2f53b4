package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Roles an account can hold. Stored as a plain column and branched on
// explicitly; there is no user-type hierarchy.
const (
	RoleAdmin  = "admin"
	RoleParent = "parent"
)

// User is an account that can sign in: either a school admin or a parent.
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Email    string
	Role     string `gorm:"not null;default:parent"`
}

// EnsureUser creates an account with the given role if the username does
// not exist yet. Blank username or password makes this a no-op, so it is
// safe to call unconditionally at startup with optional env values.
func EnsureUser(username, password, email, role string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	if role != RoleAdmin && role != RoleParent {
		return errors.New("unknown role: " + role)
	}

	var existing User
	if err := DB.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{
			Username: trimmedUser,
			Password: string(hashed),
			Email:    strings.TrimSpace(email),
			Role:     role,
		}).Error
	}

	return nil
}
