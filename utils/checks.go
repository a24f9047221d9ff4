package utils

import (
	"fmt"

	"Cineverse/models/postgres"

	"gorm.io/gorm"
)

// Check if a user account exists
func UserExists(db *gorm.DB, userID string) (*postgres.User, error) {
	var user postgres.User
	err := db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// DisplayName resolves the name shown next to a user's messages and
// participant entry. Falls back to a generic name when the account has no
// full name on file.
func DisplayName(db *gorm.DB, userID string) string {
	var name string
	err := db.Model(&postgres.User{}).
		Select("full_name").
		Where("id = ?", userID).
		Find(&name).Error
	if err != nil || name == "" {
		return "User"
	}
	return name
}
