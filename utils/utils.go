package utils

import (
	"errors"
	"fmt"
	"time"

	"asset-booking/database"
	"asset-booking/models/user"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// GetUserByUUID retrieves a user by their UUID from the database
func GetUserByUUID(uuid string) (*user.User, error) {
	var u user.User
	err := database.DB.Where("uuid = ?", uuid).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// GetUserUUIDFromClaims pulls the subject UUID out of verified JWT claims
// previously stored on the request by the auth middleware.
func GetUserUUIDFromClaims(c *fiber.Ctx) (string, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid user claims")
	}
	uuid, ok := claims["uuid"].(string)
	if !ok || uuid == "" {
		return "", fmt.Errorf("user uuid not found in token")
	}
	return uuid, nil
}

// RequestUser resolves the authenticated user record for the request.
func RequestUser(c *fiber.Ctx) (*user.User, error) {
	uuid, err := GetUserUUIDFromClaims(c)
	if err != nil {
		return nil, err
	}
	return GetUserByUUID(uuid)
}

// DayBounds returns the start and end of the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	n := now.With(t)
	return n.BeginningOfDay(), n.EndOfDay()
}

// ParseTimeParam parses an RFC3339 query parameter value; an empty value
// returns a nil time without error.
func ParseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected RFC3339", value)
	}
	return &t, nil
}
