// Package validation holds input validation rules shared by services.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,100}$`)

// Usernames that collide with route segments or system identities. The
// identity webhook never hits this list because provider-minted placeholder
// names carry a "user_" prefix.
var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"me":            {},
	"search":        {},
	"username":      {},
	"users":         {},
	"posts":         {},
	"comments":      {},
	"notifications": {},
	"linkpreview":   {},
	"webhook":       {},
	"metrics":       {},
	"health":        {},
	"system":        {},
}

// ValidateUsername validates username format and reserved names.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-100 characters and contain only letters, numbers, '_', '-' and '.'")
	}

	if strings.HasPrefix(username, ".") || strings.HasSuffix(username, ".") {
		return fmt.Errorf("username cannot start or end with a dot")
	}

	if _, exists := reservedUsernames[strings.ToLower(username)]; exists {
		return fmt.Errorf("username is reserved")
	}

	return nil
}
