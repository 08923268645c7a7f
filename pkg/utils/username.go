package utils

import "strings"

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// Names the community feed would show as if the service itself posted.
var reservedUsernames = map[string]bool{
	"admin":     true,
	"anonymous": true,
	"catchlog":  true,
	"moderator": true,
	"support":   true,
	"system":    true,
}

// ValidateUsername checks the handle shown next to catches in the feed:
// 3 to 20 ASCII letters, digits or underscores, not starting with an
// underscore and not a reserved name. Surrounding spaces are ignored.
func ValidateUsername(username string) error {
	name := strings.TrimSpace(username)

	switch {
	case len(name) < MinUsernameLength:
		return usernameError("Username must be at least 3 characters")
	case len(name) > MaxUsernameLength:
		return usernameError("Username must be at most 20 characters")
	case name[0] == '_':
		return usernameError("Username must start with a letter or number")
	}
	for _, r := range name {
		if !isHandleRune(r) {
			return usernameError("Username can only contain letters, numbers and underscores")
		}
	}
	if reservedUsernames[NormalizeUsername(name)] {
		return usernameError("Username is reserved")
	}
	return nil
}

// NormalizeUsername is the stored form; lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func isHandleRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

func usernameError(msg string) error {
	return &ValidationError{Field: "username", Message: msg}
}
