package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// MinimumUsernameLength is the shortest accepted username.
const MinimumUsernameLength = 4

// usernamePattern allows alphanumerics, hyphens, underscores.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// codePattern matches a short code over the base62 alphabet.
var codePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
// The destination is validated syntactically, never resolved.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// ValidateUsername checks length and character set.
func ValidateUsername(username string) (bool, string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, "Username is required"
	}
	if len(username) < MinimumUsernameLength {
		return false, "Username must be at least 4 characters long"
	}
	if len(username) > 80 {
		return false, "Username is too long"
	}
	if !usernamePattern.MatchString(username) {
		return false, "Username may only contain letters, digits, hyphens and underscores"
	}
	return true, ""
}

// ValidatePassword requires at least 8 characters with lower, upper and digit.
func ValidatePassword(password string) (bool, string) {
	const msg = "Password must be at least 8 characters long and have lower and uppercase letters and numbers"

	if len(password) < 8 {
		return false, msg
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower || !hasUpper || !hasDigit {
		return false, msg
	}
	return true, ""
}

// ValidateCode checks that a presented short code has a plausible shape
// before it reaches the store.
func ValidateCode(code string) bool {
	if code == "" || len(code) > 10 {
		return false
	}
	return codePattern.MatchString(code)
}
