package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateProjectID validates a project identifier for safety and correctness.
// It rejects identifiers that could be used for path traversal or injection
// attacks when the ID is embedded in cache keys, file names, or URLs.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "project id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "project id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "project id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// roomTypeRegex matches valid room type identifiers: lowercase slugs such as
// "bedroom", "living_room", or "home-office".
var roomTypeRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateRoomType validates a room type identifier.
// Catalog membership is checked separately by the catalog package; this only
// enforces the identifier shape.
func ValidateRoomType(roomType string) error {
	if roomType == "" {
		return New(ErrCodeInvalidRoomType, "room type cannot be empty")
	}

	if !roomTypeRegex.MatchString(roomType) {
		return New(ErrCodeInvalidRoomType, "invalid room type: %q", roomType)
	}

	return nil
}

// ValidatePath validates a file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
