package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// maxNameLength bounds cluster and node names in input documents.
const maxNameLength = 256

// ValidateName validates a cluster or node name from an input document.
// Names are free text (they usually become labels), so the rules only
// reject what cannot be shown or stored safely:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "name contains invalid control characters")
		}
	}

	return nil
}

// attributeKeyRegex matches unquoted DOT identifiers.
var attributeKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateAttributeKey validates an attribute key. Keys are written unquoted
// in DOT output, so they must be plain identifiers.
func ValidateAttributeKey(key string) error {
	if !attributeKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidDocument, "invalid attribute key: %q", key)
	}
	return nil
}

// ValidatePath validates a relative storage path, such as a cache prefix
// or an object key namespace.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
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

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a document URL. Only absolute http and https URLs
// with a host are accepted.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must have a host")
	}

	return nil
}
