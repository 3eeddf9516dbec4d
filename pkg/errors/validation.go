package errors

import (
	"strings"
	"unicode"
)

const (
	maxSymbolLength  = 512
	maxPackageLength = 256
)

// forbiddenPathChars are characters that would corrupt the URL path or
// fragment if they leaked out of a symbol or package name.
const forbiddenPathChars = "/\\#?%\"'<>`"

// ValidateSymbolName validates a dotted symbol name such as
// "classy.widgets.Button.onClick".
//
// The rules are intentionally narrow so that a valid name always produces a
// well-formed anchor:
//   - No empty names
//   - No empty segments (leading, trailing or doubled dots)
//   - No whitespace or control characters
//   - No URL delimiters (/, #, ?, %, quotes, angle brackets)
//   - Maximum length of 512 characters
func ValidateSymbolName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSymbol, "symbol name cannot be empty")
	}
	if len(name) > maxSymbolLength {
		return New(ErrCodeInvalidSymbol, "symbol name too long (max %d characters)", maxSymbolLength)
	}
	if err := checkDotted(name); err != nil {
		return New(ErrCodeInvalidSymbol, "invalid symbol name %q: %s", name, err.Error())
	}
	return nil
}

// ValidatePackagePath validates a dotted package path such as "classy.widgets".
// It applies the same character rules as ValidateSymbolName with a shorter
// length limit.
func ValidatePackagePath(pkg string) error {
	if pkg == "" {
		return New(ErrCodeInvalidPackage, "package path cannot be empty")
	}
	if len(pkg) > maxPackageLength {
		return New(ErrCodeInvalidPackage, "package path too long (max %d characters)", maxPackageLength)
	}
	if err := checkDotted(pkg); err != nil {
		return New(ErrCodeInvalidPackage, "invalid package path %q: %s", pkg, err.Error())
	}
	return nil
}

// ValidateSegment validates a single top-level segment used as a mapping key.
func ValidateSegment(seg string) error {
	if seg == "" {
		return New(ErrCodeInvalidMapping, "mapping key cannot be empty")
	}
	if strings.Contains(seg, ".") {
		return New(ErrCodeInvalidMapping, "mapping key %q must be a single segment", seg)
	}
	if err := checkDotted(seg); err != nil {
		return New(ErrCodeInvalidMapping, "invalid mapping key %q: %s", seg, err.Error())
	}
	return nil
}

// ValidateBasePath validates the URL prefix that links are composed under.
// It must be an absolute path or an http(s) URL and end with a slash.
func ValidateBasePath(base string) error {
	if base == "" {
		return New(ErrCodeInvalidConfig, "base path cannot be empty")
	}
	if !strings.HasPrefix(base, "/") &&
		!strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return New(ErrCodeInvalidConfig, "base path %q must start with / or use http(s)", base)
	}
	if !strings.HasSuffix(base, "/") {
		return New(ErrCodeInvalidConfig, "base path %q must end with /", base)
	}
	for _, r := range base {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "base path contains invalid characters")
		}
	}
	if strings.ContainsAny(base, "#?") {
		return New(ErrCodeInvalidConfig, "base path %q cannot contain a query or fragment", base)
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

// checkDotted reports the first structural problem in a dot-separated name.
func checkDotted(s string) error {
	for _, r := range s {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "contains control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "contains whitespace")
		}
	}
	if i := strings.IndexAny(s, forbiddenPathChars); i >= 0 {
		return New(ErrCodeInvalidInput, "contains reserved character %q", s[i])
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return New(ErrCodeInvalidInput, "contains an empty segment")
		}
	}
	return nil
}
