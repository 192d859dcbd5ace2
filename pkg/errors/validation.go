package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxModeLength is the longest mode name accepted.
const MaxModeLength = 63

// MaxEraDescriptionLength is the longest era description accepted.
const MaxEraDescriptionLength = 255

// modeNameRegex matches valid mode names: word characters only, so that they
// can appear in adjustment syntax such as "p+20" and in CSS class names.
var modeNameRegex = regexp.MustCompile(`^\w+$`)

// ValidateModeName validates a mode name for use in configuration.
func ValidateModeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidMode, "mode name cannot be empty")
	}
	if len(name) > MaxModeLength {
		return New(ErrCodeInvalidMode, "mode name too long (max %d characters)", MaxModeLength)
	}
	if strings.EqualFold(name, "none") {
		return New(ErrCodeInvalidMode, "mode name %q is reserved", name)
	}
	if !modeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidMode, "invalid mode name: %q", name)
	}
	return nil
}

// ValidateMode checks that mode is one of the configured modes.
func ValidateMode(mode string, modes []string) error {
	if !slices.Contains(modes, mode) {
		return New(ErrCodeInvalidMode, "unrecognized mode %q (must be one of: %s)", mode, strings.Join(modes, ", "))
	}
	return nil
}

// ValidateEraDescription validates a free-form era description.
//
// Validation rules:
//   - Valid UTF-8
//   - Maximum length of 255 bytes
//   - No control characters
func ValidateEraDescription(desc string) error {
	if !utf8.ValidString(desc) {
		return New(ErrCodeInvalidEra, "era description is not valid UTF-8")
	}
	if len(desc) > MaxEraDescriptionLength {
		return New(ErrCodeInvalidEra, "era description too long (max %d characters)", MaxEraDescriptionLength)
	}
	for _, r := range desc {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidEra, "era description contains invalid control characters")
		}
	}
	return nil
}

// ValidateSettingName validates a setting name against the known settings.
func ValidateSettingName(name string, known []string) error {
	if name == "" {
		return New(ErrCodeInvalidSetting, "setting name cannot be empty")
	}
	if !slices.Contains(known, name) {
		return New(ErrCodeInvalidSetting, "unknown setting %q", name)
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
