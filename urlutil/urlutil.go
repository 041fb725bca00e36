// Package urlutil validates and normalizes candidate URLs before scraping.
package urlutil

import "strings"

// ValidatorSettings controls which URL shapes IsValid accepts.
type ValidatorSettings struct {
	Protocols                 []string `mapstructure:"protocols"`
	RequireTLD                bool     `mapstructure:"require_tld"`
	RequireProtocol           bool     `mapstructure:"require_protocol"`
	RequireHost               bool     `mapstructure:"require_host"`
	RequirePort               bool     `mapstructure:"require_port"`
	RequireValidProtocol      bool     `mapstructure:"require_valid_protocol"`
	AllowUnderscores          bool     `mapstructure:"allow_underscores"`
	AllowTrailingDot          bool     `mapstructure:"allow_trailing_dot"`
	AllowProtocolRelativeURLs bool     `mapstructure:"allow_protocol_relative_urls"`
	AllowFragments            bool     `mapstructure:"allow_fragments"`
	AllowQueryComponents      bool     `mapstructure:"allow_query_components"`
	ValidateLength            bool     `mapstructure:"validate_length"`
}

// DefaultValidatorSettings returns the settings used when the caller supplies none.
func DefaultValidatorSettings() ValidatorSettings {
	return ValidatorSettings{
		Protocols:            []string{"http", "https"},
		RequireTLD:           true,
		RequireHost:          true,
		RequireValidProtocol: true,
		AllowFragments:       true,
		AllowQueryComponents: true,
		ValidateLength:       true,
	}
}

var coercePrefixes = []string{"http://", "https://", "ftp://", "ftps://"}

// IsValid reports whether value is a non-empty string satisfying settings.
// Non-string values are never valid.
func IsValid(value any, settings ValidatorSettings) bool {
	raw, ok := value.(string)
	if !ok || raw == "" {
		return false
	}
	return isURL(raw, settings)
}

// Coerce prefixes raw with http:// unless it already carries a known scheme.
// Idempotent on already-prefixed input.
func Coerce(raw string) string {
	lower := strings.ToLower(raw)
	for _, prefix := range coercePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return raw
		}
	}
	return "http://" + raw
}

// ValidateAndFormat returns the coerced URL when value is valid per settings.
// A false result means the URL must not be fetched.
func ValidateAndFormat(value any, settings ValidatorSettings) (string, bool) {
	if !IsValid(value, settings) {
		return "", false
	}
	return Coerce(value.(string)), true
}

// Extension returns the token after the final dot, with any query string
// stripped. A URL without a dot yields the whole string; callers must
// tolerate garbage tokens.
func Extension(raw string) string {
	parts := strings.Split(raw, ".")
	ext := parts[len(parts)-1]
	ext, _, _ = strings.Cut(ext, "?")
	return ext
}

var imageExtensions = map[string]struct{}{
	"apng":  {},
	"bmp":   {},
	"gif":   {},
	"ico":   {},
	"cur":   {},
	"jpg":   {},
	"jpeg":  {},
	"jfif":  {},
	"pjpeg": {},
	"pjp":   {},
	"png":   {},
	"svg":   {},
	"tif":   {},
	"tiff":  {},
	"webp":  {},
}

// IsImageExtension reports whether ext is a known image extension.
// The match is exact and case-sensitive; callers normalize beforehand if needed.
func IsImageExtension(ext string) bool {
	_, ok := imageExtensions[ext]
	return ok
}

var nonHTMLExtensions = []string{
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".3gp", ".avi", ".mov", ".mp4", ".m4v", ".m4a", ".mp3",
	".mkv", ".ogv", ".ogm", ".ogg", ".oga", ".webm", ".wav",
	".bmp", ".gif", ".jpg", ".jpeg", ".png", ".webp",
	".zip", ".rar", ".tar", ".tar.gz", ".tgz", ".tar.bz2",
	".txt", ".pdf",
}

// IsNonHTML reports whether raw points at a resource that is not an HTML page
// (documents, archives, media, plain text). The check is substring containment
// of the dotted extension against each known entry, not equality; existing
// callers depend on exactly these semantics.
func IsNonHTML(raw string) bool {
	dotted := "." + Extension(raw)
	for _, ext := range nonHTMLExtensions {
		if strings.Contains(ext, dotted) {
			return true
		}
	}
	return false
}
