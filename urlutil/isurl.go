package urlutil

import (
	"net"
	"regexp"
	"strconv"
	"strings"
)

// maxURLLength mirrors the historical IE limit the validator enforces.
const maxURLLength = 2083

var reDisallowed = regexp.MustCompile(`[\s<>]`)

// isURL ports the validator.js isURL rule set the original scraper relied on.
// The settings record is applied verbatim; there is no Go library that accepts
// this shape.
func isURL(raw string, settings ValidatorSettings) bool {
	if settings.ValidateLength && len(raw) >= maxURLLength {
		return false
	}
	if reDisallowed.MatchString(raw) || strings.HasPrefix(raw, "mailto:") {
		return false
	}

	rest := raw
	if i := strings.Index(rest, "#"); i >= 0 {
		if !settings.AllowFragments {
			return false
		}
		rest = rest[:i]
	}
	if i := strings.Index(rest, "?"); i >= 0 {
		if !settings.AllowQueryComponents {
			return false
		}
		rest = rest[:i]
	}

	if i := strings.Index(rest, "://"); i >= 0 {
		protocol := strings.ToLower(rest[:i])
		if settings.RequireValidProtocol && !containsString(settings.Protocols, protocol) {
			return false
		}
		rest = rest[i+3:]
	} else if settings.RequireProtocol {
		return false
	} else if strings.HasPrefix(rest, "//") {
		if !settings.AllowProtocolRelativeURLs {
			return false
		}
		rest = rest[2:]
	}
	if rest == "" {
		return false
	}

	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return !settings.RequireHost
	}

	if i := strings.Index(rest, "@"); i >= 0 {
		auth := rest[:i]
		if strings.Count(auth, ":") > 1 || auth == ":" {
			return false
		}
		rest = rest[i+1:]
	}

	host, port, ok := splitHostPort(rest)
	if !ok {
		return false
	}
	if port == "" && settings.RequirePort {
		return false
	}
	if port != "" && !validPort(port) {
		return false
	}

	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	return isFQDN(host, settings)
}

// splitHostPort separates an optional trailing port, handling bracketed IPv6.
func splitHostPort(hostport string) (host, port string, ok bool) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end < 0 {
			return "", "", false
		}
		host = hostport[1:end]
		remainder := hostport[end+1:]
		if remainder == "" {
			return host, "", true
		}
		if !strings.HasPrefix(remainder, ":") {
			return "", "", false
		}
		return host, remainder[1:], true
	}
	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		return hostport[:i], hostport[i+1:], true
	}
	return hostport, "", true
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return false
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isFQDN(host string, settings ValidatorSettings) bool {
	if settings.AllowTrailingDot {
		host = strings.TrimSuffix(host, ".")
	}
	if host == "" {
		return false
	}

	parts := strings.Split(host, ".")
	if settings.RequireTLD {
		if len(parts) < 2 {
			return false
		}
		if !validTLD(parts[len(parts)-1]) {
			return false
		}
	}

	for _, part := range parts {
		if part == "" || len(part) > 63 {
			return false
		}
		if !validHostLabel(part) {
			return false
		}
		if !settings.AllowUnderscores && strings.Contains(part, "_") {
			return false
		}
		if strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

// validHostLabel accepts ASCII letters, digits, hyphen, underscore, and any
// rune above U+00A0 (internationalized labels).
func validHostLabel(part string) bool {
	for _, r := range part {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		case r > 0x00A0:
		default:
			return false
		}
	}
	return true
}

// validTLD accepts two or more letters (ASCII or internationalized) or a
// punycode xn-- label.
func validTLD(tld string) bool {
	lower := strings.ToLower(tld)
	if strings.HasPrefix(lower, "xn") && len(lower) >= 4 {
		valid := true
		for _, r := range lower[2:] {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
				valid = false
				break
			}
		}
		if valid {
			return true
		}
	}

	runes := []rune(tld)
	if len(runes) < 2 {
		return false
	}
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r > 0x00A0:
		default:
			return false
		}
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
