package domain

import (
	"regexp"
	"unicode/utf8"
)

// Validation Helpers

var (
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// Length check (Linux interfaces are usually short, IFNAMSIZ is 16)
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// IsValidSSID checks the 802.11 length limit (1-32 octets) and rejects
// strings that cannot be handed to a profile as text.
func IsValidSSID(ssid string) bool {
	if len(ssid) == 0 || len(ssid) > maxSSIDSize {
		return false
	}
	return utf8.ValidString(ssid)
}

// IsValidCandidate reports whether a candidate can be used as a WPA2 passphrase
// (8-63 characters) or a raw 64 hex digit PSK.
func IsValidCandidate(candidate string) bool {
	n := len(candidate)
	if n == 64 {
		return hexKeyRegex.MatchString(candidate)
	}
	return n >= 8 && n <= 63
}

var hexKeyRegex = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
