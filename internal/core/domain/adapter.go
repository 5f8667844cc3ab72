package domain

import "fmt"

// AdapterHandle identifies one wireless adapter as reported by the enumeration layer.
// The core treats it as read-only.
type AdapterHandle struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h AdapterHandle) String() string {
	if h.Name == "" || h.Name == h.ID {
		return h.ID
	}
	return fmt.Sprintf("%s (%s)", h.Name, h.ID)
}

// AdapterStatus is the connection state reported by an adapter when polled.
type AdapterStatus string

const (
	AdapterConnected    AdapterStatus = "connected"
	AdapterDisconnected AdapterStatus = "disconnected"
	AdapterConnecting   AdapterStatus = "connecting"
	AdapterScanning     AdapterStatus = "scanning"
	AdapterInactive     AdapterStatus = "inactive"
	AdapterUnknown      AdapterStatus = "unknown"
)

// IsConnected reports whether the adapter holds an established association.
func (s AdapterStatus) IsConnected() bool {
	return s == AdapterConnected
}

// Authentication, key management and cipher identifiers used in connection profiles.
const (
	AuthOpen    = "open"
	AKMWPA2PSK  = "wpa2-psk"
	CipherCCMP  = "ccmp"
	maxSSIDSize = 32
)

// Profile is a connection profile installed on an adapter for one attempt.
type Profile struct {
	SSID   string `json:"ssid"`
	Key    string `json:"-"`
	Hidden bool   `json:"hidden"`
	Auth   string `json:"auth"`
	AKM    string `json:"akm"`
	Cipher string `json:"cipher"`
}

// NewWPA2Profile builds the WPA2-PSK/CCMP profile used for every candidate attempt.
// Hidden marks the network as non-broadcasting; adapters that cannot honor it
// fall back to a regular connection attempt.
func NewWPA2Profile(ssid, key string, hidden bool) Profile {
	return Profile{
		SSID:   ssid,
		Key:    key,
		Hidden: hidden,
		Auth:   AuthOpen,
		AKM:    AKMWPA2PSK,
		Cipher: CipherCCMP,
	}
}

// ProfileHandle references a profile previously installed with AddProfile.
type ProfileHandle struct {
	ID   string `json:"id"`
	SSID string `json:"ssid"`
}
