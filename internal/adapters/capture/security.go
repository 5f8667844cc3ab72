package capture

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// capPrivacy is the Privacy bit of the beacon capability field.
const capPrivacy = 0x0010

var wpaVendorOUI = []byte{0x00, 0x50, 0xF2, 0x01}

// rsnInfo is the part of the RSN information element (IE 48) we report on.
type rsnInfo struct {
	Version         uint16
	GroupCipher     string
	PairwiseCiphers []string
	AKMSuites       []string
	MFPRequired     bool
}

func parseRSN(data []byte) (*rsnInfo, error) {
	if len(data) < 2 {
		return nil, errors.New("RSN IE too short")
	}

	rsn := &rsnInfo{}
	rsn.Version = uint16(data[0]) | uint16(data[1])<<8
	offset := 2

	if offset+4 <= len(data) {
		rsn.GroupCipher = cipherSuite(data[offset : offset+4])
		offset += 4
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.PairwiseCiphers = append(rsn.PairwiseCiphers, cipherSuite(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		count := int(data[offset]) | int(data[offset+1])<<8
		offset += 2
		for i := 0; i < count && offset+4 <= len(data); i++ {
			rsn.AKMSuites = append(rsn.AKMSuites, akmSuite(data[offset:offset+4]))
			offset += 4
		}
	}

	if offset+2 <= len(data) {
		caps := uint16(data[offset]) | uint16(data[offset+1])<<8
		rsn.MFPRequired = caps&0x0040 != 0
	}
	return rsn, nil
}

func cipherSuite(data []byte) string {
	switch data[3] {
	case 1:
		return "WEP-40"
	case 2:
		return "TKIP"
	case 4:
		return "CCMP"
	case 5:
		return "WEP-104"
	case 8:
		return "GCMP-128"
	case 9:
		return "GCMP-256"
	case 10:
		return "CCMP-256"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

func akmSuite(data []byte) string {
	switch data[3] {
	case 1, 3, 5:
		return "802.1X"
	case 2, 4, 6:
		return "PSK"
	case 8, 9:
		return "SAE"
	case 18:
		return "OWE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", data[3])
	}
}

// securityOf classifies an AP from its RSN/WPA elements and the privacy bit.
func securityOf(packet gopacket.Packet) string {
	var rsn *rsnInfo
	wpa := false
	for _, layer := range packet.Layers() {
		ie, ok := layer.(*layers.Dot11InformationElement)
		if !ok {
			continue
		}
		switch ie.ID {
		case layers.Dot11InformationElementIDRSNInfo:
			if parsed, err := parseRSN(ie.Info); err == nil {
				rsn = parsed
			}
		case layers.Dot11InformationElementIDVendor:
			if len(ie.OUI) >= 4 && bytes.Equal(ie.OUI[:4], wpaVendorOUI) {
				wpa = true
			}
		}
	}

	if rsn != nil {
		return securityFromAKM(rsn.AKMSuites)
	}
	if wpa {
		return domain.SecurityWPA
	}
	if privacy(packet) {
		return domain.SecurityWEP
	}
	return domain.SecurityOpen
}

func securityFromAKM(akms []string) string {
	has := make(map[string]bool, len(akms))
	for _, a := range akms {
		has[a] = true
	}
	switch {
	case has["PSK"] && has["SAE"]:
		return domain.SecurityTransition
	case has["SAE"]:
		return domain.SecurityWPA3SAE
	case has["PSK"]:
		return domain.SecurityWPA2PSK
	case has["802.1X"]:
		return domain.SecurityEnterprise
	case has["OWE"]:
		return domain.SecurityOWE
	default:
		// RSN without a known AKM still protects with a key.
		return domain.SecurityWPA2PSK
	}
}

func privacy(packet gopacket.Packet) bool {
	if b, ok := packet.Layer(layers.LayerTypeDot11MgmtBeacon).(*layers.Dot11MgmtBeacon); ok {
		return b.Flags&capPrivacy != 0
	}
	if p, ok := packet.Layer(layers.LayerTypeDot11MgmtProbeResp).(*layers.Dot11MgmtProbeResp); ok {
		return p.Flags&capPrivacy != 0
	}
	return false
}
