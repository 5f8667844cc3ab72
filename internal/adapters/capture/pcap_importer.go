package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

var ErrUnsupportedLinkType = errors.New("capture is not 802.11 (need IEEE802_11 or radiotap link type)")

// Ensure interface compliance
var _ ports.CaptureImporter = (*PcapImporter)(nil)

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// PcapImporter lists the networks advertised in a capture file through
// beacons and probe responses.
type PcapImporter struct {
	// MaxPackets bounds how much of a capture is read. Zero means no limit.
	MaxPackets int
}

func NewPcapImporter() *PcapImporter {
	return &PcapImporter{}
}

func (p *PcapImporter) ImportFile(ctx context.Context, path string) ([]domain.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	return p.Import(ctx, data)
}

// Import accepts pcap or pcapng data.
func (p *PcapImporter) Import(ctx context.Context, data []byte) ([]domain.Network, error) {
	reader, err := openReader(data)
	if err != nil {
		return nil, err
	}

	lt := reader.LinkType()
	if lt != layers.LinkTypeIEEE802_11 && lt != layers.LinkTypeIEEE80211Radio {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedLinkType, lt)
	}

	seen := make(map[string]domain.Network)
	count := 0
	for {
		if p.MaxPackets > 0 && count >= p.MaxPackets {
			break
		}
		if count%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		raw, _, err := reader.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Truncated trailing record: keep what was read so far.
			log.Printf("[PCAP] stopping at packet %d: %v", count, err)
			break
		}
		count++

		packet := gopacket.NewPacket(raw, lt, gopacket.NoCopy)
		n, ok := networkFromPacket(packet)
		if !ok {
			continue
		}
		if _, dup := seen[n.SSID]; !dup {
			seen[n.SSID] = n
		}
	}

	out := make([]domain.Network, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SSID < out[j].SSID })
	log.Printf("[PCAP] %d packets read, %d networks found", count, len(out))
	return out, nil
}

func openReader(data []byte) (packetReader, error) {
	if r, err := pcapgo.NewReader(bytes.NewReader(data)); err == nil {
		return r, nil
	}
	r, err := pcapgo.NewNgReader(bytes.NewReader(data), pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, fmt.Errorf("not a pcap or pcapng file: %w", err)
	}
	return r, nil
}

// networkFromPacket extracts the SSID and security of a beacon or probe response.
// Hidden networks (empty or zeroed SSID) are skipped.
func networkFromPacket(packet gopacket.Packet) (domain.Network, bool) {
	if packet.Layer(layers.LayerTypeDot11MgmtBeacon) == nil &&
		packet.Layer(layers.LayerTypeDot11MgmtProbeResp) == nil {
		return domain.Network{}, false
	}
	dot11, ok := packet.Layer(layers.LayerTypeDot11).(*layers.Dot11)
	if !ok {
		return domain.Network{}, false
	}

	for _, layer := range packet.Layers() {
		ie, ok := layer.(*layers.Dot11InformationElement)
		if !ok || ie.ID != layers.Dot11InformationElementIDSSID {
			continue
		}
		ssid := string(ie.Info)
		if isHiddenSSID(ie.Info) || !domain.IsValidSSID(ssid) {
			return domain.Network{}, false
		}
		return domain.Network{
			SSID:     ssid,
			BSSID:    dot11.Address3.String(),
			Source:   domain.NetworkSourceCapture,
			Security: securityOf(packet),
		}, true
	}
	return domain.Network{}, false
}

func isHiddenSSID(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
