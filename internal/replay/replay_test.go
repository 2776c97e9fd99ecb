package replay

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/strix/internal/jtt1078"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

// writeCapture builds a pcap file of TCP segments carrying the given
// payloads from 10.0.0.1 to 10.0.0.2:dstPort.
func writeCapture(t *testing.T, dstPort uint16, payloads [][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))

	seq := uint32(1000)
	for _, payload := range payloads {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
			DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
			SrcIP:    net.IP{10, 0, 0, 1},
			DstIP:    net.IP{10, 0, 0, 2},
		}
		tcp := &layers.TCP{
			SrcPort: 40001,
			DstPort: layers.TCPPort(dstPort),
			Seq:     seq,
			PSH:     true,
			ACK:     true,
			Window:  65535,
		}
		require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))
		seq += uint32(len(payload))

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(payload)))

		data := buf.Bytes()
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     time.Now(),
			CaptureLength: len(data),
			Length:        len(data),
		}, data))
	}
	return path
}

func TestReplayDecodesCapture(t *testing.T) {
	enc := jtt1078.NewEncoder("138000000001", 1, jtt1078.PayloadTypeH264)
	frame1 := enc.EncodeVideoFrame(jtt1078.DataTypeVideoI, []byte("keyframe"))[0]
	frame2 := enc.EncodeVideoFrame(jtt1078.DataTypeVideoP, []byte("delta"))[0]

	// Split the second frame across two segments so the replay path has to
	// reassemble exactly like the live server.
	seg1 := append(append([]byte{}, frame1...), frame2[:10]...)
	seg2 := frame2[10:]

	path := writeCapture(t, 6605, [][]byte{seg1, seg2})

	registry := session.NewRegistry()
	agg := stats.NewAggregator()
	src := New(path, 6605, registry, agg)

	require.NoError(t, src.Run(context.Background()))

	snap := agg.Snapshot()
	assert.Equal(t, int64(2), snap.TotalPackets)
	assert.Equal(t, int64(1), snap.IFrames)
	assert.Equal(t, int64(1), snap.PFrames)

	sessions := registry.Snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, "138000000001", sessions[0].DeviceID)
	assert.Equal(t, session.StateClosed, sessions[0].State)
}

func TestReplayIgnoresOtherPorts(t *testing.T) {
	enc := jtt1078.NewEncoder("138000000001", 1, jtt1078.PayloadTypeH264)
	frame := enc.EncodeVideoFrame(jtt1078.DataTypeVideoI, []byte("x"))[0]

	path := writeCapture(t, 8080, [][]byte{frame})

	registry := session.NewRegistry()
	agg := stats.NewAggregator()
	require.NoError(t, New(path, 6605, registry, agg).Run(context.Background()))

	assert.Equal(t, int64(0), agg.Snapshot().TotalPackets)
	assert.Equal(t, 0, registry.Count())
}

func TestReplayMissingFile(t *testing.T) {
	registry := session.NewRegistry()
	agg := stats.NewAggregator()
	err := New("/nonexistent/capture.pcap", 6605, registry, agg).Run(context.Background())
	assert.Error(t, err)
}
