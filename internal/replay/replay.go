// Package replay feeds recorded traffic through the receive pipeline.
//
// It reads a classic pcap capture, picks out TCP segments destined to the
// media port, and pushes each flow's payload bytes through its own framer,
// the exact path live connections take, minus the sockets. Used to debug
// field captures offline.
package replay

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/strix/internal/framer"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

// Source replays one capture file.
type Source struct {
	path string
	port uint16

	registry *session.Registry
	agg      *stats.Aggregator
	log      log.Logger
}

func New(path string, port uint16, registry *session.Registry, agg *stats.Aggregator) *Source {
	return &Source{
		path:     path,
		port:     port,
		registry: registry,
		agg:      agg,
		log:      log.GetLogger(),
	}
}

// Run reads the capture to EOF, feeding every matching TCP segment in
// capture order. Each sender flow gets an independent framer, mirroring the
// one-buffer-per-connection model of the live server.
func (s *Source) Run(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open capture %s: %w", s.path, err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read capture %s: %w", s.path, err)
	}

	framers := make(map[string]*framer.Framer)
	var packets int

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		data, _, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read packet: %w", err)
		}
		packets++

		pkt := gopacket.NewPacket(data, r.LinkType(), gopacket.Default)

		tcpLayer := pkt.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			continue
		}
		tcp := tcpLayer.(*layers.TCP)
		if uint16(tcp.DstPort) != s.port || len(tcp.Payload) == 0 {
			continue
		}
		netLayer := pkt.NetworkLayer()
		if netLayer == nil {
			continue
		}

		key := fmt.Sprintf("%s:%d", netLayer.NetworkFlow().Src(), tcp.SrcPort)
		fr, ok := framers[key]
		if !ok {
			fr = framer.New()
			framers[key] = fr
			s.registry.Register(key)
			s.log.Infof("replay flow %s", key)
		}

		resyncsBefore := fr.Resyncs()
		decodeErrsBefore := fr.DecodeErrors()
		for _, frame := range fr.Feed(tcp.Payload) {
			s.registry.OnFrame(key, frame, frame.Size())
			s.agg.Record(frame, frame.Size())
		}
		if fr.Resyncs() > resyncsBefore {
			s.agg.RecordResync()
		}
		if fr.DecodeErrors() > decodeErrsBefore {
			s.agg.RecordDecodeError()
		}
	}

	s.log.Infof("replay done: %d packets, %d flows", packets, len(framers))
	for key := range framers {
		s.registry.SetState(key, session.StateClosed)
	}
	return nil
}
