// Package server implements the TCP listener and per-connection receive loop.
package server

import (
	"context"
	"io"
	"net"
	"sync"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/framer"
	"firestige.xyz/strix/internal/jtt1078"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

// Server accepts device connections and drives each one through the
// framer/decoder pipeline. One goroutine per connection; the registry and
// the aggregator are the only shared state and handle their own locking.
type Server struct {
	cfg      config.ServerConfig
	verboseN int

	registry *session.Registry
	agg      *stats.Aggregator
	log      log.Logger

	wg sync.WaitGroup
}

func New(cfg *config.Config, registry *session.Registry, agg *stats.Aggregator) *Server {
	return &Server{
		cfg:      cfg.Server,
		verboseN: cfg.Report.VerboseFrames,
		registry: registry,
		agg:      agg,
		log:      log.GetLogger(),
	}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
// Cancellation closes the listener and every live connection, then waits
// for the connection goroutines to drain.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Infof("listening on %s", ln.Addr())

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	var serveErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Only a shutdown-driven close is a clean exit; any other
			// accept failure must reach the caller.
			if ctx.Err() == nil {
				s.log.WithError(err).Error("accept failed")
				serveErr = err
			}
			break
		}
		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}

	s.wg.Wait()
	return serveErr
}

// handleConn owns one connection for its whole life: read, frame, decode,
// account. Errors here never affect other connections or the process.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	addr := conn.RemoteAddr().String()
	s.log.Infof("new connection from %s", addr)

	s.registry.Register(addr)
	defer s.registry.Unregister(addr)

	fr := framer.NewWithMaxPayload(s.cfg.MaxPayload)
	buf := make([]byte, s.cfg.ReadBufferSize)
	var received uint64

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.registry.SetState(addr, session.StateDecoding)
			resyncsBefore := fr.Resyncs()
			decodeErrsBefore := fr.DecodeErrors()

			for _, frame := range fr.Feed(buf[:n]) {
				received++
				s.processFrame(addr, frame, received)
			}

			if fr.Resyncs() > resyncsBefore {
				s.registry.SetState(addr, session.StateResyncing)
				s.agg.RecordResync()
			}
			if fr.DecodeErrors() > decodeErrsBefore {
				s.registry.SetState(addr, session.StateResyncing)
				s.agg.RecordDecodeError()
			}
			s.registry.SetState(addr, session.StateConnected)
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				s.log.WithError(err).Warnf("read error on %s", addr)
			}
			s.registry.SetState(addr, session.StateClosed)
			s.log.Infof("connection closed: %s (%d frames)", addr, received)
			return
		}
	}
}

func (s *Server) processFrame(addr string, frame *jtt1078.Frame, received uint64) {
	size := frame.Size()
	s.registry.OnFrame(addr, frame, size)
	s.agg.Record(frame, size)

	if frame.DataType == jtt1078.DataTypeVideoI {
		s.log.Debugf("I-frame #%d from %s (channel %d)", frame.Sequence, frame.DeviceID, frame.Channel)
	}

	// Full detail for the first few frames of a connection so a newly
	// attached device can be verified at a glance.
	if received <= uint64(s.verboseN) {
		s.log.WithFields(map[string]interface{}{
			"device":     frame.DeviceID,
			"channel":    frame.Channel,
			"seq":        frame.Sequence,
			"type":       frame.DataType.String(),
			"subpackage": frame.Subpackage.String(),
			"ts_ms":      frame.TimestampMs,
			"payload":    len(frame.Payload),
		}).Infof("frame from %s", addr)
	}
}
