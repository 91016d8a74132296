// Package transport carries the sysstats wire protocol over TCP with
// 4-byte length-prefixed CBOR frames. The Server terminates consumer
// connections for the daemon; the Client is the consumer side, used by
// the CLI and by tests.
package transport

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/sysstats-project/sysstats-go/pkg/daemon"
	"github.com/sysstats-project/sysstats-go/pkg/log"
	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/wire"
)

// Backend is what the server needs from the daemon. It matches
// *daemon.Daemon.
type Backend interface {
	AllSensors() map[string]sensors.SensorInfo
	SensorInfos(paths []string) map[string]sensors.SensorInfo
	SensorData(paths []string) []sensors.SensorData
	Subscribe(consumerID string, paths []string, sender daemon.FrameSender)
	Unsubscribe(consumerID string, paths []string)
	RemoveConsumer(consumerID string)
}

// Server accepts consumer connections and bridges them to the daemon.
// Each connection is one consumer: it gets a generated consumer id, its
// requests are answered in order, and per-tick delta frames are pushed
// over the same connection. Disconnecting tears down all of the
// consumer's subscriptions.
type Server struct {
	backend Backend
	logger  log.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a server for the given backend.
func NewServer(backend Backend, logger log.Logger) *Server {
	return &Server{
		backend: backend,
		logger:  log.OrNoop(logger),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the server to addr ("host:port").
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	log.Infof(s.logger, "transport", "listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Close. Blocks.
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("transport: Serve before Listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// ListenAndServe binds to addr and serves until Close.
func (s *Server) ListenAndServe(addr string) error {
	if err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve()
}

// Close stops accepting, closes every consumer connection and waits
// for their handlers to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.listener
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	consumerID := uuid.NewString()
	framer := NewFramer(conn)
	sender := &frameSender{framer: framer}

	log.Infof(s.logger, "transport", "consumer %s connected from %s", consumerID, conn.RemoteAddr())

	defer func() {
		s.backend.RemoveConsumer(consumerID)
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		log.Infof(s.logger, "transport", "consumer %s disconnected", consumerID)
	}()

	for {
		payload, err := framer.ReadFrame()
		if err != nil {
			return
		}

		req, err := wire.DecodeRequest(payload)
		if err != nil {
			log.Warnf(s.logger, "transport", "consumer %s sent bad request: %v", consumerID, err)
			return
		}

		resp := s.dispatch(consumerID, req, sender)
		data, err := wire.EncodeServerMessage(&wire.ServerMessage{
			Type:     wire.MessageResponse,
			Response: resp,
		})
		if err != nil {
			log.Errorf(s.logger, "transport", err, "failed to encode response for %s", consumerID)
			return
		}
		if err := framer.WriteFrame(data); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(consumerID string, req *wire.Request, sender daemon.FrameSender) *wire.Response {
	resp := &wire.Response{Op: req.Op}
	switch req.Op {
	case wire.OpListSensors:
		resp.Sensors = s.backend.AllSensors()
	case wire.OpGetSensors:
		resp.Sensors = s.backend.SensorInfos(req.Paths)
	case wire.OpGetData:
		resp.Data = s.backend.SensorData(req.Paths)
	case wire.OpSubscribe:
		s.backend.Subscribe(consumerID, req.Paths, sender)
	case wire.OpUnsubscribe:
		s.backend.Unsubscribe(consumerID, req.Paths)
	}
	return resp
}

// frameSender pushes per-tick deltas over the consumer's connection.
// The FrameWriter's internal mutex serializes pushes against request
// responses.
type frameSender struct {
	framer *Framer
}

func (f *frameSender) SendFrame(frame *wire.Frame) error {
	data, err := wire.EncodeServerMessage(&wire.ServerMessage{
		Type:  wire.MessageFrame,
		Frame: frame,
	})
	if err != nil {
		return err
	}
	return f.framer.WriteFrame(data)
}
