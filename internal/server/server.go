package server

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/eternalApril/moonkv/internal/resp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Server accepts RESP connections and hands their commands to an Engine
type Server struct {
	engine          *Engine
	logger          *zap.Logger
	shutdownTimeout time.Duration

	conns conc.WaitGroup
	mu    sync.Mutex
	peers map[uuid.UUID]*Peer
}

// NewServer creates a server. shutdownTimeout bounds how long open connections may drain on exit
func NewServer(engine *Engine, logger *zap.Logger, shutdownTimeout time.Duration) *Server {
	return &Server{
		engine:          engine,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		peers:           make(map[uuid.UUID]*Peer),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then stops the engine and
// waits for the open connections. Connections still open after the shutdown timeout are closed
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		ln.Close() //nolint:errcheck
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				break
			}
			s.logger.Error("Accept error", zap.Error(err))
			continue
		}

		peer := NewPeer(conn)
		s.track(peer)
		s.conns.Go(func() {
			defer s.untrack(peer)
			s.handleConnection(peer)
		})
	}

	return s.shutdown()
}

func (s *Server) shutdown() error {
	s.logger.Info("Shutting down...")
	s.engine.Shutdown()

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.logger.Info("All connections closed gracefully")
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("Shutdown timed out, closing connections", zap.Duration("timeout", s.shutdownTimeout))
		err = s.closePeers()
		<-done
	}

	return err
}

func (s *Server) track(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[p.ID()] = p
}

func (s *Server) untrack(p *Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, p.ID())
}

// closePeers force closes every tracked connection and combines the failures
func (s *Server) closePeers() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for id, p := range s.peers {
		if cerr := p.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, errors.Wrapf(cerr, "close connection %s", id))
		}
	}
	return err
}

// handleConnection handles a connection for a single user
func (s *Server) handleConnection(peer *Peer) {
	log := s.logger.With(zap.Stringer("conn", peer.ID()))

	if log.Core().Enabled(zap.DebugLevel) {
		log.Debug("client connected", zap.String("addr", peer.Addr()))
	}

	defer func() {
		peer.Close() //nolint:errcheck
		// log connection close
		if log.Core().Enabled(zap.DebugLevel) {
			log.Debug("client disconnected", zap.String("addr", peer.Addr()))
		}
	}()

	for {
		cmdValue, err := peer.ReadCommand()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Warn("read command failed", zap.Error(err))
				peer.Send(resp.MakeError("ERR Protocol error: " + err.Error())) //nolint:errcheck
				peer.Flush()                                                    //nolint:errcheck
			}
			return
		}

		if cmdValue.Type != resp.TypeArray {
			log.Error("invalid request type")
			cmdValue = resp.MakeArray(nil)
			if err = peer.Send(resp.MakeError("ERR Protocol error: expected array of bulk strings")); err != nil {
				return
			}
		}

		// an empty array gets no reply
		if len(cmdValue.Array) > 0 {
			commandName := string(cmdValue.Array[0].String)
			args := cmdValue.Array[1:]

			reply, closeConn := s.engine.dispatch(commandName, args)
			if err = peer.Send(reply); err != nil {
				log.Error("error writing response:", zap.Error(err))
				return
			}
			if closeConn {
				peer.Flush() //nolint:errcheck
				return
			}
		}

		if peer.InputBuffered() == 0 {
			if err := peer.Flush(); err != nil {
				return
			}
		}
	}
}
