package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/derktes/rc5-remote/rc5"
	"github.com/derktes/rc5-remote/server/config"
	"github.com/sirupsen/logrus"
)

const storeTimeout = 2 * time.Second

// Server accepts RC-5 requests over TCP one connection at a time and serves
// the status API alongside.
type Server struct {
	cfg        *config.Config
	log        *logrus.Logger
	dispatcher *rc5.Dispatcher
	emitter    emitter
	store      recordStore
	notifier   *recordNotifier

	toggle atomic.Uint32
	total  atomic.Uint64
	passed atomic.Uint64
	failed atomic.Uint64
}

// New opens the emitter and history store described by cfg.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Server, error) {
	timing, err := cfg.Timing.Timing()
	if err != nil {
		return nil, err
	}
	em, err := openEmitter(cfg.Emitter, log.WithField("component", "emitter"))
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		em.Close()
		return nil, err
	}
	return newServer(cfg, log, timing, em, store), nil
}

func newServer(cfg *config.Config, log *logrus.Logger, timing rc5.Timing, em emitter, store recordStore) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		dispatcher: rc5.NewDispatcher(em, timing, cfg.Parser.MaxTokenLength),
		emitter:    em,
		store:      store,
		notifier:   &recordNotifier{},
	}
}

// Close releases the emitter and the history store.
func (s *Server) Close() error {
	return errors.Join(s.emitter.Close(), s.store.close())
}

// Serve accepts connections on ln until ctx is done. Requests are handled
// strictly one after another so the toggle bit follows arrival order.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.log.WithError(err).Warn("Accept timed out")
				continue
			}
			return err
		}
		s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	log := s.log.WithField("remote", remote)
	if secs := s.cfg.TCPServer.ReadTimeoutSeconds; secs > 0 {
		conn.SetReadDeadline(time.Now().Add(time.Duration(secs) * time.Second))
	}

	res, err := s.dispatcher.Serve(bufio.NewReader(conn))
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Debug("Connection closed before end of request")
		} else {
			log.WithError(err).Warn("Reading request")
		}
		return
	}
	s.record(remote, res)
	if err := writeResponse(conn, res); err != nil {
		log.WithError(err).Warn("Writing response")
	}
}

func (s *Server) record(remote string, res rc5.Result) {
	toggle := s.dispatcher.State().Toggle
	s.toggle.Store(uint32(toggle))
	s.total.Add(1)
	if res.Pass {
		s.passed.Add(1)
	} else {
		s.failed.Add(1)
	}

	rec := newDispatchRecord(remote, res, toggle)
	entry := s.log.WithFields(logrus.Fields{
		"remote":  remote,
		"device":  rec.Device,
		"command": rec.Command,
		"outcome": rec.Outcome,
		"toggle":  toggle,
	})
	if rec.Frame != "" {
		entry = entry.WithField("frame", rec.Frame)
	}
	if res.Err != nil {
		entry.WithError(res.Err).Warn("Dispatch failed")
	} else {
		entry.Info("Dispatched")
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.insert(ctx, rec); err != nil {
		s.log.WithError(err).Error("Storing dispatch record")
	}
	if dropped := s.notifier.publish(rec); dropped > 0 {
		s.log.WithField("dropped", dropped).Debug("Slow stream subscribers skipped a record")
	}
}

func (s *Server) status() statusResponse {
	return statusResponse{
		Toggle:   uint8(s.toggle.Load()),
		Total:    s.total.Load(),
		Passed:   s.passed.Load(),
		Failed:   s.failed.Load(),
		Emitter:  s.emitter.kind(),
		History:  s.store.kind(),
		Capacity: s.cfg.History.Capacity,
	}
}

// Run listens on the configured addresses and blocks until ctx is done or a
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.TCPAddress())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.TCPAddress(), err)
	}
	s.log.Infof("Accepting RC-5 requests on %s", ln.Addr())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 2)

	var api *http.Server
	if s.cfg.HTTPAPIServer.Enabled {
		api = &http.Server{Addr: s.cfg.HTTPAddress(), Handler: s.routes()}
		api.RegisterOnShutdown(func() {
			s.log.Info("Shutting down API server")
		})
		go func() {
			s.log.Infof("API server started on %s", api.Addr)
			if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("api server: %w", err)
				cancel()
				return
			}
			errc <- nil
		}()
	}

	err = s.Serve(ctx, ln)
	cancel()
	if api != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if serr := api.Shutdown(shutdownCtx); serr != nil {
			s.log.WithError(serr).Warn("API shutdown")
		}
		if aerr := <-errc; aerr != nil && err == nil {
			err = aerr
		}
	}
	return err
}

// Start runs the service until interrupted.
func Start(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("Closing server")
		}
	}()
	log.WithFields(logrus.Fields{
		"emitter": s.emitter.kind(),
		"history": s.store.kind(),
	}).Info("Server started")
	return s.Run(ctx)
}
