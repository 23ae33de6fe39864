package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"lanshare/internal/store"
)

// RunState is the lifecycle state of one Server instance.
type RunState int

const (
	StateStopped RunState = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("runstate(%d)", int(s))
}

// EventKind classifies lifecycle notifications.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventError
	EventDataUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventError:
		return "error"
	case EventDataUpdated:
		return "data_updated"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one asynchronous notification delivered to the embedding
// application. Err is set for EventError only.
type Event struct {
	Kind EventKind
	Err  error
}

// Config is read once at construction and immutable for the lifetime of
// one Server instance. The embedding application must stop the server
// before changing the upload directory.
type Config struct {
	Host      string // bind address, empty for all interfaces
	Port      int    // 1-65535; 0 picks an ephemeral port
	UploadDir string // destination for remote uploads
	Store     *store.Store
}

var (
	ErrAlreadyRunning = errors.New("server: already running")
	ErrFailed         = errors.New("server: instance failed, construct a new one")
)

// Server owns the listening socket and serves the sharing protocol on a
// background goroutine. The embedding UI drives it through Start/Stop and
// consumes lifecycle notifications from Events.
type Server struct {
	host      string
	port      int
	uploadDir string

	store   *store.Store
	metrics *Metrics
	handler http.Handler
	events  chan Event

	mu         sync.Mutex
	state      RunState
	httpServer *http.Server
	addr       string
	done       chan struct{}
}

// New validates the configuration and builds a stopped server bound to the
// given store. It also claims the store's notify hook, so catalog mutations
// from any side surface as EventDataUpdated.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: nil store")
	}
	if cfg.UploadDir == "" {
		return nil, errors.New("server: empty upload directory")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("server: port %d out of range", cfg.Port)
	}

	s := &Server{
		host:      cfg.Host,
		port:      cfg.Port,
		uploadDir: cfg.UploadDir,
		store:     cfg.Store,
		metrics:   NewMetrics(),
		events:    make(chan Event, 64),
		state:     StateStopped,
	}

	var handler http.Handler = s.routes()
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	s.handler = handler

	cfg.Store.SetNotify(func() { s.emit(Event{Kind: EventDataUpdated}) })
	return s, nil
}

// Events returns the notification channel. Started, Stopped and Error are
// emitted once per transition; DataUpdated fires at least once per catalog
// mutation and coalesces when the consumer lags.
func (s *Server) Events() <-chan Event {
	return s.events
}

// State reports the current lifecycle state.
func (s *Server) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the bound listen address, or "" when not running. Useful
// when Port 0 was configured.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Metrics exposes the request counters for the embedding UI.
func (s *Server) Metrics() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// Start binds the configured address and begins serving on a background
// goroutine. It returns once the socket is bound; the caller's thread is
// never parked behind the accept loop. A bind failure moves the instance
// to StateFailed, which is terminal.
func (s *Server) Start() error {
	s.mu.Lock()
	switch s.state {
	case StateFailed:
		s.mu.Unlock()
		return ErrFailed
	case StateStopped:
	default:
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = StateStarting
	addr := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	s.mu.Unlock()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		s.emit(Event{Kind: EventError, Err: err})
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.done = done
	s.state = StateRunning
	s.mu.Unlock()

	go func() {
		defer close(done)
		serveErr := srv.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			// The accept loop died out from under us.
			s.mu.Lock()
			s.state = StateFailed
			s.mu.Unlock()
			s.emit(Event{Kind: EventError, Err: serveErr})
		}
	}()

	log.Printf("service=lanshare msg=%q addr=%s", "listening", s.Addr())
	s.emit(Event{Kind: EventStarted})
	return nil
}

// Stop drains in-flight requests and waits for the serve goroutine to
// exit. It is idempotent: stopping a stopped or stopping server is a
// no-op, and exactly one EventStopped is emitted per Running->Stopped
// transition. After Stop returns, Start may be called again.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	srv := s.httpServer
	done := s.done
	s.mu.Unlock()

	err := srv.Shutdown(ctx)
	<-done

	s.mu.Lock()
	if s.state == StateStopping {
		s.state = StateStopped
		s.addr = ""
		s.httpServer = nil
	}
	s.mu.Unlock()

	log.Printf("service=lanshare msg=%q", "stopped")
	s.emit(Event{Kind: EventStopped})
	return err
}

// emit delivers an event without ever blocking a connection handler. The
// channel is generously buffered; if the consumer has fallen this far
// behind, the update joins the backlog it has yet to read.
func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		log.Printf("service=lanshare msg=%q kind=%s", "event_dropped", ev.Kind)
	}
}
