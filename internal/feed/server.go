package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/scantag/internal/discovery"
	"github.com/muurk/scantag/internal/logging"
	"github.com/muurk/scantag/internal/version"
)

// Config holds the feed server configuration
type Config struct {
	Addr      string // host:port to listen on; port 0 picks a free one
	Advertise bool   // Announce the feed over mDNS
	Instance  string // mDNS instance name (defaults to "scantag on <hostname>")
}

// Server serves the hub on /ws and a health document on /healthz.
type Server struct {
	config   Config
	hub      *Hub
	http     *http.Server
	listener net.Listener
	mdns     *zeroconf.Server
}

// NewServer creates a feed server. Nothing listens until Start.
func NewServer(config Config) *Server {
	s := &Server{
		config: config,
		hub:    NewHub(),
	}

	mux := http.NewServeMux()
	mux.Handle(discovery.DefaultPath, s.hub)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.http = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub returns the server's hub for publishing.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Publish forwards to the hub.
func (s *Server) Publish(ev Event) {
	s.hub.Publish(ev)
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener

	go s.hub.Run()
	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Feed server stopped", zap.Error(err))
		}
	}()

	logging.Info("Feed listening", zap.String("addr", s.Addr()))

	if s.config.Advertise {
		if err := s.advertise(); err != nil {
			s.Shutdown(context.Background())
			return err
		}
	}
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// URL returns the websocket URL clients should dial.
func (s *Server) URL() string {
	return "ws://" + s.Addr() + discovery.DefaultPath
}

func (s *Server) advertise() error {
	tcpAddr, ok := s.listener.Addr().(*net.TCPAddr)
	if !ok {
		return fmt.Errorf("cannot advertise non-TCP listener %s", s.listener.Addr())
	}

	instance := s.config.Instance
	if instance == "" {
		host, _ := os.Hostname()
		if host == "" {
			host = "unknown"
		}
		instance = "scantag on " + host
	}

	txt := []string{
		"path=" + discovery.DefaultPath,
		"version=" + version.Version,
	}
	server, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, tcpAddr.Port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to advertise feed over mDNS: %w", err)
	}
	s.mdns = server

	logging.Info("Feed advertised",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", tcpAddr.Port),
	)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": s.hub.Clients(),
		"version": version.Version,
	})
}

// Shutdown withdraws the mDNS record, disconnects clients and stops serving.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	s.hub.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop feed server: %w", err)
	}
	logging.Info("Feed stopped")
	return nil
}
