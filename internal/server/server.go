// Package server runs the HTTP listener shared by the Caseflow daemons.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server wraps an http.Server with optional TLS and graceful shutdown.
type Server struct {
	srv  *http.Server
	cert *tls.Certificate
	log  zerolog.Logger
}

// New builds a server for the given handler on the given port.
func New(handler http.Handler, port string, log zerolog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// SetCertificate enables TLS with the given certificate.
func (s *Server) SetCertificate(cert tls.Certificate) {
	s.cert = &cert
}

// Listen serves until Shutdown is called. It returns nil on a clean
// shutdown.
func (s *Server) Listen() error {
	var err error
	if s.cert != nil {
		s.srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{*s.cert}}
		s.log.Info().Str("addr", s.srv.Addr).Msg("Listening with TLS")
		err = s.srv.ListenAndServeTLS("", "")
	} else {
		s.log.Info().Str("addr", s.srv.Addr).Msg("Listening")
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
