package server

import (
	"net/http"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

// enableTLS configures srv for ACME certificates on :443 and returns the
// :80 server answering HTTP-01 challenges and redirecting everything else
// to HTTPS.
func (s *Server) enableTLS(srv *http.Server) *http.Server {
	tlsCfg := s.cfg.Server.TLS
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(tlsCfg.AutocertDomains...),
		Cache:      autocert.DirCache(tlsCfg.CacheDir),
		Email:      tlsCfg.Email,
	}
	srv.Addr = ":443"
	srv.TLSConfig = m.TLSConfig()

	return &http.Server{
		Addr:              ":80",
		Handler:           m.HTTPHandler(nil),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}
}
