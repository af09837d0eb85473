package httpapi

import (
	"net/http"
	"time"

	"github.com/danngalann/astroweather/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler is the full request pipeline: logging, static files, then mux.
func NewHandler(cfg config.Config, mux *http.ServeMux) http.Handler {
	return requestLogger(withStatic(cfg.StaticDir, mux))
}
