package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hearthbox/internal/pipeline"
	"hearthbox/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

// Service is the JSON surface over the intake pipeline. Upload transport and
// session handling live with the host application; everything here assumes
// the file already sits in the bucket.
type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	pipeline *pipeline.Pipeline

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	p *pipeline.Pipeline,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		pipeline: p,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/intake/items", s.handleListItems, http.MethodGet)
	r.HandleFunc("/intake/items", s.handleRegisterItem, http.MethodPost)
	r.HandleFunc("/intake/items/:itemID", s.handlePurgeItem, http.MethodDelete)
	r.HandleFunc("/intake/items/:itemID/analyze", s.handleAnalyzeItem, http.MethodPost)
	r.HandleFunc("/intake/items/:itemID/accept", s.handleAcceptItem, http.MethodPost)
	r.HandleFunc("/intake/items/:itemID/dismiss", s.handleDismissItem, http.MethodPost)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
