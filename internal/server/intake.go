package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"hearthbox/internal/pipeline"

	"github.com/alexedwards/flow"
)

func (s *Service) handleRegisterItem(w http.ResponseWriter, r *http.Request) {
	var in pipeline.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := s.pipeline.Register(r.Context(), in)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{"item": item})
}

type analyzeRequest struct {
	Recovery *pipeline.RegisterInput `json:"recovery,omitempty"`
}

func (s *Service) handleAnalyzeItem(w http.ResponseWriter, r *http.Request) {
	itemID := flow.Param(r.Context(), "itemID")

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Extraction hits storage and possibly an OCR service; bound it.
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.config.AnalyzeTimeoutSec)*time.Second)
	defer cancel()

	result, err := s.pipeline.Analyze(ctx, itemID, req.Recovery)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

type acceptRequest struct {
	MemberID string            `json:"memberId"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func (s *Service) handleAcceptItem(w http.ResponseWriter, r *http.Request) {
	itemID := flow.Param(r.Context(), "itemID")

	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := s.pipeline.Accept(r.Context(), itemID, req.MemberID, req.Fields)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"assignment": assignment})
}

func (s *Service) handleDismissItem(w http.ResponseWriter, r *http.Request) {
	itemID := flow.Param(r.Context(), "itemID")

	item, err := s.pipeline.Dismiss(r.Context(), itemID)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (s *Service) handlePurgeItem(w http.ResponseWriter, r *http.Request) {
	itemID := flow.Param(r.Context(), "itemID")

	if err := s.pipeline.Purge(r.Context(), itemID); err != nil {
		s.respondPipelineError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleListItems(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("householdId")

	views, err := s.pipeline.List(r.Context(), householdID)
	if err != nil {
		s.respondPipelineError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"items": views})
}
