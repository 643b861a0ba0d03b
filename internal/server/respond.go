package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"hearthbox/pkg/types"
)

func (s *Service) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondPipelineError maps pipeline sentinels onto HTTP statuses.
func (s *Service) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrItemNotFound),
		errors.Is(err, types.ErrMemberNotFound),
		errors.Is(err, types.ErrFileNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrItemTerminal),
		errors.Is(err, types.ErrItemActive),
		errors.Is(err, types.ErrAnalysisInProgress),
		errors.Is(err, types.ErrRevisionConflict):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.WithError(err).Error("intake operation failed")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
