package http

import (
	"net/http"

	"payoff/internal/auth"
	"payoff/internal/core"
)

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	owner, err := s.owner(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.projections.Analyze(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// strategyBody reads {"strategy": ...}. An empty body or strategy selects
// avalanche.
func strategyBody(w http.ResponseWriter, r *http.Request) (core.Strategy, error) {
	req := strategyRequest{}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			return "", err
		}
	}
	if req.Strategy == "" {
		return core.StrategyAvalanche, nil
	}
	return core.ParseStrategy(req.Strategy)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	owner, err := s.owner(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	strategy, err := strategyBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	proj, err := s.projections.Project(r.Context(), owner, strategy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	owner, err := s.owner(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.projections.Compare(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, p auth.Principal) {
	owner, err := s.owner(r, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	strategy, err := strategyBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := s.projections.RequestExport(r.Context(), owner, strategy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if ticket.Queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, ticket)
}
