package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/resume-screener/internal/store"
)

// CandidateListResponse wraps a page of stored applicants.
type CandidateListResponse struct {
	Candidates []store.Applicant `json:"candidates"`
	Count      int               `json:"count"`
}

// handleListCandidates lists stored applicants. With q it searches name, email
// and resume text; min_score, order=score and limit refine the result.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	query := r.URL.Query()
	limit, err := intParam(query.Get("limit"))
	if err != nil || limit < 0 {
		s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
		return
	}
	minScore := 0.0
	if v := query.Get("min_score"); v != "" {
		if minScore, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, &ErrValidation{Field: "min_score", Message: "must be a number"})
			return
		}
	}

	var applicants []store.Applicant
	if q := query.Get("q"); q != "" {
		applicants, err = s.store.Search(r.Context(), q, minScore)
		if err == nil && limit > 0 && len(applicants) > limit {
			applicants = applicants[:limit]
		}
	} else {
		applicants, err = s.store.List(r.Context(), store.ListOptions{
			OrderByScore: query.Get("order") == "score",
			Limit:        limit,
		})
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	if applicants == nil {
		applicants = []store.Applicant{}
	}
	s.jsonResponse(w, http.StatusOK, CandidateListResponse{Candidates: applicants, Count: len(applicants)})
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid candidate ID")
		return
	}

	applicant, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if applicant == nil {
		s.errorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, applicant)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid candidate ID")
		return
	}

	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !deleted {
		s.errorResponse(w, http.StatusNotFound, "candidate not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}
	stats, err := s.store.Statistics(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
