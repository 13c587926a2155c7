package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/resume-screener/internal/classifier"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/skills"
	"github.com/jonathan/resume-screener/internal/store"
	"github.com/jonathan/resume-screener/internal/types"
)

// RankResponse is the ranking plus the store ids of saved candidates.
type RankResponse struct {
	*types.RankedCandidates
	SavedIDs []int64 `json:"saved_ids,omitempty"`
}

// SkillsResponse lists the taxonomy skills found in a text.
type SkillsResponse struct {
	Skills     types.SkillSet `json:"skills"`
	Categories []string       `json:"categories"`
	Count      int            `json:"count"`
}

// ClassifyResponse is a prediction tagged with the model that produced it.
type ClassifyResponse struct {
	classifier.Prediction
	BundleID string `json:"bundle_id"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[RankRequest](w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Save && s.store == nil {
		s.writeError(w, ErrStoreUnavailable)
		return
	}

	jd := req.JobDescription
	if req.JobURL != "" {
		jd, _, err = ingestion.IngestFromURL(r.Context(), req.JobURL, ingestion.URLOptions{
			Fetcher: s.fetcher,
			Render:  s.render,
			Logger:  s.logger,
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
	}

	docs := make([]types.Document, len(req.Resumes))
	for i, in := range req.Resumes {
		docs[i] = types.Document{ID: in.ID, Text: in.Text, Category: in.Category}
	}

	topN := s.topN
	if req.TopN != nil {
		topN = *req.TopN
	}
	result, err := s.ranker.Rank(r.Context(), docs, jd, ranking.Options{
		TopN:      topN,
		Workers:   s.workers,
		Predictor: s.models,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := RankResponse{RankedCandidates: result}
	if req.Save {
		applicants := applicantsFromRanking(result, req.Resumes, s.ranker.Scorer().Taxonomy())
		if resp.SavedIDs, err = s.store.SaveCandidates(r.Context(), applicants); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// applicantsFromRanking pairs each returned candidate with its submitted
// resume. Duplicate ids resolve to the first submission.
func applicantsFromRanking(result *types.RankedCandidates, inputs []ResumeInput, taxonomy *skills.Taxonomy) []store.Applicant {
	byID := make(map[string]ResumeInput, len(inputs))
	for _, in := range inputs {
		if _, ok := byID[in.ID]; !ok {
			byID[in.ID] = in
		}
	}

	applicants := make([]store.Applicant, 0, len(result.Ranked))
	for _, c := range result.Ranked {
		in := byID[c.ID]
		a := store.FromRanked(c, in.Text, taxonomy)
		contact := ingestion.ExtractContact(in.Text, c.ID)
		a.Name = firstNonEmpty(in.Name, contact.Name)
		a.Email = firstNonEmpty(in.Email, contact.Email)
		a.Phone = firstNonEmpty(in.Phone, contact.Phone)
		applicants = append(applicants, a)
	}
	return applicants
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[SkillsRequest](w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	taxonomy := s.ranker.Scorer().Taxonomy()
	set := taxonomy.ExtractSkills(req.Text)
	s.jsonResponse(w, http.StatusOK, SkillsResponse{
		Skills:     set,
		Categories: taxonomy.OrderedCategories(set),
		Count:      set.Count(),
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest[ClassifyRequest](w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	model := s.models.Model()
	if model == nil {
		s.writeError(w, classifier.ErrModelUnavailable)
		return
	}
	pred, err := model.Predict(req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ClassifyResponse{Prediction: pred, BundleID: model.BundleID().String()})
}

// ModelInfo describes the active classifier bundle.
type ModelInfo struct {
	BundleID    string   `json:"bundle_id"`
	State       string   `json:"state"`
	CreatedAt   string   `json:"created_at"`
	Classes     []string `json:"classes"`
	NumFeatures int      `json:"num_features"`
}

func modelInfo(m *classifier.Model) ModelInfo {
	return ModelInfo{
		BundleID:    m.BundleID().String(),
		State:       m.State().String(),
		CreatedAt:   m.CreatedAt().UTC().Format(time.RFC3339),
		Classes:     m.Classes(),
		NumFeatures: m.NumFeatures(),
	}
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	model := s.models.Model()
	if model == nil {
		s.writeError(w, classifier.ErrModelUnavailable)
		return
	}
	s.jsonResponse(w, http.StatusOK, modelInfo(model))
}

// handleModelReload loads the bundle from the model directory and swaps it
// in. On failure the current model keeps serving.
func (s *Server) handleModelReload(w http.ResponseWriter, _ *http.Request) {
	if s.modelDir == "" {
		s.errorResponse(w, http.StatusServiceUnavailable, "model directory is not configured")
		return
	}

	model, err := classifier.Load(s.modelDir)
	if err != nil {
		s.logger.Warn("model reload failed", slog.String("dir", s.modelDir), slog.Any("error", err))
		s.writeError(w, err)
		return
	}
	previous := s.models.Swap(model)

	attrs := []any{slog.String("bundle_id", model.BundleID().String())}
	if previous != nil {
		attrs = append(attrs, slog.String("previous", previous.BundleID().String()))
	}
	s.logger.Info("model reloaded", attrs...)

	s.jsonResponse(w, http.StatusOK, modelInfo(model))
}
