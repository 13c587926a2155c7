package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"unicode/utf8"

	"github.com/jonathan/resume-screener/internal/types"
	"golang.org/x/sync/errgroup"
)

// CategoryPredictor assigns a job category to a document's text.
type CategoryPredictor interface {
	PredictCategory(text string) (category string, confidence float64, err error)
}

// Options controls a ranking run.
type Options struct {
	TopN      int               // Return only the first TopN candidates; 0 returns all
	Workers   int               // Concurrent scoring workers; 0 uses GOMAXPROCS
	Predictor CategoryPredictor // Optional; documents without a category stay Unknown when nil
}

// Ranker orders documents by similarity to a job description.
type Ranker struct {
	scorer *Scorer
	logger *slog.Logger
}

// NewRanker creates a Ranker. A nil logger uses slog.Default().
func NewRanker(scorer *Scorer, logger *slog.Logger) *Ranker {
	if scorer == nil {
		scorer = NewScorer(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{scorer: scorer, logger: logger}
}

// Scorer returns the scorer used by the ranker.
func (r *Ranker) Scorer() *Scorer {
	return r.scorer
}

// Rank scores every document against jdText in parallel, then sorts by score
// descending. Equal scores keep their input order. Ranks are assigned over the
// full ordering before TopN truncation, so a truncated result keeps the ranks
// it would have had in the full list.
//
// Malformed documents are left out and listed in Excluded; they never fail the batch.
func (r *Ranker) Rank(ctx context.Context, docs []types.Document, jdText string, opts Options) (*types.RankedCandidates, error) {
	query := r.scorer.PrepareQuery(jdText)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Each worker writes only its own slot, so no locking is needed.
	slots := make([]*types.RankedCandidate, len(docs))
	reasons := make([]string, len(docs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range docs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			doc := docs[i]
			if reason := validateDocument(doc); reason != "" {
				reasons[i] = reason
				return nil
			}
			slots[i] = r.scoreDocument(doc, query, opts.Predictor)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to rank documents: %w", err)
	}

	result := &types.RankedCandidates{Ranked: make([]types.RankedCandidate, 0, len(docs))}
	for i, slot := range slots {
		if slot == nil {
			r.logger.Warn("excluding document from ranking", "index", i, "id", docs[i].ID, "reason", reasons[i])
			result.Excluded = append(result.Excluded, types.ExcludedDocument{
				Index:  i,
				ID:     docs[i].ID,
				Reason: reasons[i],
			})
			continue
		}
		result.Ranked = append(result.Ranked, *slot)
	}

	// Sort by score (descending); stable so ties keep input order
	sort.SliceStable(result.Ranked, func(i, j int) bool {
		return result.Ranked[i].Score > result.Ranked[j].Score
	})
	for i := range result.Ranked {
		result.Ranked[i].Rank = i + 1
	}

	result.Total = len(result.Ranked)
	if opts.TopN > 0 && opts.TopN < len(result.Ranked) {
		result.Ranked = result.Ranked[:opts.TopN]
	}

	r.logger.Debug("ranked documents",
		"documents", len(docs),
		"ranked", result.Total,
		"excluded", len(result.Excluded),
		"returned", len(result.Ranked),
		"workers", workers,
	)

	return result, nil
}

func (r *Ranker) scoreDocument(doc types.Document, query *Query, predictor CategoryPredictor) *types.RankedCandidate {
	sim := r.scorer.ScoreAgainst(doc.Text, query)

	category, confidence := doc.Category, 0.0
	if category == "" {
		category = types.UnknownCategory
		if predictor != nil {
			predicted, conf, err := predictor.PredictCategory(doc.Text)
			if err != nil {
				r.logger.Debug("category prediction unavailable", "id", doc.ID, "error", err)
			} else {
				category, confidence = predicted, conf
			}
		}
	}

	return &types.RankedCandidate{
		ID:                 doc.ID,
		Score:              sim.Score,
		SkillGaps:          sim.SkillGaps,
		MissingSkillsCount: sim.MissingSkillsCount,
		Category:           category,
		CategoryConfidence: confidence,
		KeywordSimilarity:  sim.KeywordSimilarity,
		SkillScore:         sim.SkillScore,
		MatchedSkills:      sim.MatchedSkills,
		Band:               types.ScoreBand(sim.Score),
	}
}

// validateDocument returns why doc cannot be ranked, or "" if it can.
func validateDocument(doc types.Document) string {
	if doc.ID == "" {
		return "missing id"
	}
	if !utf8.ValidString(doc.Text) {
		return "text is not valid UTF-8"
	}
	return ""
}
