package evaluator

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/utils/logging"
)

// Embedder maps text to a fixed-length vector for semantic comparison
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service scores candidate summaries against a reference along two axes:
// lexical overlap (ROUGE family) and embedding-based semantic similarity.
// Scoring never raises: any failure yields an all-zero ScoreCard and the
// candidate stays eligible for selection.
type Service struct {
	embedder Embedder
	langCode string
}

type Option func(*Service)

// WithLanguage sets the language code the semantic score is scoped to
func WithLanguage(code string) Option {
	return func(s *Service) {
		s.langCode = code
	}
}

func New(embedder Embedder, opts ...Option) *Service {
	s := &Service{
		embedder: embedder,
		langCode: "en",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// semanticF1 is the normalized cosine similarity of the candidate and
// reference embeddings, clamped to [0,1]. Zero on any failure or empty input.
func (s *Service) semanticF1(ctx context.Context, candidate, reference string) float64 {
	if strings.TrimSpace(candidate) == "" || strings.TrimSpace(reference) == "" {
		return 0
	}

	logger := logging.From(ctx)

	candVec, err := s.embedder.Embed(ctx, candidate)
	if err != nil {
		logger.Warn("failed to embed candidate for scoring", "lang", s.langCode, "error", err)
		return 0
	}

	refVec, err := s.embedder.Embed(ctx, reference)
	if err != nil {
		logger.Warn("failed to embed reference for scoring", "lang", s.langCode, "error", err)
		return 0
	}

	sim := cosine(candVec, refVec)
	if sim < 0 || math.IsNaN(sim) {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EvaluateAll computes a ScoreCard for every named candidate against the
// reference. Candidates with empty text, or candidates whose scoring
// dependencies fail, receive zero scores rather than errors.
func (s *Service) EvaluateAll(ctx context.Context, summaries map[string]string, reference string) map[string]model.ScoreCard {
	scores := make(map[string]model.ScoreCard, len(summaries))

	for name, text := range summaries {
		card := model.ScoreCard{ModelName: name}
		card.Rouge1, card.Rouge2, card.RougeL = scoreRouge(text, reference)
		card.SemanticF1 = s.semanticF1(ctx, text, reference)
		scores[name] = card
	}

	return scores
}

// SelectBest returns the candidate name with the highest metric sum. Ties are
// broken deterministically by ascending name. An empty input returns the
// empty string; the caller must treat that as "no candidates".
func (s *Service) SelectBest(scores map[string]model.ScoreCard) string {
	if len(scores) == 0 {
		return ""
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	bestTotal := scores[best].Total()
	for _, name := range names[1:] {
		if total := scores[name].Total(); total > bestTotal {
			best = name
			bestTotal = total
		}
	}

	return best
}
