package memory

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/repository"
	"github.com/m-mizutani/paperboy/pkg/utils/logging"
)

// Embedder maps text to a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is the persistent vector memory of previously seen articles. All
// operations fail soft: storage or embedding errors are logged and degrade to
// a false/empty result so the pipeline proceeds without context.
type Service struct {
	repo     repository.Repository
	embedder Embedder
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the timestamp source (document IDs are time-derived)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(repo repository.Repository, embedder Embedder, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		embedder: embedder,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add stores a new document unless the text is empty or an exact duplicate
// (after trimming) of its nearest neighbor. Returns true only when a document
// was persisted.
//
// The duplicate check is exact-string equality on purpose: a paraphrased
// article is not a duplicate and should grow the memory. Two concurrent Add
// calls with the same text can both pass the check and both insert; that race
// is tolerated, matching the single-writer usage pattern.
func (s *Service) Add(ctx context.Context, text string, source model.SourceType, summaryPreview string) bool {
	logger := logging.From(ctx)

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if nearest := s.Search(ctx, text, 1); len(nearest) > 0 {
		if strings.TrimSpace(nearest[0]) == trimmed {
			logger.Info("duplicate found, skipping memory addition", "source", source)
			return false
		}
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Error("failed to embed document", "error", err)
		return false
	}

	now := s.now()
	doc := &model.Document{
		ID:             model.NewDocumentID(source, now),
		Text:           text,
		Embedding:      embedding,
		Source:         source,
		CreatedAt:      now,
		SummaryPreview: summaryPreview,
	}

	if err := s.repo.PutDocument(ctx, doc); err != nil {
		logger.Error("failed to put document", "error", err, "id", doc.ID)
		return false
	}

	logger.Info("document added to memory", "id", doc.ID, "source", source)
	return true
}

// Search returns the texts of the k nearest documents, ordered by descending
// similarity. An empty query or any underlying failure yields an empty result.
func (s *Service) Search(ctx context.Context, query string, k int) []string {
	logger := logging.From(ctx)

	if strings.TrimSpace(query) == "" {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", "error", err)
		return nil
	}

	docs, err := s.repo.SearchSimilar(ctx, embedding, k)
	if err != nil {
		logger.Error("failed to search memory", "error", err)
		return nil
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.Text)
	}
	return texts
}
