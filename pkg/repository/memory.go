package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// Memory is an in-memory Repository for tests and ephemeral runs. It mirrors
// the ordering semantics of the persistent implementations.
type Memory struct {
	mu   sync.RWMutex
	docs []*model.Document
}

func NewMemory() *Memory {
	return &Memory{}
}

func (r *Memory) PutDocument(ctx context.Context, doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.docs {
		if d.ID == doc.ID {
			r.docs[i] = doc
			return nil
		}
	}
	r.docs = append(r.docs, doc)
	return nil
}

func (r *Memory) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.docs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, goerr.Wrap(ErrDocumentNotFound, "no such document", goerr.V("id", id))
}

func (r *Memory) ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.docs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.docs) {
		end = len(r.docs)
	}

	docs := make([]*model.Document, end-offset)
	copy(docs, r.docs[offset:end])
	return docs, nil
}

func (r *Memory) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		doc   *model.Document
		score float64
	}

	candidates := make([]scored, 0, len(r.docs))
	for _, d := range r.docs {
		candidates = append(candidates, scored{
			doc:   d,
			score: cosineSimilarity(embedding, d.Embedding),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	docs := make([]*model.Document, 0, limit)
	for i := 0; i < limit; i++ {
		docs = append(docs, candidates[i].doc)
	}

	return docs, nil
}

func (r *Memory) Close() error {
	return nil
}
