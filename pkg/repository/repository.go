package repository

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// DistanceMeasure is a fixed system parameter. Every implementation ranks
// neighbors by cosine similarity; it is never re-derived per query.
const DistanceMeasure = "cosine"

var ErrDocumentNotFound = goerr.New("document not found")

// Repository defines the interface for document persistence and vector search
type Repository interface {
	// PutDocument saves a document
	PutDocument(ctx context.Context, doc *model.Document) error

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error)

	// ListDocuments retrieves documents in insertion order
	ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error)

	// SearchSimilar returns up to limit documents ordered by descending cosine
	// similarity to the given embedding. Ties are broken by insertion order.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Document, error)

	// Close releases underlying resources
	Close() error
}

// cosineSimilarity between two vectors; zero for mismatched or zero vectors
func cosineSimilarity(a, b []float32) float64 {
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
