package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/repository"
)

func newDoc(text string, embedding []float32, at time.Time) *model.Document {
	return &model.Document{
		ID:        model.NewDocumentID(model.SourceText, at),
		Text:      text,
		Embedding: embedding,
		Source:    model.SourceText,
		CreatedAt: at,
	}
}

func TestMemoryPutAndGet(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	doc := newDoc("breaking news from the wire", []float32{1, 0, 0}, time.Now())
	gt.NoError(t, repo.PutDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Text, doc.Text)
	gt.Equal(t, got.Source, model.SourceText)
}

func TestMemoryGetNotFound(t *testing.T) {
	repo := repository.NewMemory()

	_, err := repo.GetDocument(context.Background(), "missing")
	gt.Error(t, err)
}

func TestMemoryRejectsEmptyText(t *testing.T) {
	repo := repository.NewMemory()

	doc := newDoc("   ", []float32{1, 0, 0}, time.Now())
	gt.Error(t, repo.PutDocument(context.Background(), doc))
}

func TestMemorySearchSimilarOrdering(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Near, far, and exact matches relative to the query vector
	gt.NoError(t, repo.PutDocument(ctx, newDoc("far", []float32{0, 1, 0}, base)))
	gt.NoError(t, repo.PutDocument(ctx, newDoc("near", []float32{1, 0.2, 0}, base.Add(time.Second))))
	gt.NoError(t, repo.PutDocument(ctx, newDoc("exact", []float32{1, 0, 0}, base.Add(2*time.Second))))

	docs, err := repo.SearchSimilar(ctx, []float32{1, 0, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, docs).Length(2)
	gt.Equal(t, docs[0].Text, "exact")
	gt.Equal(t, docs[1].Text, "near")
}

func TestMemorySearchSimilarTiesKeepInsertionOrder(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	gt.NoError(t, repo.PutDocument(ctx, newDoc("first", []float32{1, 0}, base)))
	gt.NoError(t, repo.PutDocument(ctx, newDoc("second", []float32{1, 0}, base.Add(time.Second))))

	docs, err := repo.SearchSimilar(ctx, []float32{1, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, docs).Length(2)
	gt.Equal(t, docs[0].Text, "first")
	gt.Equal(t, docs[1].Text, "second")
}

func TestMemoryListDocuments(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, text := range []string{"a", "b", "c"} {
		gt.NoError(t, repo.PutDocument(ctx, newDoc(text, []float32{1}, base.Add(time.Duration(i)*time.Second))))
	}

	docs, err := repo.ListDocuments(ctx, 1, 10)
	gt.NoError(t, err)
	gt.A(t, docs).Length(2)
	gt.Equal(t, docs[0].Text, "b")
}
