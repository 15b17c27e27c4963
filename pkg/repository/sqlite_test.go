package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/repository"
)

func setupSQLite(t *testing.T) *repository.SQLite {
	t.Helper()

	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "memory.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})

	return repo
}

func TestSQLitePutAndGet(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	doc := &model.Document{
		ID:             model.NewDocumentID(model.SourceURL, time.Now()),
		Text:           "reuters reported a breaking story",
		Embedding:      []float32{0.1, 0.2, 0.3},
		Source:         model.SourceURL,
		CreatedAt:      time.Now(),
		SummaryPreview: "a breaking story",
	}
	gt.NoError(t, repo.PutDocument(ctx, doc))

	got, err := repo.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Text, doc.Text)
	gt.Equal(t, got.Embedding, doc.Embedding)
	gt.Equal(t, got.SummaryPreview, doc.SummaryPreview)
}

func TestSQLiteGetNotFound(t *testing.T) {
	repo := setupSQLite(t)

	_, err := repo.GetDocument(context.Background(), "no-such-id")
	gt.Error(t, err)
}

func TestSQLiteSearchSimilar(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	put := func(text string, emb []float32, at time.Time) {
		gt.NoError(t, repo.PutDocument(ctx, &model.Document{
			ID:        model.NewDocumentID(model.SourceText, at),
			Text:      text,
			Embedding: emb,
			Source:    model.SourceText,
			CreatedAt: at,
		}))
	}

	put("orthogonal", []float32{0, 1, 0}, base)
	put("close", []float32{0.9, 0.1, 0}, base.Add(time.Second))
	put("exact", []float32{1, 0, 0}, base.Add(2*time.Second))

	docs, err := repo.SearchSimilar(ctx, []float32{1, 0, 0}, 2)
	gt.NoError(t, err)
	gt.A(t, docs).Length(2)
	gt.Equal(t, docs[0].Text, "exact")
	gt.Equal(t, docs[1].Text, "close")
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.db")
	ctx := context.Background()

	repo, err := repository.NewSQLite(path)
	gt.NoError(t, err)

	doc := &model.Document{
		ID:        model.NewDocumentID(model.SourceText, time.Now()),
		Text:      "persisted across restarts",
		Embedding: []float32{1, 2, 3},
		Source:    model.SourceText,
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutDocument(ctx, doc))
	gt.NoError(t, repo.Close())

	reopened, err := repository.NewSQLite(path)
	gt.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetDocument(ctx, doc.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Text, doc.Text)
}
