package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const documentCollection = "news_documents"

// Firestore implements Repository using Cloud Firestore with native vector
// search. Durability and restart safety are delegated to the service.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

func (r *Firestore) PutDocument(ctx context.Context, doc *model.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if _, err := r.client.Collection(documentCollection).Doc(string(doc.ID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put document", goerr.V("id", doc.ID))
	}

	return nil
}

func (r *Firestore) GetDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	snap, err := r.client.Collection(documentCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrDocumentNotFound, "no such document", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get document", goerr.V("id", id))
	}

	var doc model.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", id))
	}

	return &doc, nil
}

func (r *Firestore) ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error) {
	query := r.client.Collection(documentCollection).
		OrderBy("CreatedAt", firestore.Asc).
		Offset(offset).
		Limit(limit)

	var docs []*model.Document
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		var doc model.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", snap.Ref.ID))
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *Firestore) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*model.Document, error) {
	query := r.client.Collection(documentCollection).FindNearest(
		"Embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		nil,
	)

	var docs []*model.Document
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to search similar documents")
		}

		var doc model.Document
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", snap.Ref.ID))
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

func (r *Firestore) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
