package model

import (
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
)

type DocumentID string

// NewDocumentID derives a deterministic ID from the source type and creation
// time. Two documents created at the same instant from the same source kind
// would collide, but creation goes through a single memory service per process.
func NewDocumentID(source SourceType, createdAt time.Time) DocumentID {
	return DocumentID(string(source) + "_" + createdAt.UTC().Format(time.RFC3339Nano))
}

type SourceType string

const (
	SourceText  SourceType = "text"
	SourceURL   SourceType = "url"
	SourcePDF   SourceType = "pdf"
	SourceImage SourceType = "image"
)

// Validate checks if the source type is one of the known input kinds
func (s SourceType) Validate() error {
	switch s {
	case SourceText, SourceURL, SourcePDF, SourceImage:
		return nil
	default:
		return goerr.New("invalid source type", goerr.V("source", s))
	}
}

// Document is a news article stored in the vector memory. Documents are never
// mutated after creation.
type Document struct {
	ID             DocumentID
	Text           string
	Embedding      firestore.Vector32
	Source         SourceType
	CreatedAt      time.Time
	SummaryPreview string
}

// Validate checks the invariants enforced at insertion time
func (d *Document) Validate() error {
	if d.ID == "" {
		return goerr.New("document ID is empty")
	}
	if strings.TrimSpace(d.Text) == "" {
		return goerr.New("document text is empty", goerr.V("id", d.ID))
	}
	if err := d.Source.Validate(); err != nil {
		return err
	}
	return nil
}
