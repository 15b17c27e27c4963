package adapter

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
)

// ScoreRecord is one evaluated candidate, exported for offline quality
// tracking of the summarization backends.
type ScoreRecord struct {
	RequestID  string    `bigquery:"request_id"`
	ModelName  string    `bigquery:"model_name"`
	Language   string    `bigquery:"language"`
	Rouge1     float64   `bigquery:"rouge1"`
	Rouge2     float64   `bigquery:"rouge2"`
	RougeL     float64   `bigquery:"rouge_l"`
	SemanticF1 float64   `bigquery:"semantic_f1"`
	Selected   bool      `bigquery:"selected"`
	CreatedAt  time.Time `bigquery:"created_at"`
}

// ScoreSink receives evaluation results
type ScoreSink interface {
	Insert(ctx context.Context, records []*ScoreRecord) error
}

type bigQuerySink struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewScoreSink creates a BigQuery-backed ScoreSink
func NewScoreSink(ctx context.Context, projectID, dataset, table string) (ScoreSink, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bigquery client")
	}

	return &bigQuerySink{
		client:  client,
		dataset: dataset,
		table:   table,
	}, nil
}

func (s *bigQuerySink) Insert(ctx context.Context, records []*ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	inserter := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := inserter.Put(ctx, records); err != nil {
		return goerr.Wrap(err, "failed to insert score records",
			goerr.V("dataset", s.dataset), goerr.V("table", s.table))
	}

	return nil
}
