package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/adapter"
	"github.com/m-mizutani/paperboy/pkg/repository"
	"github.com/m-mizutani/paperboy/pkg/service/classifier"
	"github.com/m-mizutani/paperboy/pkg/service/evaluator"
	"github.com/m-mizutani/paperboy/pkg/service/memory"
	"github.com/m-mizutani/paperboy/pkg/service/summarizer"
	"github.com/m-mizutani/paperboy/pkg/usecase/pipeline"
	"github.com/m-mizutani/paperboy/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Memory store
	store      string
	sqlitePath string
	project    string
	database   string

	// Generation backends
	geminiProject  string
	geminiLocation string
	geminiModel    string
	seq2seqURL     string
	seq2seqModel   string

	// Classifier
	lexiconPath string

	// Optional exports
	audioBucket string
	bqDataset   string
	bqTable     string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("PAPERBOY_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("PAPERBOY_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Memory store backend (sqlite, firestore, memory)",
			Value:       "sqlite",
			Sources:     cli.EnvVars("PAPERBOY_STORE"),
			Destination: &cfg.store,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Usage:       "Path to the SQLite memory database",
			Value:       "paperboy.db",
			Sources:     cli.EnvVars("PAPERBOY_SQLITE_PATH"),
			Destination: &cfg.sqlitePath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini (defaults to --project)",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini generative model name",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// backendFlags returns flags for the local seq2seq backend and the classifier
func backendFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "seq2seq-url",
			Usage:       "Base URL of the local seq2seq inference server",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("PAPERBOY_SEQ2SEQ_URL"),
			Destination: &cfg.seq2seqURL,
		},
		&cli.StringFlag{
			Name:        "seq2seq-model",
			Usage:       "Model name served by the seq2seq server",
			Sources:     cli.EnvVars("PAPERBOY_SEQ2SEQ_MODEL"),
			Destination: &cfg.seq2seqModel,
		},
		&cli.StringFlag{
			Name:        "lexicon",
			Usage:       "Path to a YAML file with classifier keywords",
			Sources:     cli.EnvVars("PAPERBOY_LEXICON"),
			Destination: &cfg.lexiconPath,
		},
	}
}

// exportFlags returns flags for optional audio archival and score export
func exportFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "audio-bucket",
			Usage:       "Cloud Storage bucket for synthesized audio",
			Sources:     cli.EnvVars("PAPERBOY_AUDIO_BUCKET"),
			Destination: &cfg.audioBucket,
		},
		&cli.StringFlag{
			Name:        "bq-dataset",
			Usage:       "BigQuery dataset for evaluation scores",
			Sources:     cli.EnvVars("PAPERBOY_BQ_DATASET"),
			Destination: &cfg.bqDataset,
		},
		&cli.StringFlag{
			Name:        "bq-table",
			Usage:       "BigQuery table for evaluation scores",
			Value:       "scores",
			Sources:     cli.EnvVars("PAPERBOY_BQ_TABLE"),
			Destination: &cfg.bqTable,
		},
	}
}

// setupLogger installs the process-wide logger from config
func (cfg *config) setupLogger() {
	logging.SetDefault(logging.New(cfg.logLevel, cfg.logFormat, os.Stderr))
}

// newRepository creates the memory store selected by config
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.store {
	case "sqlite":
		return repository.NewSQLite(cfg.sqlitePath)
	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore store")
		}
		return repository.NewFirestore(ctx, cfg.project, cfg.database)
	case "memory":
		return repository.NewMemory(), nil
	default:
		return nil, goerr.New("unknown store backend", goerr.V("store", cfg.store))
	}
}

// newGemini creates the hosted generation and embedding client
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	project := cfg.geminiProject
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("gemini-project or project is required")
	}

	var opts []adapter.GeminiOption
	if cfg.geminiModel != "" {
		opts = append(opts, adapter.WithGenerativeModel(cfg.geminiModel))
	}

	return adapter.NewGemini(ctx, project, cfg.geminiLocation, opts...)
}

// newSeq2Seq creates the local generation backend client
func (cfg *config) newSeq2Seq() *adapter.Seq2SeqClient {
	var opts []adapter.Seq2SeqOption
	if cfg.seq2seqModel != "" {
		opts = append(opts, adapter.WithSeq2SeqModel(cfg.seq2seqModel))
	}
	return adapter.NewSeq2Seq(cfg.seq2seqURL, opts...)
}

// newTranslator creates the translation client wrapped with the Marathi guard
func (cfg *config) newTranslator(ctx context.Context) (adapter.Translator, error) {
	project := cfg.project
	if project == "" {
		project = cfg.geminiProject
	}
	if project == "" {
		return nil, goerr.New("project is required for translation")
	}

	inner, err := adapter.NewTranslator(ctx, project)
	if err != nil {
		return nil, err
	}
	return adapter.NewLanguageGuard(inner), nil
}

// newClassifier creates the classifier, loading a custom lexicon if configured
func (cfg *config) newClassifier() (*classifier.Classifier, error) {
	if cfg.lexiconPath == "" {
		return classifier.New(), nil
	}

	terms, err := classifier.LoadLexicon(cfg.lexiconPath)
	if err != nil {
		return nil, err
	}
	return classifier.New(classifier.WithLexicon(terms)), nil
}

// newMemory assembles the memory service over the configured store. The
// returned closer releases the store.
func (cfg *config) newMemory(ctx context.Context) (*memory.Service, func(), error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Warn("failed to close repository", "error", err)
		}
	}

	return memory.New(repo, gemini), closer, nil
}

// newPipeline assembles the full pipeline. withAudio wires the speech
// renderer; audio archival and score export are wired only when their flags
// are set.
func (cfg *config) newPipeline(ctx context.Context, withAudio bool) (*pipeline.UseCase, func(), error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Warn("failed to close repository", "error", err)
		}
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		closer()
		return nil, nil, err
	}

	translator, err := cfg.newTranslator(ctx)
	if err != nil {
		closer()
		return nil, nil, err
	}

	cls, err := cfg.newClassifier()
	if err != nil {
		closer()
		return nil, nil, err
	}

	var opts []pipeline.Option

	if withAudio {
		speech, err := adapter.NewSpeech(ctx)
		if err != nil {
			closer()
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithSpeech(speech))

		if cfg.audioBucket != "" {
			storage, err := adapter.NewStorage(ctx, cfg.audioBucket)
			if err != nil {
				closer()
				return nil, nil, err
			}
			opts = append(opts, pipeline.WithStorage(storage))
		}
	}

	if cfg.bqDataset != "" {
		project := cfg.project
		if project == "" {
			project = cfg.geminiProject
		}
		sink, err := adapter.NewScoreSink(ctx, project, cfg.bqDataset, cfg.bqTable)
		if err != nil {
			closer()
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithScoreSink(sink))
	}

	uc := pipeline.New(
		cls,
		memory.New(repo, gemini),
		summarizer.New(gemini, cfg.newSeq2Seq(), translator),
		evaluator.New(gemini),
		opts...,
	)

	return uc, closer, nil
}
