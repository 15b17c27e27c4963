package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/adapter"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/service/classifier"
	"github.com/m-mizutani/paperboy/pkg/service/evaluator"
	"github.com/m-mizutani/paperboy/pkg/service/memory"
	"github.com/m-mizutani/paperboy/pkg/service/summarizer"
	"github.com/m-mizutani/paperboy/pkg/utils/logging"
)

const (
	// defaultContextDocs is how many prior documents are retrieved as context
	defaultContextDocs = 3
	// previewLength bounds the summary snippet stored alongside a document
	previewLength = 200
)

// Input is one summarization request
type Input struct {
	Text      string
	Source    model.SourceType
	Language  model.Language
	Reference string
	WithAudio bool
}

// Output is the completed pipeline result. Summary holds the selected
// candidate in the target language; Available is false when every backend and
// fallback produced nothing, in which case the caller must render an explicit
// "summary unavailable" state instead of an empty string.
type Output struct {
	RequestID   string
	Summary     string
	English     string
	ModelName   string
	Available   bool
	Scores      map[string]model.ScoreCard
	ContextDocs []string
	Stored      bool
	Audio       []byte
	AudioKey    string
}

// UseCase runs the summarization pipeline: classify, retrieve context,
// summarize, conditionally grow the memory, evaluate, select, and optionally
// speak. Only classification rejection halts it; every downstream failure
// degrades the result instead.
type UseCase struct {
	classifier *classifier.Classifier
	memory     *memory.Service
	summarizer *summarizer.Service
	evaluator  *evaluator.Service

	speech  adapter.Speech
	storage adapter.Storage
	sink    adapter.ScoreSink

	contextDocs int
	now         func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithSpeech enables audio rendering of the selected summary
func WithSpeech(speech adapter.Speech) Option {
	return func(uc *UseCase) {
		uc.speech = speech
	}
}

// WithStorage enables archival of synthesized audio
func WithStorage(storage adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.storage = storage
	}
}

// WithScoreSink enables export of evaluation results
func WithScoreSink(sink adapter.ScoreSink) Option {
	return func(uc *UseCase) {
		uc.sink = sink
	}
}

// WithContextDocs overrides how many documents are retrieved as context
func WithContextDocs(k int) Option {
	return func(uc *UseCase) {
		if k > 0 {
			uc.contextDocs = k
		}
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a new pipeline UseCase instance
func New(
	cls *classifier.Classifier,
	mem *memory.Service,
	sum *summarizer.Service,
	eval *evaluator.Service,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		classifier:  cls,
		memory:      mem,
		summarizer:  sum,
		evaluator:   eval,
		contextDocs: defaultContextDocs,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// preview returns the first non-empty English candidate, truncated
func preview(english model.CandidatePair) string {
	text := english.Primary
	if text == "" {
		text = english.Secondary
	}

	runes := []rune(text)
	if len(runes) > previewLength {
		return string(runes[:previewLength])
	}
	return text
}

// Run executes the pipeline for one request. It returns ErrNotNews when the
// classifier rejects the input; any other degradation is absorbed into the
// Output.
func (uc *UseCase) Run(ctx context.Context, input Input) (*Output, error) {
	requestID := uuid.New().String()
	logger := logging.From(ctx).With("request_id", requestID)
	ctx = logging.With(ctx, logger)

	text := strings.TrimSpace(input.Text)
	if !uc.classifier.IsNews(text) {
		return nil, goerr.Wrap(model.ErrNotNews, "classification rejected input",
			goerr.V("request_id", requestID))
	}

	contextDocs := uc.memory.Search(ctx, text, uc.contextDocs)
	logger.Info("context retrieved", "docs", len(contextDocs))

	set := uc.summarizer.GenerateSummaries(ctx, text, contextDocs, input.Language)

	stored := false
	if len(contextDocs) == 0 {
		stored = uc.memory.Add(ctx, text, input.Source, preview(set.English))
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = strings.Join(contextDocs, "\n")
	}

	scores := uc.evaluator.EvaluateAll(ctx, map[string]string{
		model.BackendPrimary:   set.English.Primary,
		model.BackendSecondary: set.English.Secondary,
	}, reference)

	best := uc.evaluator.SelectBest(scores)

	out := &Output{
		RequestID:   requestID,
		Summary:     set.Final.Get(best),
		English:     set.English.Get(best),
		ModelName:   best,
		Scores:      scores,
		ContextDocs: contextDocs,
		Stored:      stored,
	}
	out.Available = out.Summary != ""

	if !out.Available {
		logger.Warn("all candidates empty, summary unavailable")
	}

	uc.exportScores(ctx, requestID, input.Language, scores, best)

	if input.WithAudio && out.Available {
		out.Audio, out.AudioKey = uc.renderSpeech(ctx, requestID, out.Summary, input.Language)
	}

	return out, nil
}

// exportScores sends evaluation rows to the score sink, if configured
func (uc *UseCase) exportScores(ctx context.Context, requestID string, lang model.Language, scores map[string]model.ScoreCard, best string) {
	if uc.sink == nil || len(scores) == 0 {
		return
	}

	now := uc.now()
	records := make([]*adapter.ScoreRecord, 0, len(scores))
	for _, name := range model.BackendNames() {
		card, ok := scores[name]
		if !ok {
			continue
		}
		records = append(records, &adapter.ScoreRecord{
			RequestID:  requestID,
			ModelName:  name,
			Language:   lang.Code(),
			Rouge1:     card.Rouge1,
			Rouge2:     card.Rouge2,
			RougeL:     card.RougeL,
			SemanticF1: card.SemanticF1,
			Selected:   name == best,
			CreatedAt:  now,
		})
	}

	if err := uc.sink.Insert(ctx, records); err != nil {
		logging.From(ctx).Warn("failed to export scores", "error", err)
	}
}

// renderSpeech synthesizes the summary and optionally archives the audio.
// Absence of audio is non-fatal: failures return nil bytes.
func (uc *UseCase) renderSpeech(ctx context.Context, requestID, summary string, lang model.Language) ([]byte, string) {
	logger := logging.From(ctx)

	if uc.speech == nil {
		return nil, ""
	}

	audio, err := uc.speech.Synthesize(ctx, summary, lang.Code())
	if err != nil {
		logger.Warn("speech synthesis failed", "error", err)
		return nil, ""
	}
	if len(audio) == 0 {
		return nil, ""
	}

	if uc.storage == nil {
		return audio, ""
	}

	key := "audio/" + requestID + ".mp3"
	w, err := uc.storage.Put(ctx, key)
	if err != nil {
		logger.Warn("failed to open audio object", "error", err, "key", key)
		return audio, ""
	}
	if _, err := w.Write(audio); err != nil {
		logger.Warn("failed to write audio object", "error", err, "key", key)
		w.Close()
		return audio, ""
	}
	if err := w.Close(); err != nil {
		logger.Warn("failed to close audio object", "error", err, "key", key)
		return audio, ""
	}

	logger.Info("audio archived", "key", key)
	return audio, key
}
