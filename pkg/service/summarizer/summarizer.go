package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/utils/logging"
)

const (
	// maxContextDocs bounds how many retrieved documents go into the prompt
	maxContextDocs = 5
	// maxContextChars bounds the joined context size
	maxContextChars = 3000
	// asciiRatioThreshold: a direct target-language output whose ASCII
	// fraction exceeds this is assumed to have ignored the language
	// instruction. Meaningful for Devanagari targets; trivially true for
	// Latin-script ones.
	asciiRatioThreshold = 0.8
)

// Backend is a single generation strategy
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Translator converts a candidate between languages
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Service produces candidate summaries from two independent backends, in
// English and in the target language. Backend and translation failures are
// absorbed as empty candidates; the caller always receives a fully-shaped
// SummarySet.
type Service struct {
	primary    Backend
	secondary  Backend
	translator Translator
}

func New(primary, secondary Backend, translator Translator) *Service {
	return &Service{
		primary:    primary,
		secondary:  secondary,
		translator: translator,
	}
}

// buildPrompt joins the query with up to maxContextDocs context documents
func buildPrompt(query string, contextDocs []string, language model.Language) string {
	docs := contextDocs
	if len(docs) > maxContextDocs {
		docs = docs[:maxContextDocs]
	}

	context := strings.Join(docs, "\n")
	if len(context) > maxContextChars {
		// Cut on a rune boundary so Devanagari context never becomes
		// invalid UTF-8
		cut := maxContextChars
		for cut > 0 && !utf8.RuneStart(context[cut]) {
			cut--
		}
		context = context[:cut]
	}

	return fmt.Sprintf("Summarize in %s:\nUser Query: %s\nContext:\n%s", language, query, context)
}

// generatePair asks both backends for a summary of the same prompt. The two
// calls are independent, so they run concurrently; a failed backend
// contributes an empty string without affecting the other.
func (s *Service) generatePair(ctx context.Context, prompt string) model.CandidatePair {
	logger := logging.From(ctx)

	var pair model.CandidatePair
	var wg sync.WaitGroup

	run := func(backend Backend, out *string) {
		defer wg.Done()
		text, err := backend.Generate(ctx, prompt)
		if err != nil {
			logger.Warn("generation backend failed", "backend", backend.Name(), "error", err)
			return
		}
		*out = strings.TrimSpace(text)
	}

	wg.Add(2)
	go run(s.primary, &pair.Primary)
	go run(s.secondary, &pair.Secondary)
	wg.Wait()

	return pair
}

// needsTranslation judges a direct target-language output as inadequate when
// it is empty or mostly ASCII
func needsTranslation(text string) bool {
	if text == "" {
		return true
	}

	ascii := 0
	total := 0
	for _, r := range text {
		total++
		if r < 128 {
			ascii++
		}
	}

	return float64(ascii)/float64(total) > asciiRatioThreshold
}

// translateCandidate machine-translates an English candidate into the target
// language, absorbing failures as empty output
func (s *Service) translateCandidate(ctx context.Context, english string, target model.Language) string {
	if english == "" {
		return ""
	}

	out, err := s.translator.Translate(ctx, english, "en", target.Code())
	if err != nil {
		logging.From(ctx).Warn("translation failed", "target", target, "error", err)
		return ""
	}
	return out
}

// GenerateSummaries produces English candidates for evaluation and
// target-language candidates for display. For an English target the two
// blocks are identical. A direct target-language candidate that fails the
// quality gate is replaced by a machine translation of its English
// counterpart.
func (s *Service) GenerateSummaries(ctx context.Context, query string, contextDocs []string, target model.Language) model.SummarySet {
	english := s.generatePair(ctx, buildPrompt(query, contextDocs, model.LanguageEnglish))

	if target.IsEnglish() {
		return model.SummarySet{English: english, Final: english}
	}

	final := s.generatePair(ctx, buildPrompt(query, contextDocs, target))

	if needsTranslation(final.Primary) {
		final.Primary = s.translateCandidate(ctx, english.Primary, target)
	}
	if needsTranslation(final.Secondary) {
		final.Secondary = s.translateCandidate(ctx, english.Secondary, target)
	}

	return model.SummarySet{English: english, Final: final}
}
