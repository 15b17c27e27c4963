package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/repository"
	"github.com/m-mizutani/paperboy/pkg/service/classifier"
	"github.com/m-mizutani/paperboy/pkg/service/evaluator"
	"github.com/m-mizutani/paperboy/pkg/service/memory"
	"github.com/m-mizutani/paperboy/pkg/service/summarizer"
	"github.com/m-mizutani/paperboy/pkg/usecase/pipeline"
)

type fakeBackend struct {
	name  string
	reply func(prompt string) string
	calls int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.calls++
	return b.reply(prompt), nil
}

type fakeTranslator struct {
	calls []string
}

func (tr *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	tr.calls = append(tr.calls, targetLang)
	return "[" + targetLang + "] " + text, nil
}

type fakeEmbedder struct{}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[(i+int(r))%8] += 1
	}
	return vec, nil
}

func constant(s string) func(string) string {
	return func(string) string { return s }
}

type testPipeline struct {
	uc        *pipeline.UseCase
	repo      *repository.Memory
	primary   *fakeBackend
	secondary *fakeBackend
	trans     *fakeTranslator
}

func newTestPipeline(primaryReply, secondaryReply func(string) string) *testPipeline {
	repo := repository.NewMemory()
	embedder := &fakeEmbedder{}
	primary := &fakeBackend{name: "gemini", reply: primaryReply}
	secondary := &fakeBackend{name: "t5", reply: secondaryReply}
	trans := &fakeTranslator{}

	uc := pipeline.New(
		classifier.New(),
		memory.New(repo, embedder),
		summarizer.New(primary, secondary, trans),
		evaluator.New(embedder),
	)

	return &testPipeline{uc: uc, repo: repo, primary: primary, secondary: secondary, trans: trans}
}

func TestPipelineRejectsNonNews(t *testing.T) {
	tp := newTestPipeline(constant("s"), constant("s"))

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:     "The cat sat on the mat.",
		Source:   model.SourceText,
		Language: model.LanguageEnglish,
	})

	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrNotNews))
	gt.V(t, out).Nil()
	gt.Equal(t, tp.primary.calls, 0)

	docs, listErr := tp.repo.ListDocuments(context.Background(), 0, 100)
	gt.NoError(t, listErr)
	gt.A(t, docs).Length(0)
}

func TestPipelineStoresNovelArticle(t *testing.T) {
	article := "Breaking news: the city council announced a new transit plan on Monday."
	tp := newTestPipeline(constant("council announces transit plan"), constant("transit plan announced"))

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:     article,
		Source:   model.SourceText,
		Language: model.LanguageEnglish,
	})
	gt.NoError(t, err)

	gt.True(t, out.Stored)
	gt.A(t, out.ContextDocs).Length(0)

	docs, listErr := tp.repo.ListDocuments(context.Background(), 0, 100)
	gt.NoError(t, listErr)
	gt.A(t, docs).Length(1)
	gt.Equal(t, docs[0].Text, article)
}

func TestPipelineSkipsWriteWhenContextExists(t *testing.T) {
	tp := newTestPipeline(constant("s"), constant("s"))
	ctx := context.Background()

	prior := "Markets update: shares rose sharply after the report."
	first, err := tp.uc.Run(ctx, pipeline.Input{
		Text: prior, Source: model.SourceText, Language: model.LanguageEnglish,
	})
	gt.NoError(t, err)
	gt.True(t, first.Stored)

	second, err := tp.uc.Run(ctx, pipeline.Input{
		Text:     "Markets update: shares fell slightly after another report.",
		Source:   model.SourceText,
		Language: model.LanguageEnglish,
	})
	gt.NoError(t, err)

	gt.False(t, second.Stored)
	gt.A(t, second.ContextDocs).Longer(0)
	gt.Equal(t, second.ContextDocs[0], prior)

	docs, listErr := tp.repo.ListDocuments(ctx, 0, 100)
	gt.NoError(t, listErr)
	gt.A(t, docs).Length(1)
}

func TestPipelineEnglishTargetNeedsNoTranslation(t *testing.T) {
	tp := newTestPipeline(constant("summary alpha"), constant("summary beta"))

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:     "Breaking news about the election results.",
		Source:   model.SourceText,
		Language: model.LanguageEnglish,
	})
	gt.NoError(t, err)

	gt.True(t, out.Available)
	gt.Equal(t, out.Summary, out.English)
	gt.A(t, tp.trans.calls).Length(0)
}

func TestPipelineMarathiFallbackTranslates(t *testing.T) {
	reply := func(prompt string) string {
		if strings.Contains(prompt, "Summarize in Marathi:") {
			return ""
		}
		return "english summary"
	}
	tp := newTestPipeline(reply, reply)

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:     "Breaking news about the monsoon season.",
		Source:   model.SourceText,
		Language: model.LanguageMarathi,
	})
	gt.NoError(t, err)

	gt.True(t, out.Available)
	gt.Equal(t, out.Summary, "[mr] english summary")
	gt.A(t, tp.trans.calls).Length(2)
	gt.Equal(t, tp.trans.calls[0], "mr")
}

func TestPipelineAllEmptyCandidatesIsUnavailable(t *testing.T) {
	tp := newTestPipeline(constant(""), constant(""))

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:     "Breaking news with nothing to say.",
		Source:   model.SourceText,
		Language: model.LanguageEnglish,
	})
	gt.NoError(t, err)

	gt.False(t, out.Available)
	gt.Equal(t, out.Summary, "")
	gt.V(t, out.Scores).NotNil()
}

func TestPipelineUsesUserReferenceForScoring(t *testing.T) {
	tp := newTestPipeline(constant("the council approved the budget"), constant("unrelated words entirely"))

	out, err := tp.uc.Run(context.Background(), pipeline.Input{
		Text:      "Breaking news: the council approved the budget today.",
		Source:    model.SourceText,
		Language:  model.LanguageEnglish,
		Reference: "the council approved the budget",
	})
	gt.NoError(t, err)

	gt.Equal(t, out.ModelName, model.BackendPrimary)
	gt.Equal(t, out.Scores[model.BackendPrimary].Rouge1, 1.0)
}
