package summarizer_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/paperboy/pkg/model"
	"github.com/m-mizutani/paperboy/pkg/service/summarizer"
)

type fakeBackend struct {
	name    string
	reply   func(prompt string) string
	err     error
	prompts []string
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.prompts = append(b.prompts, prompt)
	if b.err != nil {
		return "", b.err
	}
	return b.reply(prompt), nil
}

type fakeTranslator struct {
	calls  int
	output string
	err    error
}

func (tr *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	tr.calls++
	if tr.err != nil {
		return "", tr.err
	}
	if tr.output != "" {
		return tr.output, nil
	}
	return "[" + targetLang + "] " + text, nil
}

func constant(s string) func(string) string {
	return func(string) string { return s }
}

func TestEnglishTargetReturnsIdenticalBlocks(t *testing.T) {
	primary := &fakeBackend{name: "gemini", reply: constant("summary from gemini")}
	secondary := &fakeBackend{name: "t5", reply: constant("summary from t5")}
	translator := &fakeTranslator{}

	svc := summarizer.New(primary, secondary, translator)
	set := svc.GenerateSummaries(context.Background(), "what happened", []string{"doc one"}, model.LanguageEnglish)

	gt.Equal(t, set.English, set.Final)
	gt.Equal(t, set.English.Primary, "summary from gemini")
	gt.Equal(t, set.English.Secondary, "summary from t5")
	gt.Equal(t, translator.calls, 0)

	// Only the English prompt was sent
	gt.A(t, primary.prompts).Length(1)
	gt.S(t, primary.prompts[0]).Contains("Summarize in English:")
}

func TestBackendFailureIsIsolated(t *testing.T) {
	primary := &fakeBackend{name: "gemini", err: goerr.New("quota exceeded")}
	secondary := &fakeBackend{name: "t5", reply: constant("local summary")}

	svc := summarizer.New(primary, secondary, &fakeTranslator{})
	set := svc.GenerateSummaries(context.Background(), "query", nil, model.LanguageEnglish)

	gt.Equal(t, set.English.Primary, "")
	gt.Equal(t, set.English.Secondary, "local summary")
}

func TestDirectTargetLanguageOutputIsKept(t *testing.T) {
	devanagari := "मुंबईत मुसळधार पाऊस झाला आणि वाहतूक विस्कळीत झाली"
	reply := func(prompt string) string {
		if strings.Contains(prompt, "Summarize in Marathi:") {
			return devanagari
		}
		return "english summary"
	}
	primary := &fakeBackend{name: "gemini", reply: reply}
	secondary := &fakeBackend{name: "t5", reply: reply}
	translator := &fakeTranslator{}

	svc := summarizer.New(primary, secondary, translator)
	set := svc.GenerateSummaries(context.Background(), "query", nil, model.LanguageMarathi)

	gt.Equal(t, set.Final.Primary, devanagari)
	gt.Equal(t, set.Final.Secondary, devanagari)
	gt.Equal(t, translator.calls, 0)
}

func TestEmptyDirectOutputFallsBackToTranslation(t *testing.T) {
	reply := func(prompt string) string {
		if strings.Contains(prompt, "Summarize in Marathi:") {
			return ""
		}
		return "english summary"
	}
	primary := &fakeBackend{name: "gemini", reply: reply}
	secondary := &fakeBackend{name: "t5", reply: reply}
	translator := &fakeTranslator{}

	svc := summarizer.New(primary, secondary, translator)
	set := svc.GenerateSummaries(context.Background(), "query", nil, model.LanguageMarathi)

	gt.Equal(t, set.English.Primary, "english summary")
	gt.Equal(t, set.Final.Primary, "[mr] english summary")
	gt.Equal(t, set.Final.Secondary, "[mr] english summary")
	gt.Equal(t, translator.calls, 2)
}

func TestMostlyASCIIOutputFailsQualityGate(t *testing.T) {
	reply := func(prompt string) string {
		if strings.Contains(prompt, "Summarize in Hindi:") {
			// Model ignored the language instruction
			return "this is plainly an english answer"
		}
		return "english summary"
	}
	primary := &fakeBackend{name: "gemini", reply: reply}
	secondary := &fakeBackend{name: "t5", reply: reply}
	translator := &fakeTranslator{}

	svc := summarizer.New(primary, secondary, translator)
	set := svc.GenerateSummaries(context.Background(), "query", nil, model.LanguageHindi)

	gt.Equal(t, set.Final.Primary, "[hi] english summary")
	gt.Equal(t, translator.calls, 2)
}

func TestTranslationFailureYieldsEmptyCandidate(t *testing.T) {
	reply := func(prompt string) string {
		if strings.Contains(prompt, "Summarize in Hindi:") {
			return ""
		}
		return "english summary"
	}
	primary := &fakeBackend{name: "gemini", reply: reply}
	secondary := &fakeBackend{name: "t5", reply: reply}
	translator := &fakeTranslator{err: goerr.New("translation service down")}

	svc := summarizer.New(primary, secondary, translator)
	set := svc.GenerateSummaries(context.Background(), "query", nil, model.LanguageHindi)

	// Fully-shaped result with empty final candidates, no panic, no error
	gt.Equal(t, set.English.Primary, "english summary")
	gt.Equal(t, set.Final.Primary, "")
	gt.Equal(t, set.Final.Secondary, "")
}

func TestContextTruncationKeepsValidUTF8(t *testing.T) {
	primary := &fakeBackend{name: "gemini", reply: constant("s")}
	secondary := &fakeBackend{name: "t5", reply: constant("s")}

	// One ASCII byte shifts the multi-byte runes off the truncation offset
	docs := []string{"x" + strings.Repeat("ह", 2000)}
	svc := summarizer.New(primary, secondary, &fakeTranslator{})
	svc.GenerateSummaries(context.Background(), "query", docs, model.LanguageEnglish)

	gt.A(t, primary.prompts).Length(1)
	gt.True(t, utf8.ValidString(primary.prompts[0]))
}

func TestPromptIncludesAtMostFiveContextDocs(t *testing.T) {
	primary := &fakeBackend{name: "gemini", reply: constant("s")}
	secondary := &fakeBackend{name: "t5", reply: constant("s")}

	docs := []string{"d1", "d2", "d3", "d4", "d5", "d6"}
	svc := summarizer.New(primary, secondary, &fakeTranslator{})
	svc.GenerateSummaries(context.Background(), "query", docs, model.LanguageEnglish)

	gt.A(t, primary.prompts).Length(1)
	gt.S(t, primary.prompts[0]).Contains("d5")
	gt.S(t, primary.prompts[0]).NotContains("d6")
}
