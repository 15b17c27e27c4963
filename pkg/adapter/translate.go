package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	translate "google.golang.org/api/translate/v3"
)

// Translator converts text between languages
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

type translateClient struct {
	svc    *translate.Service
	parent string
}

// NewTranslator creates a Cloud Translation client scoped to a project
func NewTranslator(ctx context.Context, projectID string) (Translator, error) {
	svc, err := translate.NewService(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create translation service")
	}

	return &translateClient{
		svc:    svc,
		parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}, nil
}

func (c *translateClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if text == "" || sourceLang == targetLang {
		return text, nil
	}

	req := &translate.TranslateTextRequest{
		Contents:           []string{text},
		SourceLanguageCode: sourceLang,
		TargetLanguageCode: targetLang,
		MimeType:           "text/plain",
	}

	resp, err := c.svc.Projects.Locations.TranslateText(c.parent, req).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to translate text",
			goerr.V("target", targetLang), goerr.T(model.TagTranslation))
	}

	if len(resp.Translations) == 0 {
		return "", goerr.New("empty translation response", goerr.T(model.TagTranslation))
	}

	return resp.Translations[0].TranslatedText, nil
}

// hindiFunctionWords are common Hindi words that indicate the translation
// provider answered in Hindi when Marathi was requested. The two languages
// share the Devanagari script, and the provider occasionally confuses them.
var hindiFunctionWords = []string{"है", "था", "और", "इस", "के", "में"}

// languageGuard wraps a Translator and retries Marathi translations that come
// back in Hindi. This is a workaround for a known provider defect; keeping it
// here keeps the summarizer free of language-specific knowledge.
type languageGuard struct {
	inner Translator
}

// NewLanguageGuard decorates a Translator with the Marathi/Hindi retry
func NewLanguageGuard(inner Translator) Translator {
	return &languageGuard{inner: inner}
}

func (g *languageGuard) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := g.inner.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	if targetLang == "mr" && containsAny(out, hindiFunctionWords) {
		// One retry with Marathi requested explicitly, then accept whatever
		// comes back
		retried, err := g.inner.Translate(ctx, text, sourceLang, "mr")
		if err != nil {
			return out, nil
		}
		return retried, nil
	}

	return out, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
