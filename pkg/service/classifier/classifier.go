package classifier

import (
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	"gopkg.in/yaml.v3"
)

// defaultLexicon contains indicator terms commonly found in news articles.
// The gate is recall-biased: a single substring match is enough.
var defaultLexicon = []string{
	"news", "breaking", "report", "reported", "update", "published",
	"via reuters", "via ap", "said", "announced", "journal",
	"bbc", "cnn", "times", "guardian", "press release", "headlines",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Classifier decides whether input text is news-like. It holds no state
// beyond its lexicon and cannot fail.
type Classifier struct {
	lexicon []string
}

type Option func(*Classifier)

// WithLexicon replaces the default keyword lexicon
func WithLexicon(terms []string) Option {
	return func(c *Classifier) {
		if len(terms) > 0 {
			c.lexicon = terms
		}
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{lexicon: defaultLexicon}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lexiconFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadLexicon reads a keyword lexicon from a YAML file with a top-level
// "keywords" list.
func LoadLexicon(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read lexicon file", goerr.V("path", path))
	}

	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse lexicon file", goerr.V("path", path))
	}
	if len(f.Keywords) == 0 {
		return nil, goerr.New("lexicon file has no keywords", goerr.V("path", path))
	}

	return f.Keywords, nil
}

// normalize collapses whitespace and lowercases the text
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")))
}

// IsNews reports whether any lexicon term appears in the normalized text.
// Empty or whitespace-only input is never news.
func (c *Classifier) IsNews(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	cleaned := normalize(text)
	for _, term := range c.lexicon {
		if strings.Contains(cleaned, term) {
			return true
		}
	}
	return false
}

// Classify returns the verdict with a binary confidence
func (c *Classifier) Classify(text string) model.ClassificationResult {
	if c.IsNews(text) {
		return model.ClassificationResult{IsNews: true, Confidence: 1.0}
	}
	return model.ClassificationResult{IsNews: false, Confidence: 0.0}
}
