package extract

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// fromURL fetches the page and harvests the visible paragraph text. Articles
// behind scripts or non-HTML responses yield whatever paragraphs the parser
// finds, which may be empty.
func (s *Service) fromURL(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" {
		return "", goerr.New("empty URL", goerr.T(model.TagExtraction))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "invalid URL",
			goerr.V("url", rawURL), goerr.T(model.TagExtraction))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch URL",
			goerr.V("url", rawURL), goerr.T(model.TagExtraction))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status from URL",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode),
			goerr.T(model.TagExtraction))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse HTML",
			goerr.V("url", rawURL), goerr.T(model.TagExtraction))
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n"), nil
}
