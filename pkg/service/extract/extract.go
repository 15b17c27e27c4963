package extract

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// Service is the single canonical text source: it turns any supported input
// kind into plain text, or fails with a descriptive extraction error. It
// holds no state beyond its HTTP client.
type Service struct {
	client     *http.Client
	ocrCommand string
}

type Option func(*Service)

// WithHTTPClient overrides the client used for URL extraction
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithOCRCommand overrides the OCR binary name (default "tesseract")
func WithOCRCommand(cmd string) Option {
	return func(s *Service) {
		s.ocrCommand = cmd
	}
}

func New(opts ...Option) *Service {
	s := &Service{
		client:     &http.Client{Timeout: 10 * time.Second},
		ocrCommand: "tesseract",
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Extract dispatches on the source kind. For SourceText the payload is the
// text itself; for SourceURL it is the address; for SourcePDF and SourceImage
// it is the raw file content.
func (s *Service) Extract(ctx context.Context, source model.SourceType, payload []byte) (string, error) {
	switch source {
	case model.SourceText:
		return strings.TrimSpace(string(payload)), nil
	case model.SourceURL:
		return s.fromURL(ctx, strings.TrimSpace(string(payload)))
	case model.SourcePDF:
		return s.fromPDF(payload)
	case model.SourceImage:
		return s.fromImage(ctx, payload)
	default:
		return "", goerr.New("unsupported source type",
			goerr.V("source", source), goerr.T(model.TagExtraction))
	}
}
