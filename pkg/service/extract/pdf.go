package extract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// fromPDF extracts the plain text layer of a PDF document. Scanned PDFs
// without a text layer come back empty rather than failing.
func (s *Service) fromPDF(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", goerr.New("empty PDF payload", goerr.T(model.TagExtraction))
	}

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open PDF", goerr.T(model.TagExtraction))
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", goerr.Wrap(err, "failed to read PDF text", goerr.T(model.TagExtraction))
	}

	text, err := io.ReadAll(content)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read PDF text", goerr.T(model.TagExtraction))
	}

	return strings.TrimSpace(string(text)), nil
}
