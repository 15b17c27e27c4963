package extract

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// fromImage runs the OCR binary over the image payload. The image is staged
// to a temp file because tesseract reads from a path.
func (s *Service) fromImage(ctx context.Context, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", goerr.New("empty image payload", goerr.T(model.TagExtraction))
	}

	tmp, err := os.CreateTemp("", "paperboy-ocr-*")
	if err != nil {
		return "", goerr.Wrap(err, "failed to stage image for OCR", goerr.T(model.TagExtraction))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return "", goerr.Wrap(err, "failed to stage image for OCR", goerr.T(model.TagExtraction))
	}
	if err := tmp.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to stage image for OCR", goerr.T(model.TagExtraction))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.ocrCommand, tmp.Name(), "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", goerr.Wrap(err, "OCR command failed",
			goerr.V("command", s.ocrCommand),
			goerr.V("stderr", stderr.String()),
			goerr.T(model.TagExtraction))
	}

	return strings.TrimSpace(stdout.String()), nil
}
