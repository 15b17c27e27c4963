package adapter

import (
	"context"
	"encoding/base64"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
	texttospeech "google.golang.org/api/texttospeech/v1"
)

// Speech renders text to audio. Synthesize returns MP3 bytes.
type Speech interface {
	Synthesize(ctx context.Context, text, languageCode string) ([]byte, error)
}

type speechClient struct {
	svc *texttospeech.Service
}

// NewSpeech creates a Cloud Text-to-Speech client
func NewSpeech(ctx context.Context) (Speech, error) {
	svc, err := texttospeech.NewService(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create text-to-speech service")
	}
	return &speechClient{svc: svc}, nil
}

// voiceLocale maps ISO 639-1 codes to synthesis locales
func voiceLocale(languageCode string) string {
	switch languageCode {
	case "hi":
		return "hi-IN"
	case "mr":
		return "mr-IN"
	default:
		return "en-US"
	}
}

func (c *speechClient) Synthesize(ctx context.Context, text, languageCode string) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voiceLocale(languageCode),
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}

	resp, err := c.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to synthesize speech",
			goerr.V("language", languageCode), goerr.T(model.TagSpeech))
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode audio content", goerr.T(model.TagSpeech))
	}

	return audio, nil
}
