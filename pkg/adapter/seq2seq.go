package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/paperboy/pkg/model"
)

// Seq2Seq is the second generation backend: a locally-run fine-tuned
// sequence-to-sequence model served over HTTP. The server loads a fixed model
// artifact and exposes a single generate endpoint.
type Seq2Seq interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Seq2SeqClient struct {
	baseURL   string
	modelName string
	client    *http.Client
}

type Seq2SeqOption func(*Seq2SeqClient)

func WithSeq2SeqModel(name string) Seq2SeqOption {
	return func(c *Seq2SeqClient) {
		c.modelName = name
	}
}

func WithSeq2SeqTimeout(d time.Duration) Seq2SeqOption {
	return func(c *Seq2SeqClient) {
		c.client.Timeout = d
	}
}

func NewSeq2Seq(baseURL string, opts ...Seq2SeqOption) *Seq2SeqClient {
	c := &Seq2SeqClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		modelName: "t5-news-final",
		client:    &http.Client{Timeout: 60 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Seq2SeqClient) Name() string {
	return model.BackendSecondary
}

type seq2seqRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type seq2seqResponse struct {
	Text string `json:"text"`
	// Ollama-compatible servers use "response" instead of "text"
	Response string `json:"response"`
}

func (c *Seq2SeqClient) Generate(ctx context.Context, prompt string) (string, error) {
	// The fine-tuned model expects a task prefix
	body, err := json.Marshal(seq2seqRequest{
		Model:  c.modelName,
		Prompt: "summarize: " + prompt,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal request", goerr.T(model.TagGeneration))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request", goerr.T(model.TagGeneration))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call seq2seq server", goerr.T(model.TagGeneration))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", goerr.New("seq2seq server returned error",
			goerr.V("status", resp.Status), goerr.T(model.TagGeneration))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read response", goerr.T(model.TagGeneration))
	}

	var out seq2seqResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", goerr.Wrap(err, "failed to decode response", goerr.T(model.TagGeneration))
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		text = strings.TrimSpace(out.Response)
	}
	if text == "" {
		return "", goerr.New("empty response from seq2seq server", goerr.T(model.TagGeneration))
	}

	return text, nil
}
