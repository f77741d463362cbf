package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultModel is the speech model used when none is configured.
	DefaultModel = openai.SpeechModelTTS1

	// DefaultVoice is used when a request carries no voice.
	DefaultVoice = "alloy"
)

// OpenAI implements [Generator] using the OpenAI speech API. It requests
// WAV output so segments decode without a cross-segment bitstream.
//
// It also works with any OpenAI-compatible provider by setting WithBaseURL.
type OpenAI struct {
	client *openai.Client
	model  openai.SpeechModel
}

var _ Generator = (*OpenAI)(nil)

type config struct {
	model      openai.SpeechModel
	baseURL    string
	httpClient *http.Client
}

// Option configures the OpenAI generator.
type Option func(*config)

// WithModel selects the speech model.
func WithModel(model openai.SpeechModel) Option {
	return func(c *config) { c.model = model }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}

// NewOpenAI creates an OpenAI speech generator.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := config{
		model:      DefaultModel,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(cfg.httpClient),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	client := openai.NewClient(clientOpts...)
	return &OpenAI{
		client: &client,
		model:  cfg.model,
	}
}

// Generate synthesizes req.Text to a WAV segment.
func (o *OpenAI) Generate(ctx context.Context, req Request) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	params := openai.AudioSpeechNewParams{
		Model:          o.model,
		Input:          req.Text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	}
	if req.Speed != 0 {
		params.Speed = openai.Float(req.Speed)
	}

	res, err := o.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("tts: openai speech: %w", err)
	}
	defer res.Body.Close()

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("tts: read speech response: %w", err)
	}
	return audio, nil
}
