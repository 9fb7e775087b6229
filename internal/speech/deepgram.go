package speech

import (
	"context"
	"errors"
	"fmt"

	speakapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/speak/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/speak"
)

var errMissingDeepgramKey = errors.New("deepgram API key missing")

// DeepgramSynthesizer renders speech with Deepgram's Aura REST endpoint.
type DeepgramSynthesizer struct {
	apiKey string
	model  string
}

func NewDeepgramSynthesizer(apiKey, model string) *DeepgramSynthesizer {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramSynthesizer{apiKey: apiKey, model: model}
}

func (d *DeepgramSynthesizer) Synthesize(ctx context.Context, text, path string) error {
	if d.apiKey == "" {
		return errMissingDeepgramKey
	}

	c := client.NewREST(d.apiKey, &interfaces.ClientOptions{})
	dg := speakapi.New(c)

	if _, err := dg.ToSave(ctx, path, text, &interfaces.SpeakOptions{Model: d.model}); err != nil {
		return fmt.Errorf("deepgram speak: %w", err)
	}
	return nil
}
