// Package tts synthesizes narration audio for one text chunk at a time.
//
// Providers return a complete encoded segment (WAV container) per request;
// the playback layer treats each segment as an independent decode unit.
package tts

import "context"

// Request is one synthesis request.
type Request struct {
	// Text is the chunk to speak.
	Text string

	// Voice selects the provider's voice profile.
	Voice string

	// Speed scales speaking rate around 1.0. Zero means the provider
	// default.
	Speed float64
}

// Generator synthesizes one request into an encoded audio segment.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) ([]byte, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
