package narrate

import "fmt"

// GenerationError reports a failed audio generation call for one text chunk.
// It is fatal to the session at the point where the missing segment would
// have been required; the scheduler performs no retries of its own.
type GenerationError struct {
	// Index is the absolute segment index the chunk was destined for.
	Index int

	// Chunk is the text whose generation failed.
	Chunk string

	// Err is the underlying provider error.
	Err error
}

func (e *GenerationError) Error() string {
	text := e.Chunk
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Sprintf("narrate: generation failed for segment %d (%q): %v", e.Index, text, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
