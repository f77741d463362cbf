package narrate

import (
	"io"
	"sync"
	"time"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/audio/pcm"
)

// Sink is the single hardware audio output. It is exclusively owned by the
// Engine; at most one buffer is ever cued at a time.
type Sink interface {
	// Start prepares the output for rendering. The Engine calls it lazily
	// before the first Cue; implementations should resume a suspended
	// device here.
	Start() error

	// Cue schedules buf to begin rendering at time at on the engine clock,
	// starting at offset within the buffer. at is never in the past.
	Cue(buf *pcm.Buffer, offset, at time.Duration) error

	// Cut immediately stops whatever is rendering.
	Cut() error

	// Close releases the output.
	Close() error
}

// WriterSink renders cued buffers as little-endian 16-bit PCM bytes on an
// io.Writer, typically a pipe to an external player or an audio device
// FIFO. Writes happen on a background goroutine in small slices so that Cut
// can take effect between them; the writer's own backpressure paces
// playback.
type WriterSink struct {
	w     io.Writer
	clock Clock
	slice time.Duration

	mu  sync.Mutex
	gen uint64 // bumped by Cut/Close to stop the in-flight render
}

// NewWriterSink creates a WriterSink rendering to w. The clock is used to
// honor each cue's scheduled start time.
func NewWriterSink(w io.Writer, clock Clock) *WriterSink {
	return &WriterSink{w: w, clock: clock, slice: 100 * time.Millisecond}
}

func (s *WriterSink) Start() error { return nil }

func (s *WriterSink) Cue(buf *pcm.Buffer, offset, at time.Duration) error {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	go s.render(buf, offset, at, gen)
	return nil
}

func (s *WriterSink) render(buf *pcm.Buffer, offset, at time.Duration, gen uint64) {
	if wait := at - s.clock.Now(); wait > 0 {
		time.Sleep(wait)
	}
	step := int(buf.Format().SamplesInDuration(s.slice))
	if step <= 0 {
		step = 1
	}
	for from := buf.SampleAtOffset(offset); from < buf.Len(); from += step {
		s.mu.Lock()
		stale := s.gen != gen
		s.mu.Unlock()
		if stale {
			return
		}
		to := from + step
		if to > buf.Len() {
			to = buf.Len()
		}
		slice := buf.Format().BufferFromSamples(buf.Samples()[from:to])
		if _, err := slice.WriteLE16(s.w, 0); err != nil {
			return
		}
	}
}

func (s *WriterSink) Cut() error {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	return nil
}

func (s *WriterSink) Close() error {
	s.Cut()
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var _ Sink = (*WriterSink)(nil)
