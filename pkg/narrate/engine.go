package narrate

import (
	"time"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/audio/pcm"
)

// Engine schedules decoded buffers on the single audio Sink with no gaps
// between consecutive segments.
//
// It keeps a monotonic cursor holding the next scheduled start time. Each
// buffer is cued at max(cursor, now) and the cursor advances by the
// buffer's remaining duration, so a segment that finishes decoding early
// still begins exactly when its predecessor ends.
//
// Engine is not safe for concurrent use on its own; the Controller calls
// it under the session lock.
type Engine struct {
	clock Clock
	sink  Sink

	started bool
	cursor  time.Duration // next scheduled start time on the clock

	// Current voice, nil when idle.
	buf     *pcm.Buffer
	offset  time.Duration // in-buffer offset the voice started from
	startAt time.Duration // effective start time on the clock
	timer   Timer         // natural-completion timer
}

// NewEngine creates an Engine rendering to sink with time from clock.
func NewEngine(sink Sink, clock Clock) *Engine {
	return &Engine{clock: clock, sink: sink}
}

// Play cues buf starting at the in-buffer offset. done fires on natural
// completion; pausing or stopping detaches it first, so it never fires for
// an interrupted voice.
func (e *Engine) Play(buf *pcm.Buffer, offset time.Duration, done func()) error {
	if !e.started {
		if err := e.sink.Start(); err != nil {
			return err
		}
		e.started = true
	}

	now := e.clock.Now()
	start := e.cursor
	if start < now {
		start = now
	}
	remaining := buf.Duration() - offset
	if remaining < 0 {
		remaining = 0
	}

	if err := e.sink.Cue(buf, offset, start); err != nil {
		return err
	}

	e.buf = buf
	e.offset = offset
	e.startAt = start
	e.cursor = start + remaining
	e.timer = e.clock.AfterFunc(e.cursor-now, func() {
		done()
	})
	return nil
}

// Pause stops the current voice and returns the in-buffer offset to resume
// from. The completion callback is detached before the sink is cut, so the
// interruption is never mistaken for natural completion.
func (e *Engine) Pause() time.Duration {
	if e.buf == nil {
		return 0
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	elapsed := e.clock.Now() - e.startAt
	if elapsed < 0 {
		elapsed = 0
	}
	off := e.offset + elapsed
	if d := e.buf.Duration(); off > d {
		off = d
	}

	e.sink.Cut()
	e.buf = nil
	return off
}

// Resume cues buf from offset with the scheduling cursor reset to now.
func (e *Engine) Resume(buf *pcm.Buffer, offset time.Duration, done func()) error {
	e.cursor = e.clock.Now()
	return e.Play(buf, offset, done)
}

// Elapsed returns the in-buffer offset of the current voice right now.
func (e *Engine) Elapsed() time.Duration {
	if e.buf == nil {
		return 0
	}
	elapsed := e.clock.Now() - e.startAt
	if elapsed < 0 {
		elapsed = 0
	}
	off := e.offset + elapsed
	if d := e.buf.Duration(); off > d {
		off = d
	}
	return off
}

// Finish clears the current voice after its completion callback fired.
func (e *Engine) Finish() {
	e.timer = nil
	e.buf = nil
}

// Stop is the hard reset: it cancels the completion timer, cuts the sink,
// and rewinds the scheduling cursor.
func (e *Engine) Stop() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.sink.Cut()
	e.buf = nil
	e.cursor = 0
}
