package narrate

import (
	"log/slog"
	"sync"
	"time"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/audio/pcm"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/audio/wav"
)

// Decoder turns an encoded segment payload into a decoded buffer.
// The default is wav.Decode.
type Decoder func(encoded []byte) (*pcm.Buffer, error)

// Callbacks are the session-level event hooks surfaced to the UI layer.
// Any of them may be nil. They are invoked without internal locks held, so
// a callback may safely call back into the session.
type Callbacks struct {
	// OnFirstAudioReady fires when the first segment starts playing.
	OnFirstAudioReady func()

	// OnSessionEnded fires when the last segment finished playing after
	// end-of-stream was signaled.
	OnSessionEnded func()

	// OnSentenceChanged fires with the absolute sentence index (counted
	// across all segments of the session) estimated to be currently spoken.
	OnSentenceChanged func(index int)

	// OnError fires when the session aborts on a fatal error (decode
	// failure, generation failure, sink failure). The session is already
	// torn down when it fires.
	OnError func(err error)
}

// StartOptions configure where a session begins, typically restored from a
// bookmark.
type StartOptions struct {
	// StartIndex is the absolute index of the first segment to play.
	StartIndex int

	// ResumeOffset is the in-segment offset the first segment resumes from.
	ResumeOffset time.Duration
}

// PlaybackState is a snapshot of the playing (or paused) position. It is
// only meaningful while a segment is active; see Session.Snapshot.
type PlaybackState struct {
	SegmentIndex int
	Offset       time.Duration
	Text         string
}

// Controller orchestrates playback sessions. Exactly one session is active
// at a time; starting a new one supersedes and tears down the previous one,
// and all callbacks or timers belonging to a superseded session become
// silent no-ops.
type Controller struct {
	mu     sync.Mutex
	clock  Clock
	engine *Engine
	decode Decoder
	log    *slog.Logger

	epoch uint64
	sess  *session
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the playback clock. Tests use a fake clock to
// drive timers deterministically.
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithDecoder substitutes the segment decoder.
func WithDecoder(d Decoder) Option {
	return func(c *Controller) { c.decode = d }
}

// WithLogger sets the logger for scheduler debug events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates a Controller rendering to sink.
func NewController(sink Sink, opts ...Option) *Controller {
	c := &Controller{
		decode: wav.Decode,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.clock == nil {
		c.clock = NewSystemClock()
	}
	c.engine = NewEngine(sink, c.clock)
	return c
}

// session holds the state of one playback attempt. All fields are guarded
// by the Controller's lock.
type session struct {
	cb Callbacks

	next    int              // next index to release; only ever increases
	pending map[int]*segment // admitted, not yet released

	resumeOffset time.Duration // applied to the first released segment
	started      bool          // a segment has been released at least once
	firstFired   bool          // OnFirstAudioReady already delivered

	playing bool // a segment is currently playing or being decoded
	paused  bool
	eos     bool

	cur             *voice // currently playing or paused segment
	sentencesBefore int    // sentence units completed in earlier segments
	highlights      []Timer
	failure         error // deferred abort, applied once playback drains
}

// segment is generated audio awaiting release, keyed by absolute index.
type segment struct {
	index   int
	text    string
	encoded []byte
}

// voice is the segment currently owned by the engine. The decoded buffer
// is retained so pause/resume replays it without re-decoding.
type voice struct {
	index int
	text  string
	units []string
	buf   *pcm.Buffer
	from  time.Duration // offset playback last (re)started from
}

// Session is the exclusive handle to one playback session. All methods are
// no-ops once the session has been superseded, stopped, or ended.
type Session struct {
	c     *Controller
	epoch uint64
}

// Start tears down any active session and begins a fresh one.
func (c *Controller) Start(cb Callbacks, opts StartOptions) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardownLocked()
	c.sess = &session{
		cb:           cb,
		next:         opts.StartIndex,
		pending:      make(map[int]*segment),
		resumeOffset: opts.ResumeOffset,
	}
	c.log.Debug("session started", "start_index", opts.StartIndex, "resume_offset", opts.ResumeOffset)
	return &Session{c: c, epoch: c.epoch}
}

// Stop tears down the active session, whichever handle owns it.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// teardownLocked hard-stops playback, cancels all timers, drops all queued
// segments, and bumps the epoch so stale handles and timers become no-ops.
func (c *Controller) teardownLocked() {
	c.epoch++
	c.engine.Stop()
	if s := c.sess; s != nil {
		for _, t := range s.highlights {
			t.Stop()
		}
		c.sess = nil
	}
}

// stale reports whether the handle no longer owns the active session.
// Callers must hold c.mu.
func (s *Session) stale() bool {
	return s.epoch != s.c.epoch || s.c.sess == nil
}

// AddSegment admits generated audio tagged with its absolute index.
// Segments may arrive in any order; playback still proceeds strictly by
// index. Re-admitting an index overwrites the earlier payload unless it
// already played, in which case the call has no effect. Results arriving
// after the session was superseded are silently discarded.
func (s *Session) AddSegment(encoded []byte, text string, index int) {
	c := s.c
	c.mu.Lock()
	if s.stale() {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	if index < sess.next {
		// Already released to playback.
		c.mu.Unlock()
		return
	}
	sess.pending[index] = &segment{index: index, text: text, encoded: encoded}
	c.log.Debug("segment admitted", "index", index, "pending", len(sess.pending))

	var calls []func()
	c.tryAdvanceLocked(&calls)
	c.mu.Unlock()
	run(calls)
}

// SignalEndOfStream marks that no further segments will arrive. The session
// ends once everything already admitted has played; if nothing is pending
// or playing, it ends immediately.
func (s *Session) SignalEndOfStream() {
	c := s.c
	c.mu.Lock()
	if s.stale() {
		c.mu.Unlock()
		return
	}
	c.sess.eos = true

	var calls []func()
	c.tryAdvanceLocked(&calls)
	c.mu.Unlock()
	run(calls)
}

// Fail aborts the session with err. If a segment is currently audible it
// finishes first, so the stream stops at a segment boundary instead of
// gapping mid-word; the session then tears down and OnError fires.
func (s *Session) Fail(err error) {
	c := s.c
	c.mu.Lock()
	if s.stale() {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	if sess.playing || sess.paused {
		sess.failure = err
		c.mu.Unlock()
		return
	}
	cb := sess.cb.OnError
	c.teardownLocked()
	c.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// Pause suspends playback, capturing the exact in-segment offset. Pending
// sentence-highlight timers are cancelled.
func (s *Session) Pause() {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.stale() {
		return
	}
	sess := c.sess
	if !sess.playing || sess.cur == nil {
		return
	}
	sess.cur.from = c.engine.Pause()
	for _, t := range sess.highlights {
		t.Stop()
	}
	sess.highlights = nil
	sess.playing = false
	sess.paused = true
	c.log.Debug("paused", "index", sess.cur.index, "offset", sess.cur.from)
}

// Resume continues playback of the paused segment from the captured offset.
// The retained decoded buffer is replayed; nothing is decoded again.
func (s *Session) Resume() {
	c := s.c
	c.mu.Lock()
	if s.stale() {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	if !sess.paused || sess.cur == nil {
		c.mu.Unlock()
		return
	}
	sess.paused = false
	sess.playing = true

	var calls []func()
	c.playVoiceLocked(sess.cur, true, &calls)
	c.log.Debug("resumed", "index", sess.cur.index, "offset", sess.cur.from)
	c.mu.Unlock()
	run(calls)
}

// Stop tears down this session if it is still the active one.
func (s *Session) Stop() {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.stale() {
		return
	}
	c.teardownLocked()
}

// Snapshot returns the current playback position. It reports false when no
// segment is playing or paused mid-segment (including before the first
// segment and after the session ended).
func (s *Session) Snapshot() (PlaybackState, bool) {
	c := s.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.stale() {
		return PlaybackState{}, false
	}
	sess := c.sess
	if sess.cur == nil {
		return PlaybackState{}, false
	}
	off := sess.cur.from
	if sess.playing {
		off = c.engine.Elapsed()
	}
	return PlaybackState{
		SegmentIndex: sess.cur.index,
		Offset:       off,
		Text:         sess.cur.text,
	}, true
}

// tryAdvanceLocked releases the next in-order segment if one is admitted
// and nothing is playing, or ends the session when the stream is drained
// after end-of-stream. A gap (the next index not yet admitted) leaves the
// session idle until the next admit or signal: generation may run
// arbitrarily ahead or behind, playback only proceeds in index order.
func (c *Controller) tryAdvanceLocked(calls *[]func()) {
	s := c.sess
	if s == nil || s.playing || s.paused {
		return
	}

	seg, ok := s.pending[s.next]
	if !ok {
		if s.eos && len(s.pending) == 0 {
			cb := s.cb.OnSessionEnded
			c.log.Debug("session ended", "sentences", s.sentencesBefore)
			c.teardownLocked()
			if cb != nil {
				*calls = append(*calls, func() { cb() })
			}
		}
		return
	}

	buf, err := c.decode(seg.encoded)
	if err != nil {
		// Corrupted audio cannot be repaired; abort rather than play
		// garbage or skip ahead.
		cb := s.cb.OnError
		c.log.Debug("decode failed", "index", seg.index, "err", err)
		c.teardownLocked()
		if cb != nil {
			*calls = append(*calls, func() { cb(err) })
		}
		return
	}

	delete(s.pending, s.next)
	s.next++

	from := time.Duration(0)
	if !s.started {
		from = s.resumeOffset
		s.started = true
	}

	s.cur = &voice{
		index: seg.index,
		text:  seg.text,
		units: SplitSentences(seg.text),
		buf:   buf,
		from:  from,
	}
	s.playing = true

	c.playVoiceLocked(s.cur, false, calls)
	if c.sess != s {
		// Cueing failed and tore the session down.
		return
	}
	if !s.firstFired {
		s.firstFired = true
		if cb := s.cb.OnFirstAudioReady; cb != nil {
			*calls = append(*calls, func() { cb() })
		}
	}
}

// playVoiceLocked cues v on the engine and schedules its sentence cues.
func (c *Controller) playVoiceLocked(v *voice, resuming bool, calls *[]func()) {
	s := c.sess
	epoch := c.epoch

	var err error
	if resuming {
		err = c.engine.Resume(v.buf, v.from, func() { c.onComplete(epoch) })
	} else {
		err = c.engine.Play(v.buf, v.from, func() { c.onComplete(epoch) })
	}
	if err != nil {
		cb := s.cb.OnError
		c.teardownLocked()
		if cb != nil {
			failed := err
			*calls = append(*calls, func() { cb(failed) })
		}
		return
	}
	c.log.Debug("segment playing", "index", v.index, "from", v.from, "duration", v.buf.Duration())

	current, cues := planCues(v.units, v.buf.Duration(), v.from)
	if current < 0 {
		// Degenerate segment: keep playing, skip highlighting.
		return
	}

	change := s.cb.OnSentenceChanged
	abs := s.sentencesBefore + current
	if change != nil {
		*calls = append(*calls, func() { change(abs) })
	}
	for _, cu := range cues {
		idx := s.sentencesBefore + cu.unit
		t := c.clock.AfterFunc(cu.delay, func() { c.onHighlight(epoch, idx) })
		s.highlights = append(s.highlights, t)
	}
}

// onComplete is the engine's natural-completion callback for one segment.
func (c *Controller) onComplete(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.sess == nil {
		c.mu.Unlock()
		return
	}
	s := c.sess
	c.engine.Finish()
	for _, t := range s.highlights {
		t.Stop()
	}
	s.highlights = nil
	if s.cur != nil {
		// Sentence counts are attributed only after the segment that
		// contributed them actually finished playing, so absolute
		// indices track audible playback rather than arrival order.
		s.sentencesBefore += len(s.cur.units)
	}
	s.cur = nil
	s.playing = false

	if s.failure != nil {
		err := s.failure
		cb := s.cb.OnError
		c.teardownLocked()
		c.mu.Unlock()
		if cb != nil {
			cb(err)
		}
		return
	}

	var calls []func()
	c.tryAdvanceLocked(&calls)
	c.mu.Unlock()
	run(calls)
}

// onHighlight is the sentence-boundary timer callback.
func (c *Controller) onHighlight(epoch uint64, index int) {
	c.mu.Lock()
	if epoch != c.epoch || c.sess == nil {
		c.mu.Unlock()
		return
	}
	cb := c.sess.cb.OnSentenceChanged
	c.mu.Unlock()
	if cb != nil {
		cb(index)
	}
}

// run invokes collected callbacks outside the lock.
func run(calls []func()) {
	for _, f := range calls {
		f()
	}
}
