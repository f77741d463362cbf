// Package narrate implements the streaming playback scheduler at the heart
// of the book narrator.
//
// Audio segments are generated asynchronously and may arrive in any order;
// the scheduler admits them as they come, releases them strictly by absolute
// segment index, and plays them back-to-back on a single output with no
// audible gaps. Because generated audio carries no timestamps, sentence
// highlighting and resumable offsets are derived from estimated timing: a
// uniform characters-per-second model per segment.
//
// The package is organized around three cooperating pieces:
//
//   - Engine: owns the single audio Sink and a monotonic scheduling cursor;
//     each segment is cued to start exactly when its predecessor ends.
//   - Controller/Session: one active playback session at a time. Starting a
//     new session supersedes the previous one; callbacks and timers from a
//     superseded session are discarded by an epoch check.
//   - Pipeline: composes a text stream, a generation backend, and a cache
//     into a running session.
//
// All scheduling state is guarded by a single lock; timers re-check the
// session epoch before touching anything, so cancellation never needs to
// chase in-flight work.
package narrate
