// Package pcm provides types for working with PCM (Pulse Code Modulation)
// audio data in the narrator's fixed decoded representation.
//
// All decoded audio in this project is mono 16-bit linear PCM normalized to
// float samples in [-1, 1). The package defines:
//   - Format: sample rate configuration with duration/byte/sample math
//   - Buffer: a decoded audio buffer holding normalized samples
//
// Example usage:
//
//	format := pcm.L16Mono24K
//
//	// Bytes needed for 20ms of audio.
//	n := format.BytesInDuration(20 * time.Millisecond)
//
//	// Decode raw little-endian 16-bit samples into a Buffer.
//	buf := format.BufferFromLE16(raw)
//	d := buf.Duration()
package pcm
