package pcm

import (
	"encoding/binary"
	"io"
	"time"
)

// Buffer is a decoded audio buffer: mono samples normalized to [-1, 1).
// A Buffer is immutable once created; it may be scheduled for playback
// multiple times (for example when resuming a paused segment).
type Buffer struct {
	samples []float32
	format  Format
}

// BufferFromLE16 decodes raw little-endian 16-bit samples into a Buffer.
// A trailing odd byte is ignored.
func (f Format) BufferFromLE16(raw []byte) *Buffer {
	n := len(raw) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}
	return &Buffer{samples: samples, format: f}
}

// BufferFromSamples wraps normalized samples in a Buffer.
// The slice is retained, not copied.
func (f Format) BufferFromSamples(samples []float32) *Buffer {
	return &Buffer{samples: samples, format: f}
}

// Format returns the audio format of this buffer.
func (b *Buffer) Format() Format {
	return b.format
}

// Len returns the number of samples in the buffer.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Duration returns the playback duration of the buffer:
// sample count divided by sample rate.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(len(b.samples)) * time.Second / time.Duration(b.format.SampleRate())
}

// Samples returns the underlying normalized samples.
// The caller must not modify the returned slice.
func (b *Buffer) Samples() []float32 {
	return b.samples
}

// SampleAtOffset returns the index of the sample at the given time offset,
// clamped to the buffer bounds.
func (b *Buffer) SampleAtOffset(off time.Duration) int {
	if off <= 0 {
		return 0
	}
	i := int(b.format.SamplesInDuration(off))
	if i > len(b.samples) {
		i = len(b.samples)
	}
	return i
}

// WriteLE16 writes the buffer from the given sample index onward as
// little-endian 16-bit PCM bytes. Samples are clipped to the int16 range.
func (b *Buffer) WriteLE16(w io.Writer, from int) (int64, error) {
	if from < 0 {
		from = 0
	}
	if from > len(b.samples) {
		from = len(b.samples)
	}
	out := make([]byte, (len(b.samples)-from)*2)
	for i, s := range b.samples[from:] {
		v := s * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:i*2+2], uint16(int16(v)))
	}
	n, err := w.Write(out)
	return int64(n), err
}
