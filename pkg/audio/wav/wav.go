// Package wav decodes and encodes RIFF/WAVE payloads carrying the
// narrator's fixed PCM representation (mono, 16-bit linear).
//
// Decode is a pure function of its input bytes: every segment payload is
// self-contained and can be decoded independently, in any order.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/audio/pcm"
)

// DecodeError reports a malformed WAV payload. A DecodeError means the
// upstream generator produced corrupted audio; the payload cannot be
// repaired and retrying the decode is pointless.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "wav: decode: " + e.Reason
}

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

const (
	riffHeaderLen = 12
	chunkHeadLen  = 8
	fmtChunkLen   = 16
	formatTagPCM  = 1
)

// Decode parses a RIFF/WAVE payload into a decoded PCM buffer.
// Only uncompressed mono 16-bit PCM is accepted; anything else
// returns a *DecodeError.
func Decode(encoded []byte) (*pcm.Buffer, error) {
	if len(encoded) < riffHeaderLen {
		return nil, decodeErrorf("payload too short (%d bytes)", len(encoded))
	}
	if string(encoded[0:4]) != "RIFF" || string(encoded[8:12]) != "WAVE" {
		return nil, decodeErrorf("not a RIFF/WAVE payload")
	}

	var (
		format  pcm.Format
		haveFmt bool
	)

	// Walk the chunk list. The fmt chunk must precede data.
	rest := encoded[riffHeaderLen:]
	for len(rest) > 0 {
		if len(rest) < chunkHeadLen {
			return nil, decodeErrorf("truncated chunk header")
		}
		id := string(rest[0:4])
		size := binary.LittleEndian.Uint32(rest[4:8])
		body := rest[chunkHeadLen:]
		if uint32(len(body)) < size {
			return nil, decodeErrorf("chunk %q truncated: header says %d bytes, %d remain", id, size, len(body))
		}
		body = body[:size]

		switch id {
		case "fmt ":
			f, err := parseFmt(body)
			if err != nil {
				return nil, err
			}
			format = f
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, decodeErrorf("data chunk before fmt chunk")
			}
			if size%2 != 0 {
				return nil, decodeErrorf("odd data chunk length %d", size)
			}
			return format.BufferFromLE16(body), nil
		}

		// Chunks are word-aligned; skip the pad byte on odd sizes.
		skip := int(size)
		if size%2 != 0 {
			skip++
		}
		if skip+chunkHeadLen > len(rest) {
			rest = nil
		} else {
			rest = rest[chunkHeadLen+skip:]
		}
	}
	return nil, decodeErrorf("no data chunk")
}

func parseFmt(body []byte) (pcm.Format, error) {
	if len(body) < fmtChunkLen {
		return 0, decodeErrorf("fmt chunk too short (%d bytes)", len(body))
	}
	tag := binary.LittleEndian.Uint16(body[0:2])
	channels := binary.LittleEndian.Uint16(body[2:4])
	rate := binary.LittleEndian.Uint32(body[4:8])
	depth := binary.LittleEndian.Uint16(body[14:16])

	if tag != formatTagPCM {
		return 0, decodeErrorf("unsupported format tag %d", tag)
	}
	if channels != 1 {
		return 0, decodeErrorf("unsupported channel count %d", channels)
	}
	if depth != 16 {
		return 0, decodeErrorf("unsupported bit depth %d", depth)
	}
	switch rate {
	case 16000:
		return pcm.L16Mono16K, nil
	case 22050:
		return pcm.L16Mono22K, nil
	case 24000:
		return pcm.L16Mono24K, nil
	case 48000:
		return pcm.L16Mono48K, nil
	}
	return 0, decodeErrorf("unsupported sample rate %d", rate)
}

// Encode writes buf as a canonical RIFF/WAVE payload: a 44-byte header
// followed by little-endian 16-bit samples.
func Encode(w io.Writer, buf *pcm.Buffer) error {
	dataLen := buf.Len() * 2
	if _, err := w.Write(Header(buf.Format(), dataLen)); err != nil {
		return err
	}
	_, err := buf.WriteLE16(w, 0)
	return err
}

// Header builds a canonical 44-byte WAV header for a mono 16-bit data
// chunk of the given byte length.
func Header(f pcm.Format, dataLen int) []byte {
	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], fmtChunkLen)
	binary.LittleEndian.PutUint16(h[20:22], formatTagPCM)
	binary.LittleEndian.PutUint16(h[22:24], 1) // mono
	binary.LittleEndian.PutUint32(h[24:28], uint32(f.SampleRate()))
	binary.LittleEndian.PutUint32(h[28:32], uint32(f.BytesRate()))
	binary.LittleEndian.PutUint16(h[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(h[34:36], 16) // bit depth
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataLen))
	return h
}
