// Package text splits streamed book text into generation-sized chunks.
//
// A chunk is a run of whole sentences. The first chunk is cut at the first
// sentence boundary so synthesis can start as soon as one sentence exists;
// later chunks are cut at the last boundary inside the rune budget, which
// keeps per-request overhead low once playback is underway.
package text

import (
	"bytes"
	"io"
	"sync"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxRunes bounds a chunk when no limit is configured.
const DefaultMaxRunes = 256

// Chunker configures chunking of a text stream.
type Chunker struct {
	// MaxRunes is the maximum number of runes per chunk. Text with no
	// sentence boundary within the budget is cut at the budget. Defaults
	// to DefaultMaxRunes.
	MaxRunes int
}

// Chunk consumes r in the background and returns an iterator over chunks.
// Next blocks until a chunk is ready and returns io.EOF after the last one.
func (c Chunker) Chunk(r io.Reader) *Iterator {
	it := &Iterator{
		maxRunes:    c.MaxRunes,
		writeNotify: make(chan struct{}, 1),
		buf:         bytes.NewBuffer(nil),
	}
	if it.maxRunes <= 0 {
		it.maxRunes = DefaultMaxRunes
	}

	go func() {
		defer close(it.writeNotify)
		if _, err := io.Copy(it, r); err != nil {
			it.closeWithError(err)
		}
	}()
	return it
}

// Iterator yields chunks as the underlying stream arrives.
type Iterator struct {
	maxRunes int

	mu          sync.Mutex
	closed      bool
	firstOut    bool
	err         error
	writeNotify chan struct{}
	buf         *bytes.Buffer
}

// Write feeds stream bytes to the iterator. It is the io.Copy target of the
// background reader and may be used directly for push-style sources.
func (it *Iterator) Write(p []byte) (int, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return 0, io.ErrClosedPipe
	}
	n, err := it.buf.Write(p)
	if err != nil {
		return n, err
	}
	select {
	case it.writeNotify <- struct{}{}:
	default:
	}
	return n, nil
}

// window returns the buffered text up to the last complete rune, truncated
// to the rune budget. full reports whether the budget was hit.
func (it *Iterator) window(move bool) (b []byte, full bool) {
	if move {
		defer func() {
			it.buf.Next(len(b))
		}()
	}
	b = it.buf.Bytes()
	b = b[:lastRuneIndex(b)]
	if rs := []rune(string(b)); len(rs) >= it.maxRunes {
		b = []byte(string(rs[:it.maxRunes]))
		full = true
	}
	return
}

// Next returns the next chunk. It blocks until enough text has arrived to
// cut one, returns io.EOF once the stream is drained, or the stream error.
func (it *Iterator) Next() (string, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	defer func() {
		it.firstOut = true
	}()

	eof := false

	for {
		if it.closed {
			if it.err != nil {
				return "", it.err
			}
			return "", io.EOF
		}
		if eof {
			if it.buf.Len() > 0 {
				b, _ := it.window(true)
				return string(b), nil
			}
			return "", io.EOF
		}
		if b, full := it.window(false); len(b) > 0 {
			var idx int
			if it.firstOut {
				idx = lastBoundaryIndex(b)
			} else {
				idx = firstBoundaryIndex(b)
			}
			switch {
			case idx > 0:
				it.buf.Next(idx)
				return string(b[:idx]), nil
			case idx == 0 && full:
				it.buf.Next(len(b))
				return string(b), nil
			}
		}
		it.mu.Unlock()
		_, ok := <-it.writeNotify
		eof = !ok
		it.mu.Lock()
	}
}

// Close abandons the iterator; pending and future Next calls fail.
func (it *Iterator) Close() {
	it.closeWithError(nil)
}

func (it *Iterator) closeWithError(err error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.closed = true
	it.err = err
	it.buf.Reset()
}

// lastRuneIndex returns the length of the longest prefix of b that ends on
// a complete rune.
func lastRuneIndex(b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < utf8.RuneSelf {
			return i + 1
		}
		if !utf8.RuneStart(b[i]) {
			continue
		}
		r, sz := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError {
			return i + sz
		}
		return i
	}
	return 0
}

// isBoundary reports whether r ends a sentence for chunking purposes.
// The dot is excluded between digits so "9.5" never splits.
func isBoundary(r, prev, next rune) bool {
	switch r {
	case '.', ':':
		return !(unicode.IsNumber(prev) && unicode.IsNumber(next))
	case '。', '？', '！', '…', '?', '!', ';', '；', '\r', '\n':
		return true
	}
	return false
}

// firstBoundaryIndex returns the byte index just past the first sentence
// boundary in b, or 0 when b has none.
func firstBoundaryIndex(b []byte) int {
	rs := []rune(string(b))
	n := 0
	for i, r := range rs {
		n += utf8.RuneLen(r)
		prev := '0'
		if i > 0 {
			prev = rs[i-1]
		}
		next := '0'
		if i < len(rs)-1 {
			next = rs[i+1]
		}
		if isBoundary(r, prev, next) {
			return n
		}
	}
	return 0
}

// lastBoundaryIndex returns the byte index just past the last sentence
// boundary in b, or 0 when b has none.
func lastBoundaryIndex(b []byte) int {
	rs := []rune(string(b))
	n := 0
	for i := len(rs) - 1; i >= 0; i-- {
		r := rs[i]
		prev := '0'
		if i > 0 {
			prev = rs[i-1]
		}
		next := '0'
		if i < len(rs)-1 {
			next = rs[i+1]
			n += utf8.RuneLen(next)
		}
		if isBoundary(r, prev, next) {
			return len(b) - n
		}
	}
	return 0
}
