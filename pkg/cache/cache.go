// Package cache stores synthesized segment audio so a chapter is narrated
// at most once per voice. Payloads are the encoded segments exactly as the
// generator produced them; the playback layer decodes on release.
//
// Keys are hierarchical (document, section, voice, segment index), so a
// whole section or document can be evicted by prefix.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMiss is returned by Get when no audio is cached under the key.
var ErrMiss = errors.New("cache: miss")

// Key identifies one synthesized segment.
type Key struct {
	Document string // document identifier, often a uuid
	Section  string // chapter or section within the document
	Voice    string // voice profile the audio was synthesized with
	Segment  int    // absolute segment index within the section
}

// segments returns the hierarchical path form of the key. The index is
// zero-padded so lexicographic order matches numeric order.
func (k Key) segments() []string {
	return []string{k.Document, k.Section, k.Voice, fmt.Sprintf("%08d", k.Segment)}
}

// join encodes the key with the given separator. Key parts must not
// contain the separator.
func (k Key) join(sep string) string {
	return strings.Join(k.segments(), sep)
}

func (k Key) String() string {
	return k.join("/")
}

// sectionPrefix is the encoded prefix covering every voice and segment of
// one section.
func sectionPrefix(document, section, sep string) string {
	return document + sep + section + sep
}

// Store is a segment audio cache.
type Store interface {
	// Get returns the cached payload, or ErrMiss.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Put stores the payload, overwriting any existing one.
	Put(ctx context.Context, key Key, audio []byte) error

	// Delete removes one entry. Missing entries are not an error.
	Delete(ctx context.Context, key Key) error

	// EvictSection removes every entry of one section across all voices,
	// used when the source text of a section changes.
	EvictSection(ctx context.Context, document, section string) error

	// Close releases store resources.
	Close() error
}
