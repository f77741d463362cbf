package narrate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/cache"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/tts"
)

// stubGenerator synthesizes short silent segments and counts requests.
type stubGenerator struct {
	t    *testing.T
	mu   sync.Mutex
	reqs []string
	fail map[string]error
}

func (g *stubGenerator) Generate(_ context.Context, req tts.Request) ([]byte, error) {
	g.mu.Lock()
	g.reqs = append(g.reqs, req.Text)
	g.mu.Unlock()
	if err, ok := g.fail[req.Text]; ok {
		return nil, err
	}
	return encodeSegment(g.t, 10*time.Millisecond), nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

func waitFor(t *testing.T, what string, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestPipelineNarratesToEnd(t *testing.T) {
	gen := &stubGenerator{t: t}
	store := cache.NewMemory()
	sink := &recordSink{}
	ctl := NewController(sink)

	p := &Pipeline{
		Generator: gen,
		Cache:     store,
		Voice:     "nova",
	}

	ended := make(chan struct{})
	p.Narrate(context.Background(), ctl, "doc", "ch-1",
		strings.NewReader("One. Two. Three. Four."),
		Callbacks{OnSessionEnded: func() { close(ended) }},
		StartOptions{})

	waitFor(t, "session end", ended)

	cues := sink.cueList()
	if len(cues) == 0 {
		t.Fatal("nothing played")
	}
	if gen.calls() != len(cues) {
		t.Fatalf("generated %d segments, played %d", gen.calls(), len(cues))
	}

	// A second narration of the same section is served from cache.
	before := gen.calls()
	ended2 := make(chan struct{})
	ctl2 := NewController(&recordSink{})
	p.Narrate(context.Background(), ctl2, "doc", "ch-1",
		strings.NewReader("One. Two. Three. Four."),
		Callbacks{OnSessionEnded: func() { close(ended2) }},
		StartOptions{})
	waitFor(t, "cached session end", ended2)
	if gen.calls() != before {
		t.Fatalf("cache miss on identical section: %d extra syntheses", gen.calls()-before)
	}
}

func TestPipelineGenerationFailure(t *testing.T) {
	boom := errors.New("synthesis backend down")
	gen := &stubGenerator{t: t, fail: map[string]error{" Two. Three. Four.": boom}}
	ctl := NewController(&recordSink{})

	p := &Pipeline{Generator: gen, Workers: 1}

	failed := make(chan error, 1)
	p.Narrate(context.Background(), ctl, "doc", "ch-1",
		strings.NewReader("One. Two. Three. Four."),
		Callbacks{OnError: func(err error) { failed <- err }},
		StartOptions{})

	select {
	case err := <-failed:
		var ge *GenerationError
		if !errors.As(err, &ge) {
			t.Fatalf("err = %v, want *GenerationError", err)
		}
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, does not wrap the backend error", err)
		}
		if ge.Index != 1 {
			t.Fatalf("failed index = %d, want 1", ge.Index)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for generation failure")
	}
}

func TestPipelineResumeSkipsEarlierChunks(t *testing.T) {
	gen := &stubGenerator{t: t}
	ctl := NewController(&recordSink{})

	p := &Pipeline{Generator: gen, Workers: 1}

	ended := make(chan struct{})
	p.Narrate(context.Background(), ctl, "doc", "ch-1",
		strings.NewReader("One. Two. Three."),
		Callbacks{OnSessionEnded: func() { close(ended) }},
		StartOptions{StartIndex: 1})
	waitFor(t, "resumed session end", ended)

	g := gen
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, req := range g.reqs {
		if req == "One." {
			t.Fatal("chunk before the start index was synthesized")
		}
	}
	if len(g.reqs) == 0 {
		t.Fatal("no chunks synthesized past the start index")
	}
}
