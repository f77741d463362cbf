package narrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/cache"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/text"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/tts"
)

// DefaultWorkers is the synthesis concurrency when none is configured.
const DefaultWorkers = 2

// Pipeline wires chunking, synthesis, and caching in front of a playback
// session. Generation runs ahead of playback; segments are admitted as they
// finish, in whatever order the workers complete them.
type Pipeline struct {
	// Generator synthesizes chunks. Required.
	Generator tts.Generator

	// Cache, when set, is consulted before the generator and filled after
	// a successful synthesis.
	Cache cache.Store

	// Chunker splits the section text. The zero value uses defaults.
	Chunker text.Chunker

	// Voice and Speed are passed through to every synthesis request.
	Voice string
	Speed float64

	// Workers is the number of concurrent synthesis requests. Defaults to
	// DefaultWorkers.
	Workers int

	// Log defaults to slog.Default.
	Log *slog.Logger
}

type chunkJob struct {
	index int
	text  string
}

// Narrate starts a session on ctl and feeds it from the section text in r.
// It returns the session handle immediately; chunking and synthesis run in
// the background until the text is exhausted, the session is superseded, or
// a synthesis failure is reported through Session.Fail.
func (p *Pipeline) Narrate(ctx context.Context, ctl *Controller, document, section string, r io.Reader, cb Callbacks, opts StartOptions) *Session {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	sess := ctl.Start(cb, opts)
	ctx, cancel := context.WithCancel(ctx)

	jobs := make(chan chunkJob)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				audio, err := p.segmentAudio(ctx, document, section, job, log)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					sess.Fail(&GenerationError{Index: job.index, Chunk: job.text, Err: err})
					cancel()
					return
				}
				sess.AddSegment(audio, job.text, job.index)
			}
		}()
	}

	go func() {
		defer cancel()
		it := p.Chunker.Chunk(r)
		defer it.Close()

		index := 0
		for {
			chunk, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				close(jobs)
				wg.Wait()
				sess.Fail(&GenerationError{Index: index, Err: err})
				return
			}
			if index >= opts.StartIndex {
				select {
				case jobs <- chunkJob{index: index, text: chunk}:
				case <-ctx.Done():
					close(jobs)
					wg.Wait()
					return
				}
			}
			index++
		}
		close(jobs)
		wg.Wait()
		sess.SignalEndOfStream()
	}()

	return sess
}

// segmentAudio returns the encoded audio for one chunk, from cache when
// possible.
func (p *Pipeline) segmentAudio(ctx context.Context, document, section string, job chunkJob, log *slog.Logger) ([]byte, error) {
	key := cache.Key{Document: document, Section: section, Voice: p.Voice, Segment: job.index}

	if p.Cache != nil {
		audio, err := p.Cache.Get(ctx, key)
		if err == nil {
			log.Debug("cache hit", "key", key.String())
			return audio, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("cache read failed", "key", key.String(), "err", err)
		}
	}

	audio, err := p.Generator.Generate(ctx, tts.Request{
		Text:  job.text,
		Voice: p.Voice,
		Speed: p.Speed,
	})
	if err != nil {
		return nil, err
	}

	if p.Cache != nil {
		if err := p.Cache.Put(ctx, key, audio); err != nil {
			// A failed cache write costs a re-synthesis later, nothing more.
			log.Warn("cache write failed", "key", key.String(), "err", err)
		}
	}
	return audio, nil
}
