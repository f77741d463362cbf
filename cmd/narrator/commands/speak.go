package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/bookmark"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/cache"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/narrate"
	"github.com/chetangoswami/Ai-Book-Narrator/pkg/text"
)

var (
	speakSection string
	speakVoice   string
	speakSpeed   float64
	speakResume  bool
	speakNoCache bool
	speakWorkers int
)

var speakCmd = &cobra.Command{
	Use:   "speak <file>",
	Short: "Narrate a text file",
	Long: `Narrate a text file with synthesized speech.

The file is split into sentence-sized chunks, synthesized concurrently, and
played back strictly in order. The sentence currently being spoken is shown
on stderr. Ctrl-C pauses, bookmarks the exact position, and exits; run again
with --resume to continue from it. Pass "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpeak,
}

func init() {
	speakCmd.Flags().StringVar(&speakSection, "section", "", "section name for caching and bookmarks (default: file name)")
	speakCmd.Flags().StringVar(&speakVoice, "voice", "", "voice profile (default from config)")
	speakCmd.Flags().Float64Var(&speakSpeed, "speed", 0, "speaking rate around 1.0 (default from config)")
	speakCmd.Flags().BoolVar(&speakResume, "resume", false, "resume from the saved bookmark")
	speakCmd.Flags().BoolVar(&speakNoCache, "no-cache", false, "bypass the audio cache")
	speakCmd.Flags().IntVar(&speakWorkers, "workers", 0, "concurrent synthesis requests")
}

var (
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg := globalConfig

	source, document, section, err := readSource(args[0])
	if err != nil {
		return err
	}
	if speakSection != "" {
		section = speakSection
	}

	voice := speakVoice
	if voice == "" {
		voice = cfg.Voice
	}
	speed := speakSpeed
	if speed == 0 {
		speed = cfg.Speed
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	var store cache.Store
	if !speakNoCache {
		store, err = buildCache(cfg)
		if err != nil {
			// Narration works without a cache, it just synthesizes every run.
			slog.Warn("cache unavailable", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	shelfPath, err := cfg.bookmarksPath()
	if err != nil {
		return err
	}
	shelf, err := bookmark.Open(shelfPath)
	if err != nil {
		return err
	}

	var opts narrate.StartOptions
	if speakResume {
		rec, err := shelf.Get(cmd.Context(), document, section)
		switch {
		case err == nil:
			opts.StartIndex = rec.Segment
			opts.ResumeOffset = rec.Offset
			fmt.Fprintln(os.Stderr, dimStyle.Render(
				fmt.Sprintf("resuming at segment %d (%s)", rec.Segment, rec.Offset.Round(10*time.Millisecond))))
		case errors.Is(err, bookmark.ErrNotFound):
			fmt.Fprintln(os.Stderr, dimStyle.Render("no bookmark, starting from the top"))
		default:
			return err
		}
	}

	// The display needs every sentence up front; the pipeline re-chunks the
	// same text identically for synthesis. Session sentence indices count
	// from the first played segment, so a resumed session needs the
	// sentence count of the skipped chunks as a base.
	units, perChunk := sentenceUnits(source)
	base := 0
	for i := 0; i < opts.StartIndex && i < len(perChunk); i++ {
		base += perChunk[i]
	}

	clock := narrate.NewSystemClock()
	sink := narrate.NewWriterSink(os.Stdout, clock)
	defer sink.Close()
	ctl := narrate.NewController(sink, narrate.WithClock(clock), narrate.WithLogger(slog.Default()))

	done := make(chan struct{})
	failed := make(chan error, 1)
	cb := narrate.Callbacks{
		OnFirstAudioReady: func() {
			fmt.Fprintln(os.Stderr, dimStyle.Render("playing"))
		},
		OnSentenceChanged: func(i int) {
			if i := base + i; i >= 0 && i < len(units) {
				fmt.Fprintln(os.Stderr, highlightStyle.Render("▸ "+snippet(units[i], 100)))
			}
		},
		OnSessionEnded: func() { close(done) },
		OnError:        func(err error) { failed <- err },
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := &narrate.Pipeline{
		Generator: gen,
		Cache:     store,
		Chunker:   text.Chunker{},
		Voice:     voice,
		Speed:     speed,
		Workers:   speakWorkers,
		Log:       slog.Default(),
	}
	sess := p.Narrate(ctx, ctl, document, section, strings.NewReader(source), cb, opts)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-done:
		// Finished the section; a stale bookmark would resume mid-text.
		if err := shelf.Remove(ctx, document, section); err != nil {
			slog.Warn("clear bookmark", "err", err)
		}
		return nil
	case err := <-failed:
		return err
	case <-sig:
		sess.Pause()
		if st, ok := sess.Snapshot(); ok {
			rec := bookmark.Record{
				Document: document,
				Section:  section,
				Segment:  st.SegmentIndex,
				Offset:   st.Offset,
				Snippet:  snippet(st.Text, 80),
			}
			if err := shelf.Set(ctx, rec); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, dimStyle.Render(
				fmt.Sprintf("bookmarked segment %d (%s)", st.SegmentIndex, st.Offset.Round(10*time.Millisecond))))
		}
		sess.Stop()
		return nil
	}
}

// readSource loads the text and derives stable document and section
// identifiers from its location.
func readSource(path string) (source, document, section string, err error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", "", err
		}
		// Stdin has no stable identity; cache by content instead.
		id := uuid.NewSHA1(uuid.NameSpaceOID, data)
		return string(data), id.String(), "stdin", nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", "", err
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs))
	return string(data), id.String(), filepath.Base(path), nil
}

// sentenceUnits computes the full sentence list alongside the number of
// sentences contributed by each chunk.
func sentenceUnits(source string) (units []string, perChunk []int) {
	it := text.Chunker{}.Chunk(strings.NewReader(source))
	defer it.Close()
	for {
		chunk, err := it.Next()
		if err != nil {
			return units, perChunk
		}
		u := narrate.SplitSentences(chunk)
		units = append(units, u...)
		perChunk = append(perChunk, len(u))
	}
}
