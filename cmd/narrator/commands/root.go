package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	globalConfig *Config
)

var rootCmd = &cobra.Command{
	Use:   "narrator",
	Short: "Streaming text-to-speech book narration",
	Long: `narrator reads a text file aloud with synthesized speech.

Synthesis runs ahead of playback in the background: segments are generated
concurrently, cached, and played strictly in order with no gaps. Playback
can be paused with Ctrl-C; the exact position is bookmarked and picked up
again with --resume.

Audio is streamed to stdout as raw 16-bit LE mono PCM:

  narrator speak book.txt | aplay -f S16_LE -r 24000 -c 1
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.narrator/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(speakCmd)
	rootCmd.AddCommand(bookmarksCmd)
	rootCmd.AddCommand(cacheCmd)
}

func initConfig() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	globalConfig, err = loadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
