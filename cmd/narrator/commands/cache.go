package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the synthesized audio cache",
}

var cacheEvictCmd = &cobra.Command{
	Use:   "evict <document> <section>",
	Short: "Drop cached audio for one section",
	Long: `Drop every cached segment of one section, across all voices.

Use this after the source text of a section changed; the next narration
re-synthesizes it.`,
	Args: cobra.ExactArgs(2),
	RunE: runCacheEvict,
}

func init() {
	cacheCmd.AddCommand(cacheEvictCmd)
}

func runCacheEvict(cmd *cobra.Command, args []string) error {
	store, err := buildCache(globalConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EvictSection(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, dimStyle.Render("evicted "+args[0]+"/"+args[1]))
	return nil
}
