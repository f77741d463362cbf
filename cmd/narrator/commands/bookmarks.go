package commands

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/chetangoswami/Ai-Book-Narrator/pkg/bookmark"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "Inspect and clear saved reading positions",
	RunE:  runBookmarksList,
}

var bookmarksClearCmd = &cobra.Command{
	Use:   "clear <document> <section>",
	Short: "Remove one saved position",
	Args:  cobra.ExactArgs(2),
	RunE:  runBookmarksClear,
}

func init() {
	bookmarksCmd.AddCommand(bookmarksClearCmd)
}

func openShelf() (*bookmark.Shelf, error) {
	path, err := globalConfig.bookmarksPath()
	if err != nil {
		return nil, err
	}
	return bookmark.Open(path)
}

func runBookmarksList(cmd *cobra.Command, _ []string) error {
	shelf, err := openShelf()
	if err != nil {
		return err
	}

	all := shelf.All(cmd.Context())
	if len(all) == 0 {
		fmt.Fprintln(os.Stderr, dimStyle.Render("no bookmarks"))
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SavedAt.After(all[j].SavedAt) })

	for _, r := range all {
		fmt.Printf("%s  %s\n",
			highlightStyle.Render(r.Section),
			dimStyle.Render(fmt.Sprintf("segment %d, %s, saved %s",
				r.Segment, r.Offset.Round(10*time.Millisecond), r.SavedAt.Format(time.RFC3339))))
		fmt.Printf("  %s\n", dimStyle.Render("doc "+r.Document))
		if r.Snippet != "" {
			fmt.Printf("  %q\n", r.Snippet)
		}
	}
	return nil
}

func runBookmarksClear(cmd *cobra.Command, args []string) error {
	shelf, err := openShelf()
	if err != nil {
		return err
	}
	return shelf.Remove(cmd.Context(), args[0], args[1])
}
