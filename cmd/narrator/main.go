// Package main provides the narrator CLI tool.
//
// Usage:
//
//	narrator [flags] <command> [args]
//
// Commands:
//
//	speak     - Narrate a text file with synthesized speech
//	bookmarks - Inspect and clear saved reading positions
//	cache     - Manage the synthesized audio cache
//
// Configuration:
//
//	The CLI reads ~/.narrator/config.yaml. The speak command streams raw
//	16-bit LE mono PCM to stdout, ready for piping into a player:
//
//	  narrator speak book.txt | aplay -f S16_LE -r 24000 -c 1
package main

import (
	"fmt"
	"os"

	"github.com/chetangoswami/Ai-Book-Narrator/cmd/narrator/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
