package narrate

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Hello.", []string{"Hello."}},
		{"two with space", "Hello. World.", []string{"Hello. ", "World."}},
		{"exclaim and question", "Stop! Why?", []string{"Stop! ", "Why?"}},
		{"ellipsis rune", "Wait… go.", []string{"Wait… ", "go."}},
		{"terminator run", "What?! Really...", []string{"What?! ", "Really..."}},
		{"trailing fragment", "Done. and then", []string{"Done. ", "and then"}},
		{"no terminator", "no punctuation here", []string{"no punctuation here"}},
		{"newline after dot", "One.\nTwo.", []string{"One.\n", "Two."}},
		{"only whitespace", "   ", []string{"   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSentences(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitSentences(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestSplitSentencesReassembles(t *testing.T) {
	text := "First. Second! Third? And a trailing bit"
	units := SplitSentences(text)
	var joined string
	for _, u := range units {
		joined += u
	}
	if joined != text {
		t.Fatalf("units do not reassemble: %q != %q", joined, text)
	}
}
