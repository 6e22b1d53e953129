package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/hrygo/kanaconv/trie"
)

// dumpUnigramCmd prints every entry of a unigram trie as "key<TAB>score".
// Debugging tool for inspecting built artifacts.
var dumpUnigramCmd = &cobra.Command{
	Use:   "dump-unigram <unigram.trie>",
	Short: "Dump a system unigram LM trie to text",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		t, err := trie.Load(args[0])
		if err != nil {
			return err
		}
		for _, e := range t.PredictiveSearch(nil) {
			i := bytes.IndexByte(e.Key, 0xff)
			if i < 0 || len(e.Key) < i+5 {
				continue
			}
			score := math.Float32frombits(binary.LittleEndian.Uint32(e.Key[i+1:]))
			fmt.Printf("%s\t%f\n", e.Key[:i], score)
		}
		return nil
	},
}
