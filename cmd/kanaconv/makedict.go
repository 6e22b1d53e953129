package main

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/kanaconv/dict"
)

// makeDictCmd builds a binary dictionary trie from an SKK-format text
// dictionary. Only the okuri-nasi section feeds the converter; okuri-ari
// entries require verb-ending handling the lattice does not model.
var makeDictCmd = &cobra.Command{
	Use:   "make-dict <skk-dictionary> <output.trie>",
	Short: "Build a binary dictionary from an SKK text dictionary",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		src, out := args[0], args[1]

		_, nasi, err := dict.ParseSKKDict(src)
		if err != nil {
			return err
		}

		yomis := make([]string, 0, len(nasi))
		for yomi := range nasi {
			yomis = append(yomis, yomi)
		}
		sort.Strings(yomis)

		builder := dict.NewBuilder()
		for _, yomi := range yomis {
			builder.Add(yomi, strings.Join(nasi[yomi], "/"))
		}
		if err := builder.Save(out); err != nil {
			return err
		}
		slog.Info("built binary dictionary", "source", src, "output", out, "entries", len(yomis))
		return nil
	},
}
