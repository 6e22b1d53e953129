package main

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/kanaconv/langmodel"
)

// makeLMCmd packs the text LM produced by the training pipeline into the two
// runtime tries. The unigram trie is built first; bigram entries are then
// resolved against it so the stored id pairs match what FindUnigram returns
// at conversion time.
var makeLMCmd = &cobra.Command{
	Use:   "make-lm <unigram.txt> <bigram.txt> <unigram-out.trie> <bigram-out.trie>",
	Short: "Build the system language model tries from text score files",
	Args:  cobra.ExactArgs(4),
	RunE: func(_ *cobra.Command, args []string) error {
		uniSrc, biSrc, uniOut, biOut := args[0], args[1], args[2], args[3]

		uniBuilder := langmodel.NewSystemUnigramLMBuilder()
		uniCount := 0
		if err := eachScoredLine(uniSrc, func(key string, score float32) {
			uniBuilder.Add(key, score)
			uniCount++
		}); err != nil {
			return err
		}
		if err := uniBuilder.Save(uniOut); err != nil {
			return err
		}

		unigram := uniBuilder.Build()
		biBuilder := langmodel.NewSystemBigramLMBuilder()
		biCount, skipped := 0, 0
		if err := eachScoredLine(biSrc, func(key string, score float32) {
			key1, key2, ok := strings.Cut(key, "\t")
			if !ok {
				skipped++
				return
			}
			id1, _ := unigram.FindUnigram(key1)
			id2, _ := unigram.FindUnigram(key2)
			if id1 == langmodel.UnknownWordID || id2 == langmodel.UnknownWordID {
				skipped++
				return
			}
			biBuilder.Add(id1, id2, score)
			biCount++
		}); err != nil {
			return err
		}
		if err := biBuilder.Save(biOut); err != nil {
			return err
		}

		slog.Info("built system language model",
			"unigrams", uniCount, "bigrams", biCount, "skippedBigrams", skipped)
		return nil
	},
}

// eachScoredLine parses "<key> <score>" lines, where key may itself contain
// tabs (bigram keys) but never the final space before the score column.
func eachScoredLine(path string, fn func(key string, score float32)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "unable to open LM source %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		i := strings.LastIndexByte(line, ' ')
		if i < 0 {
			continue
		}
		score, err := strconv.ParseFloat(line[i+1:], 32)
		if err != nil {
			return errors.Wrapf(err, "bad score at %s:%d", path, lineno)
		}
		fn(line[:i], float32(score))
	}
	return errors.Wrapf(sc.Err(), "read LM source %s", path)
}
