package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/kanaconv/lisp"
	"github.com/hrygo/kanaconv/userlm"
)

// convertCmd reads rōmaji lines from stdin and prints the best conversion of
// each, one per line.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert rōmaji lines from stdin to kana-kanji text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		eng, _, user, err := buildEngine(p)
		if err != nil {
			return err
		}
		learn, err := cmd.Flags().GetBool("learn")
		if err != nil {
			return err
		}

		ev := lisp.NewEvaluator()
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			segments, err := eng.Convert(line, nil)
			if err != nil {
				return err
			}

			var out strings.Builder
			committed := make([]userlm.Entry, 0, len(segments))
			for _, seg := range segments {
				best := seg[0]
				surface, err := best.Surface(ev)
				if err != nil {
					// The host policy here is to fall back to the literal
					// word when a dynamic surface fails to evaluate.
					slog.Warn("surface evaluation failed", "word", best.Word(), "error", err)
					surface = best.Word()
				}
				out.WriteString(surface)
				committed = append(committed, userlm.Entry{Key: best.Key(), Yomi: best.Yomi()})
			}
			fmt.Println(out.String())

			if learn {
				user.AddEntry(committed)
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}

		if user.ShouldSave() {
			if err := user.Save(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().Bool("learn", false, "record committed conversions into the user language model")
}
