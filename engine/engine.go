// Package engine glues the rōmaji converter and the lattice resolver into
// the conversion entry point used by host IME shells.
package engine

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hrygo/kanaconv/lattice"
	"github.com/hrygo/kanaconv/romkan"
)

// trailingConsonant splits off a run of consonants at the end of the
// rewritten input; they stay rōmaji until more keystrokes arrive. N is
// excluded because "nn"/"n'" already commits to a full kana.
var trailingConsonant = regexp.MustCompile(`^(.*?)([qwrtypsdfghjklzxcvbm]+)$`)

// Engine is stateless per call; all persistent learning lives in the user
// language model owned by the resolver.
type Engine struct {
	resolver *lattice.Resolver
	romkan   *romkan.Converter
}

func New(resolver *lattice.Resolver, romkan *romkan.Converter) *Engine {
	return &Engine{resolver: resolver, romkan: romkan}
}

// Convert turns raw keystrokes into segments of ranked candidates. Each
// segment's first node is the best path choice; the host commits one
// candidate per segment and feeds the chosen nodes back into the user LM.
func (e *Engine) Convert(input string, forced []lattice.Slice) ([][]*lattice.Node, error) {
	if forced == nil && isLiteralInput(input) {
		return [][]*lattice.Node{{lattice.NewLiteralNode(0, input, input)}}, nil
	}

	hiragana := e.romkan.ToHiragana(input)

	consonant := ""
	if m := trailingConsonant.FindStringSubmatch(hiragana); m != nil {
		hiragana = m[1]
		consonant = m[2]
	}
	slog.Debug("convert", "input", input, "hiragana", hiragana, "consonant", consonant)

	graph := e.resolver.GraphConstruct(hiragana, forced)
	e.resolver.FillCost(graph)
	segments, err := e.resolver.FindNBest(graph)
	if err != nil {
		return nil, err
	}

	if consonant != "" {
		tail := lattice.NewLiteralNode(utf8.RuneCountInString(input), consonant, consonant)
		segments = append(segments, []*lattice.Node{tail})
	}
	return segments, nil
}

// isLiteralInput detects the alphanumeric escape hatches: a leading ASCII
// uppercase letter or a URL prefix means the user wants the input verbatim.
func isLiteralInput(input string) bool {
	if input == "" {
		return false
	}
	if c := input[0]; c >= 'A' && c <= 'Z' {
		return true
	}
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}
