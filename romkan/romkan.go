// Package romkan rewrites Latin keystrokes into hiragana. The rewrite is a
// deterministic longest-prefix match over the merged default+user table; the
// same alternation, anchored at the end, identifies the last input unit for
// backspace handling inside the preedit.
package romkan

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Converter is immutable after construction and safe for concurrent use.
type Converter struct {
	table       map[string]string
	pattern     *regexp.Regexp
	lastPattern *regexp.Regexp
}

// NewConverter merges additional entries over the default table and compiles
// the rewrite patterns. Additional entries win over defaults; longer keys
// always win over shorter ones during matching.
func NewConverter(additional map[string]string) *Converter {
	table := make(map[string]string, len(DefaultTable)+len(additional))
	for k, v := range DefaultTable {
		table[k] = v
	}
	for k, v := range additional {
		table[k] = v
	}

	// Derive sokuon entries: a doubled leading consonant prepends a small
	// tsu ("ta" → "tta"/"った"). The syllabic "nn" is already a table entry.
	derived := map[string]string{}
	for k, v := range table {
		if len(k) < 2 || !isASCIILetters(k) {
			continue
		}
		lead := k[0]
		if !strings.ContainsRune(sokuonLeads, rune(lead)) {
			continue
		}
		derived[string(lead)+k] = "っ" + v
	}
	for k, v := range derived {
		if _, ok := table[k]; !ok {
			table[k] = v
		}
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	// Longest first. Go's regexp alternation prefers earlier branches, so
	// this ordering is what makes "kyou" one unit instead of three.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	alternation := strings.Join(quoted, "|")

	return &Converter{
		table:       table,
		pattern:     regexp.MustCompile(`^(?:` + alternation + `|.)`),
		lastPattern: regexp.MustCompile(`(?:` + alternation + `|.)$`),
	}
}

// ToHiragana rewrites s unit by unit. Unmapped characters pass through.
func (c *Converter) ToHiragana(s string) string {
	s = strings.ToLower(s)
	// Commit the syllabic N before the rewrite loop so "nn" never waits for
	// a following vowel.
	s = strings.ReplaceAll(s, "nn", "n'")

	var out strings.Builder
	for len(s) > 0 {
		m := c.pattern.FindString(s)
		if m == "" {
			// The dot alternative matches any single character, so this
			// only happens on a broken pattern.
			out.WriteString(s)
			break
		}
		if hira, ok := c.table[m]; ok {
			out.WriteString(hira)
		} else {
			out.WriteString(m)
		}
		s = s[len(m):]
	}
	return out.String()
}

// RemoveLastChar strips exactly one rōmaji unit from the end of s. Used by
// the host on backspace within the unconverted preedit.
func (c *Converter) RemoveLastChar(s string) string {
	return c.lastPattern.ReplaceAllString(s, "")
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
