package dict

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var skkAnnotation = regexp.MustCompile(`;.*`)

// ParseSKKDict reads a UTF-8 SKK dictionary and returns the okuri-ari and
// okuri-nasi entry maps. Candidate annotations (";...") are stripped.
func ParseSKKDict(path string) (ari, nasi map[string][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open SKK dict %s", path)
	}
	defer f.Close()

	ari = map[string][]string{}
	nasi = map[string][]string{}
	target := ari

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ";; okuri-ari entries.") {
			target = ari
			continue
		}
		if strings.HasPrefix(line, ";; okuri-nasi entries.") {
			target = nasi
			continue
		}
		if strings.HasPrefix(line, ";;") {
			continue
		}
		yomi, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		var kanjis []string
		for _, k := range strings.Split(strings.Trim(rest, "/"), "/") {
			k = skkAnnotation.ReplaceAllString(k, "")
			if k != "" {
				kanjis = append(kanjis, k)
			}
		}
		if len(kanjis) > 0 {
			target[yomi] = kanjis
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "read SKK dict %s", path)
	}
	return ari, nasi, nil
}
