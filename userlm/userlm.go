// Package userlm implements the learning user language model. Counts are
// kept in memory and persisted as plain text, one "<key> <count>" line per
// entry; the bigram file keys are "<key1>\t<key2>". The files are
// user-writable, so malformed lines are skipped silently on load.
//
// The smoothed scores are additive-smoothed probabilities in log10, on the
// same scale as the system LM so they can substitute for it at lookup time
// without rescaling.
package userlm

import (
	"bufio"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const alpha = 0.00001

// Entry is the committed (key, yomi) pair recorded by AddEntry. Key is the
// canonical "<surface>/<yomi>" word key.
type Entry struct {
	Key  string
	Yomi string
}

// UserLanguageModel accumulates unigram and bigram counts from committed
// conversions. Not safe for concurrent writers; the host serializes AddEntry
// and Save.
type UserLanguageModel struct {
	unigramPath string
	bigramPath  string

	needSave bool

	unigramKanas map[string]struct{}

	// unigramC counts distinct keys, unigramV total observations.
	unigramC int
	unigramV int
	unigram  map[string]int
	bigramC  int
	bigramV  int
	bigram   map[string]int
}

func NewUserLanguageModel(unigramPath, bigramPath string) *UserLanguageModel {
	return &UserLanguageModel{
		unigramPath:  unigramPath,
		bigramPath:   bigramPath,
		unigramKanas: map[string]struct{}{},
		unigram:      map[string]int{},
		bigram:       map[string]int{},
	}
}

func (m *UserLanguageModel) SizeUnigram() int { return len(m.unigram) }
func (m *UserLanguageModel) SizeBigram() int  { return len(m.bigram) }

// LoadUnigram reads the unigram file. A missing file is not an error: the
// model starts empty on first run.
func (m *UserLanguageModel) LoadUnigram() error {
	return m.read(m.unigramPath, true, &m.unigramC, &m.unigramV, m.unigram)
}

// LoadBigram reads the bigram file.
func (m *UserLanguageModel) LoadBigram() error {
	return m.read(m.bigramPath, false, &m.bigramC, &m.bigramV, m.bigram)
}

func (m *UserLanguageModel) read(path string, isUnigram bool, c, v *int, counts map[string]int) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "unable to open user LM file %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, countStr, ok := cutLast(sc.Text(), ' ')
		if !ok {
			continue
		}
		count, err := strconv.Atoi(countStr)
		if err != nil {
			continue
		}
		counts[key] = count
		if isUnigram {
			if _, yomi, ok := strings.Cut(key, "/"); ok {
				m.unigramKanas[yomi] = struct{}{}
			}
		}
		*c++
		*v += count
	}
	if err := sc.Err(); err != nil {
		return errors.Wrapf(err, "read user LM file %s", path)
	}
	slog.Info("loaded user language model", "path", path, "entries", len(counts))
	return nil
}

// AddEntry records the first candidate of each committed segment: unigram
// counts per node, bigram counts per adjacent pair.
func (m *UserLanguageModel) AddEntry(nodes []Entry) {
	for _, n := range nodes {
		if _, ok := m.unigram[n.Key]; !ok {
			m.unigramC++
		}
		m.unigramV++
		m.unigramKanas[n.Yomi] = struct{}{}
		m.unigram[n.Key]++
	}

	for i := 1; i < len(nodes); i++ {
		key := nodes[i-1].Key + "\t" + nodes[i].Key
		if _, ok := m.bigram[key]; !ok {
			m.bigramC++
		}
		m.bigramV++
		m.bigram[key]++
	}

	m.needSave = true
}

// GetUnigramCost returns the smoothed log10 probability of key, or false if
// the key has never been counted.
func (m *UserLanguageModel) GetUnigramCost(key string) (float32, bool) {
	count, ok := m.unigram[key]
	if !ok {
		return 0, false
	}
	return float32(math.Log10((float64(count) + alpha) / float64(m.unigramC) + alpha*float64(m.unigramV))), true
}

// GetBigramCost returns the smoothed log10 probability of the key1→key2
// transition, or false if the pair has never been counted.
func (m *UserLanguageModel) GetBigramCost(key1, key2 string) (float32, bool) {
	count, ok := m.bigram[key1+"\t"+key2]
	if !ok {
		return 0, false
	}
	return float32(math.Log10((float64(count) + alpha) / (float64(m.bigramC) + alpha*float64(m.bigramV)))), true
}

// HasUnigramCostByYomi reports whether this reading was ever committed, so a
// dictionary miss can still propose it.
func (m *UserLanguageModel) HasUnigramCostByYomi(yomi string) bool {
	_, ok := m.unigramKanas[yomi]
	return ok
}

// ShouldSave reports whether there are unpersisted changes.
func (m *UserLanguageModel) ShouldSave() bool {
	return m.needSave
}

// Save writes both files if dirty. Each file is written to "<path>.tmp" and
// renamed over the destination, so a crash between the two steps leaves the
// previous file usable. The dirty flag clears only when both writes succeed.
func (m *UserLanguageModel) Save() error {
	if !m.needSave {
		return nil
	}
	if err := saveFile(m.unigramPath, m.unigram); err != nil {
		return err
	}
	if err := saveFile(m.bigramPath, m.bigram); err != nil {
		return err
	}
	m.needSave = false
	return nil
}

func saveFile(path string, counts map[string]int) error {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", tmp)
	}
	w := bufio.NewWriter(f)
	for _, k := range keys {
		if _, err := w.WriteString(k + " " + strconv.Itoa(counts[k]) + "\n"); err != nil {
			f.Close()
			return errors.Wrapf(err, "write %s", tmp)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush %s", tmp)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.Wrapf(err, "sync %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "rename %s over %s", tmp, path)
	}
	return nil
}

// cutLast splits on the last occurrence of sep, so word keys containing
// spaces cannot corrupt the count column.
func cutLast(s string, sep byte) (before, after string, found bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
