// Package dict builds the vocabulary over a training corpus: words and
// labels with their frequency counts, plus the hashed character and word
// n-gram ids that share the input matrix's bucket rows.  A finalized
// Dictionary is read-only and safe for concurrent use by training workers.
package dict

import (
	"sort"
	"strings"
)

// LabelPrefix marks label tokens in the input corpus.
const LabelPrefix = "__label__"

// EntryType distinguishes words from labels.
type EntryType uint8

const (
	Word EntryType = iota
	Label
)

// Entry is one vocabulary item.
type Entry struct {
	Text     string
	Count    int64
	Type     EntryType
	Subwords []int32
}

// Config fixes tokenization behaviour.
type Config struct {
	// WordNgrams is the maximum word n-gram order added to each line
	// (1 disables word n-grams).
	WordNgrams int
	// Bucket is the number of hash rows shared by word and character
	// n-grams.  Zero disables all hashed features.
	Bucket int
	// MinN and MaxN bound character n-gram lengths for subwords
	// (MaxN 0 disables subwords).
	MinN, MaxN int
}

// Dictionary maps tokens to dense ids.  Words occupy ids [0, Words());
// labels follow at [Words(), Words()+Labels()).  Hashed n-gram ids start at
// Words() and run through the bucket range; they never collide with label
// ids because labels are only ever emitted through the separate label slice
// of Line.
type Dictionary struct {
	cfg     Config
	entries []Entry
	ids     map[string]int32
	nwords  int32
	nlabels int32
	ntokens int64
}

// New returns an empty dictionary.
func New(cfg Config) *Dictionary {
	return &Dictionary{
		cfg: cfg,
		ids: make(map[string]int32),
	}
}

// Add records one occurrence of token, creating its entry on first sight.
func (d *Dictionary) Add(token string) {
	d.ntokens++
	if id, ok := d.ids[token]; ok {
		d.entries[id].Count++
		return
	}
	typ := Word
	if strings.HasPrefix(token, LabelPrefix) {
		typ = Label
	}
	d.ids[token] = int32(len(d.entries))
	d.entries = append(d.entries, Entry{Text: token, Count: 1, Type: typ})
	if typ == Label {
		d.nlabels++
	} else {
		d.nwords++
	}
}

// AddLine tokenizes one corpus line by whitespace and adds every token.
func (d *Dictionary) AddLine(line string) {
	for _, tok := range strings.Fields(line) {
		d.Add(tok)
	}
}

// Finalize prunes rare entries and freezes the id space: words below
// minCount and labels below minCountLabel are dropped, survivors are sorted
// words-first by descending count, and subwords are recomputed.  Ids handed
// out before Finalize are invalidated.
func (d *Dictionary) Finalize(minCount, minCountLabel int64) {
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.Type == Word && e.Count < minCount {
			continue
		}
		if e.Type == Label && e.Count < minCountLabel {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Type != kept[j].Type {
			return kept[i].Type < kept[j].Type
		}
		return kept[i].Count > kept[j].Count
	})

	d.entries = kept
	d.ids = make(map[string]int32, len(kept))
	d.nwords = 0
	d.nlabels = 0
	for i := range kept {
		d.ids[kept[i].Text] = int32(i)
		if kept[i].Type == Label {
			d.nlabels++
		} else {
			d.nwords++
		}
	}
	d.initSubwords()
}

func (d *Dictionary) initSubwords() {
	if d.cfg.MaxN <= 0 || d.cfg.Bucket <= 0 {
		return
	}
	for i := int32(0); i < d.nwords; i++ {
		e := &d.entries[i]
		e.Subwords = append(e.Subwords[:0], i)
		e.Subwords = append(e.Subwords, d.computeSubwords(e.Text)...)
	}
}

// computeSubwords hashes the character n-grams of "<word>" into the bucket
// rows that follow the word ids.
func (d *Dictionary) computeSubwords(word string) []int32 {
	runes := []rune("<" + word + ">")
	var ngrams []int32
	for i := range runes {
		for n := d.cfg.MinN; n <= d.cfg.MaxN && i+n <= len(runes); n++ {
			if n == len(runes) {
				continue // the full token is already its own id
			}
			ng := string(runes[i : i+n])
			ngrams = append(ngrams, d.nwords+int32(Hash(ng)%uint32(d.cfg.Bucket)))
		}
	}
	return ngrams
}

// Line tokenizes text and resolves it into the token ids the model consumes
// (word ids, their subwords when enabled, then hashed word n-grams) plus the
// label ids present on the line.  Label ids are zero-based, i.e. already
// offset by Words().  Unknown tokens are skipped.
func (d *Dictionary) Line(text string) (tokens []int32, labels []int32) {
	var hashes []uint32
	for _, tok := range strings.Fields(text) {
		id, ok := d.ids[tok]
		if !ok {
			continue
		}
		e := &d.entries[id]
		if e.Type == Label {
			labels = append(labels, id-d.nwords)
			continue
		}
		if len(e.Subwords) > 0 {
			tokens = append(tokens, e.Subwords...)
		} else {
			tokens = append(tokens, id)
		}
		hashes = append(hashes, Hash(tok))
	}
	tokens = d.appendWordNgrams(tokens, hashes)
	return tokens, labels
}

// appendWordNgrams hashes consecutive word windows of order 2..WordNgrams
// into the bucket rows.
func (d *Dictionary) appendWordNgrams(tokens []int32, hashes []uint32) []int32 {
	if d.cfg.WordNgrams <= 1 || d.cfg.Bucket <= 0 {
		return tokens
	}
	for i := range hashes {
		h := uint64(hashes[i])
		for j := i + 1; j < len(hashes) && j < i+d.cfg.WordNgrams; j++ {
			h = h*116049371 + uint64(hashes[j])
			tokens = append(tokens, d.nwords+int32(h%uint64(d.cfg.Bucket)))
		}
	}
	return tokens
}

// ID returns the id of token, or -1 if absent.
func (d *Dictionary) ID(token string) int32 {
	if id, ok := d.ids[token]; ok {
		return id
	}
	return -1
}

// Words returns the number of distinct words.
func (d *Dictionary) Words() int32 { return d.nwords }

// Labels returns the number of distinct labels.
func (d *Dictionary) Labels() int32 { return d.nlabels }

// Tokens returns the total number of tokens seen by Add.
func (d *Dictionary) Tokens() int64 { return d.ntokens }

// LabelText returns the text of the zero-based label id, without the
// LabelPrefix.
func (d *Dictionary) LabelText(label int32) string {
	return strings.TrimPrefix(d.entries[d.nwords+label].Text, LabelPrefix)
}

// LabelCounts returns the per-label frequency counts, indexed by zero-based
// label id.  This is the counts vector handed to Model.SetTargetCounts.
func (d *Dictionary) LabelCounts() []int64 {
	counts := make([]int64, d.nlabels)
	for i := int32(0); i < d.nlabels; i++ {
		counts[i] = d.entries[d.nwords+i].Count
	}
	return counts
}

// Entries returns the vocabulary in id order.  The slice is shared; callers
// must not modify it.
func (d *Dictionary) Entries() []Entry { return d.entries }

// InputRows returns the number of rows the input matrix needs: one per word
// plus the hashed bucket range when any n-gram feature is enabled.
func (d *Dictionary) InputRows() int {
	rows := int(d.nwords)
	if d.cfg.Bucket > 0 && (d.cfg.WordNgrams > 1 || d.cfg.MaxN > 0) {
		rows += d.cfg.Bucket
	}
	return rows
}

// FromEntries rebuilds a finalized dictionary from serialized entries, in id
// order, restoring the token total.  Used by the model loader.
func FromEntries(cfg Config, entries []Entry, ntokens int64) *Dictionary {
	d := New(cfg)
	d.entries = entries
	d.ntokens = ntokens
	for i := range entries {
		d.ids[entries[i].Text] = int32(i)
		if entries[i].Type == Label {
			d.nlabels++
		} else {
			d.nwords++
		}
	}
	d.initSubwords()
	return d
}

// Hash is the FNV-1a hash used for all n-gram bucketing.
func Hash(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
