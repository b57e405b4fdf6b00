// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package mnemonic

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39/wordlists"
	"golang.org/x/text/unicode/norm"
)

// WordCount is the size of every BIP39 wordlist.
const WordCount = 2048

// ideographicSpace joins Japanese phrases, as BIP39 requires.
const ideographicSpace = "\u3000"

// Wordlist is an immutable BIP39 wordlist with a reverse index. Words are
// indexed in NFKD form so accented and full-width input matches.
type Wordlist struct {
	name  string
	sep   string
	words []string
	index map[string]int
}

// The BIP39 wordlists shipped with go-bip39. They are built during package
// initialisation and never mutated afterwards.
var (
	English            = mustWordlist("english", wordlists.English, " ")
	Japanese           = mustWordlist("japanese", wordlists.Japanese, ideographicSpace)
	Korean             = mustWordlist("korean", wordlists.Korean, " ")
	Spanish            = mustWordlist("spanish", wordlists.Spanish, " ")
	French             = mustWordlist("french", wordlists.French, " ")
	Italian            = mustWordlist("italian", wordlists.Italian, " ")
	Czech              = mustWordlist("czech", wordlists.Czech, " ")
	ChineseSimplified  = mustWordlist("chinese-simplified", wordlists.ChineseSimplified, " ")
	ChineseTraditional = mustWordlist("chinese-traditional", wordlists.ChineseTraditional, " ")
)

var byName = map[string]*Wordlist{}

func init() {
	for _, wl := range []*Wordlist{
		English, Japanese, Korean, Spanish, French, Italian, Czech,
		ChineseSimplified, ChineseTraditional,
	} {
		byName[wl.name] = wl
	}
}

// NewWordlist builds a wordlist from exactly 2048 distinct words. Phrases are
// joined with sep, which defaults to a single space.
func NewWordlist(name string, words []string, sep string) (*Wordlist, error) {
	if len(words) != WordCount {
		return nil, fmt.Errorf("wordlist %q has %d words, want %d", name, len(words), WordCount)
	}
	if sep == "" {
		sep = " "
	}
	wl := &Wordlist{
		name:  name,
		sep:   sep,
		words: make([]string, WordCount),
		index: make(map[string]int, WordCount),
	}
	for i, w := range words {
		key := norm.NFKD.String(w)
		if _, dup := wl.index[key]; dup {
			return nil, fmt.Errorf("wordlist %q repeats word %q", name, w)
		}
		wl.words[i] = w
		wl.index[key] = i
	}
	return wl, nil
}

func mustWordlist(name string, words []string, sep string) *Wordlist {
	wl, err := NewWordlist(name, words, sep)
	if err != nil {
		panic(err)
	}
	return wl
}

// WordlistByName returns one of the bundled wordlists, e.g. "english" or
// "chinese-simplified".
func WordlistByName(name string) (*Wordlist, bool) {
	wl, ok := byName[strings.ToLower(name)]
	return wl, ok
}

// Name returns the wordlist name.
func (w *Wordlist) Name() string { return w.name }

// Word returns the word at index i.
func (w *Wordlist) Word(i int) string { return w.words[i] }

// Index returns the position of word in the list.
func (w *Wordlist) Index(word string) (int, bool) {
	i, ok := w.index[norm.NFKD.String(word)]
	return i, ok
}
