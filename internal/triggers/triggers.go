// Package triggers holds the trigger-word vocabulary: a case-insensitive set
// matched as plain substrings against message text. The vocabulary persists
// as a flat sorted line-delimited file so it can be exported verbatim.
package triggers

import (
	"bytes"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
)

// MaxWordLength bounds a single vocabulary entry.
const MaxWordLength = 100

type Index struct {
	path string

	mu    sync.Mutex
	words map[string]struct{}

	log *log.Entry
}

// Load reads the vocabulary file at path, one word per line. A missing or
// unreadable file yields an empty index.
func Load(path string) *Index {
	idx := &Index{
		path:  path,
		words: map[string]struct{}{},
		log:   log.WithField("context", "triggers"),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			idx.log.WithField("error", err.Error()).Warn("cant read vocabulary, starting empty")
		}
		return idx
	}
	for _, line := range strings.Split(string(raw), "\n") {
		if word := normalize(line); word != "" {
			idx.words[word] = struct{}{}
		}
	}
	return idx
}

// Add inserts the normalized word. Returns false for empty-after-trim input
// and for words already present.
func (i *Index) Add(word string) bool {
	word = normalize(word)
	if word == "" {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.words[word]; ok {
		return false
	}
	i.words[word] = struct{}{}
	i.persist()
	return true
}

// AddMany inserts every new normalized word and returns how many were added.
func (i *Index) AddMany(words []string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	added := 0
	for _, word := range words {
		word = normalize(word)
		if word == "" {
			continue
		}
		if _, ok := i.words[word]; ok {
			continue
		}
		i.words[word] = struct{}{}
		added++
	}
	if added > 0 {
		i.persist()
	}
	return added
}

func (i *Index) Remove(word string) bool {
	word = normalize(word)
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.words[word]; !ok {
		return false
	}
	delete(i.words, word)
	i.persist()
	return true
}

// Clear drops the whole vocabulary and returns the previous size.
func (i *Index) Clear() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	count := len(i.words)
	i.words = map[string]struct{}{}
	i.persist()
	return count
}

// FindAll returns every vocabulary entry contained in text, case-insensitive.
// Entries are not word-boundary aware: an entry inside a larger word matches.
func (i *Index) FindAll(text string) []string {
	lower := strings.ToLower(text)
	i.mu.Lock()
	defer i.mu.Unlock()
	var found []string
	for word := range i.words {
		if strings.Contains(lower, word) {
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return found
}

func (i *Index) List() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sorted()
}

func (i *Index) Count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.words)
}

func (i *Index) IsEmpty() bool {
	return i.Count() == 0
}

// Censor masks a matched word for public notices: first and last characters
// kept, everything between starred.
func Censor(word string) string {
	runes := []rune(word)
	switch len(runes) {
	case 0, 1:
		return "*"
	case 2:
		return string(runes[0]) + "*"
	default:
		return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
	}
}

func (i *Index) sorted() []string {
	words := make([]string, 0, len(i.words))
	for word := range i.words {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// persist rewrites the vocabulary file. Callers hold i.mu.
func (i *Index) persist() {
	content := strings.Join(i.sorted(), "\n")
	if err := atomic.WriteFile(i.path, bytes.NewReader([]byte(content))); err != nil {
		i.log.WithField("error", err.Error()).Error("cant persist vocabulary")
	}
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
