package wordbank

import (
	"bufio"
	"embed"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// DefaultCategory is used whenever a caller asks for a category the bank
// does not know. Callers always get a non-empty word list back.
const DefaultCategory = "animals"

//go:embed data/*.txt
var dataFS embed.FS

// Bank maps category names to fixed word lists. A Bank is immutable after
// construction and safe for concurrent use without locking.
type Bank struct {
	categories map[string][]string
}

// New loads the embedded category word lists.
func New() (*Bank, error) {
	entries, err := dataFS.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded word lists: %w", err)
	}

	categories := make(map[string][]string, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".txt")
		words, err := readWordList("data/" + entry.Name())
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("embedded category %q is empty", name)
		}
		categories[name] = words
	}

	if _, ok := categories[DefaultCategory]; !ok {
		return nil, fmt.Errorf("default category %q missing from embedded data", DefaultCategory)
	}

	return &Bank{categories: categories}, nil
}

func readWordList(path string) ([]string, error) {
	f, err := dataFS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return words, nil
}

// WithCategory returns a copy of the bank extended with an additional
// category. The receiver is not modified, so a shared bank can be derived
// per session without synchronization. Words are normalized and
// deduplicated; an empty list leaves the bank unchanged.
func (b *Bank) WithCategory(name string, words []string) *Bank {
	name = strings.ToLower(strings.TrimSpace(name))

	cleaned := make([]string, 0, len(words))
	seen := make(map[string]bool)
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		cleaned = append(cleaned, word)
	}
	if name == "" || len(cleaned) == 0 {
		return b
	}

	categories := make(map[string][]string, len(b.categories)+1)
	for cat, list := range b.categories {
		categories[cat] = list
	}
	categories[name] = cleaned
	return &Bank{categories: categories}
}

// Categories returns the known category names in sorted order.
func (b *Bank) Categories() []string {
	names := make([]string, 0, len(b.categories))
	for name := range b.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasCategory reports whether the bank knows the category directly, before
// any default fallback.
func (b *Bank) HasCategory(category string) bool {
	_, ok := b.categories[normalizeCategory(category)]
	return ok
}

// AllWords returns a copy of the category's word list. An unknown category
// falls back to the default category.
func (b *Bank) AllWords(category string) []string {
	list := b.lookup(category)
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// RandomSubset samples count words from the category without replacement.
// If count meets or exceeds the category size, the whole category is
// returned. An unknown category falls back to the default category.
func (b *Bank) RandomSubset(category string, count int) []string {
	list := b.lookup(category)
	if count >= len(list) {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	if count <= 0 {
		return []string{}
	}

	shuffled := make([]string, len(list))
	copy(shuffled, list)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

// Contains reports whether the word belongs to the category,
// case-insensitively. An unknown category falls back to the default
// category.
func (b *Bank) Contains(category, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	for _, candidate := range b.lookup(category) {
		if candidate == word {
			return true
		}
	}
	return false
}

func (b *Bank) lookup(category string) []string {
	if list, ok := b.categories[normalizeCategory(category)]; ok {
		return list
	}
	return b.categories[DefaultCategory]
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
