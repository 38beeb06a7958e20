package wordbank

import (
	"testing"
)

func TestRandomSubset(t *testing.T) {
	bank, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	all := bank.AllWords("animals")
	allSet := make(map[string]bool, len(all))
	for _, w := range all {
		allSet[w] = true
	}

	tests := []struct {
		name    string
		count   int
		wantLen int
	}{
		{name: "small subset", count: 5, wantLen: 5},
		{name: "zero", count: 0, wantLen: 0},
		{name: "negative", count: -1, wantLen: 0},
		{name: "whole category", count: len(all), wantLen: len(all)},
		{name: "more than category", count: len(all) + 10, wantLen: len(all)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subset := bank.RandomSubset("animals", tt.count)
			if len(subset) != tt.wantLen {
				t.Fatalf("expected %d words, got %d", tt.wantLen, len(subset))
			}

			seen := make(map[string]bool)
			for _, w := range subset {
				if !allSet[w] {
					t.Errorf("word %q not in category", w)
				}
				if seen[w] {
					t.Errorf("word %q sampled twice", w)
				}
				seen[w] = true
			}
		})
	}
}

func TestContains(t *testing.T) {
	bank, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tests := []struct {
		name     string
		category string
		word     string
		expected bool
	}{
		{name: "exact match", category: "animals", word: "cat", expected: true},
		{name: "case insensitive", category: "animals", word: "CaT", expected: true},
		{name: "whitespace trimmed", category: "animals", word: "  cat  ", expected: true},
		{name: "not in category", category: "animals", word: "france", expected: false},
		{name: "other category", category: "countries", word: "france", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bank.Contains(tt.category, tt.word); got != tt.expected {
				t.Errorf("Contains(%q, %q) = %v, expected %v", tt.category, tt.word, got, tt.expected)
			}
		})
	}
}

func TestUnknownCategoryFallsBack(t *testing.T) {
	bank, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	fallback := bank.AllWords("no-such-category")
	want := bank.AllWords(DefaultCategory)
	if len(fallback) == 0 {
		t.Fatal("fallback returned an empty list")
	}
	if len(fallback) != len(want) {
		t.Errorf("expected default category (%d words), got %d words", len(want), len(fallback))
	}
	if bank.HasCategory("no-such-category") {
		t.Error("HasCategory should not report unknown categories")
	}
}

func TestWithCategory(t *testing.T) {
	bank, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	derived := bank.WithCategory("Pets", []string{" Cat ", "dog", "DOG", "", "parrot"})

	if bank.HasCategory("pets") {
		t.Error("WithCategory must not mutate the original bank")
	}
	if !derived.HasCategory("pets") {
		t.Fatal("derived bank missing new category")
	}

	words := derived.AllWords("pets")
	if len(words) != 3 {
		t.Errorf("expected 3 normalized words, got %v", words)
	}
	if !derived.Contains("pets", "DOG") {
		t.Error("derived category should contain normalized dog")
	}
}
