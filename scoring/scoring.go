package scoring

import "strings"

// Fixed gameplay rewards and penalties.
const (
	UniqueReward     = 10
	DuplicatePenalty = -5
	WinBonus         = 50
	MatchBonus       = 25
)

// Delta is the outcome of one round for one player.
type Delta struct {
	Score    int
	LoseLife bool
}

// Normalize lowercases and trims a submitted word. Every comparison in the
// scoring engine and the game modes goes through this.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Duplicates returns the set of normalized words submitted by more than one
// distinct player. A player repeating their own word does not make it a
// duplicate.
func Duplicates(submissions map[string][]string) map[string]bool {
	submitters := make(map[string]map[string]bool)
	for playerID, words := range submissions {
		for _, word := range words {
			word = Normalize(word)
			if word == "" {
				continue
			}
			if submitters[word] == nil {
				submitters[word] = make(map[string]bool)
			}
			submitters[word][playerID] = true
		}
	}

	duplicates := make(map[string]bool)
	for word, players := range submitters {
		if len(players) > 1 {
			duplicates[word] = true
		}
	}
	return duplicates
}

// Resolve computes per-player deltas for a round's player-to-words
// submission mapping. Unique words earn UniqueReward each, duplicated words cost
// DuplicatePenalty each, and a player loses a life when at least one of
// their words this round was a duplicate. Players absent from the mapping
// simply get no delta.
func Resolve(submissions map[string][]string) map[string]Delta {
	duplicates := Duplicates(submissions)

	deltas := make(map[string]Delta, len(submissions))
	for playerID, words := range submissions {
		var delta Delta
		for _, word := range words {
			word = Normalize(word)
			if word == "" {
				continue
			}
			if duplicates[word] {
				delta.Score += DuplicatePenalty
				delta.LoseLife = true
			} else {
				delta.Score += UniqueReward
			}
		}
		deltas[playerID] = delta
	}
	return deltas
}
