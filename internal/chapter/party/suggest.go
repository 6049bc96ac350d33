package party

import (
	"sort"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

// Suggestion proposes a replacement for a lost party member.
type Suggestion struct {
	LostID        string `json:"lostId"`
	ReplacementID string `json:"replacementId"`
	Level         int    `json:"level"`
}

// SuggestReplacements proposes, for each lost character in the candidate
// party, the highest-level available character not already in the party.
// Each available character is offered at most once; ties break by id for
// stable output. Lost members with no remaining candidates are omitted.
func (v *Validator) SuggestReplacements(candidate []string, roster []domain.Unit) []Suggestion {
	inParty := make(map[string]bool, len(candidate))
	for _, id := range candidate {
		inParty[id] = true
	}

	var pool []domain.Unit
	for _, unit := range roster {
		if !unit.IsPlayer() || inParty[unit.ID] {
			continue
		}
		if v.losses != nil && v.losses.IsLost(unit.ID) {
			continue
		}
		pool = append(pool, unit)
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Level != pool[j].Level {
			return pool[i].Level > pool[j].Level
		}
		return pool[i].ID < pool[j].ID
	})

	var suggestions []Suggestion
	next := 0
	for _, id := range candidate {
		if v.losses == nil || !v.losses.IsLost(id) {
			continue
		}
		if next >= len(pool) {
			break
		}
		replacement := pool[next]
		next++
		suggestions = append(suggestions, Suggestion{
			LostID:        id,
			ReplacementID: replacement.ID,
			Level:         replacement.Level,
		})
	}
	return suggestions
}
