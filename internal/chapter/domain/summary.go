package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ChapterLossSummary is a derived, non-persisted view of a chapter's loss
// state. Compute it on demand; never store it.
type ChapterLossSummary struct {
	ChapterID       string          `json:"chapterId"`
	ChapterName     string          `json:"chapterName,omitempty"`
	TotalCharacters int             `json:"totalCharacters"`
	Lost            []LostCharacter `json:"lostCharacters"`
	SurvivorIDs     []string        `json:"survivedCharacterIds"`
	Duration        time.Duration   `json:"duration"`
	TotalTurns      int             `json:"totalTurns"`
	PerfectClear    bool            `json:"isPerfectClear"`
}

// Validate checks the internal consistency of a computed summary.
func (s ChapterLossSummary) Validate() error {
	if strings.TrimSpace(s.ChapterID) == "" {
		return ErrEmptyChapterID
	}
	if s.TotalCharacters < 0 || s.TotalTurns < 0 || s.Duration < 0 {
		return fmt.Errorf("summary counters must not be negative")
	}
	if len(s.Lost)+len(s.SurvivorIDs) != s.TotalCharacters {
		return fmt.Errorf("summary accounts for %d characters, expected %d",
			len(s.Lost)+len(s.SurvivorIDs), s.TotalCharacters)
	}
	if s.PerfectClear != (len(s.Lost) == 0) {
		return fmt.Errorf("perfect clear flag disagrees with %d losses", len(s.Lost))
	}
	return nil
}

// LossStatistics aggregates the loss history for audit views.
type LossStatistics struct {
	TotalLosses   int               `json:"totalLosses"`
	ByCause       map[CauseKind]int `json:"byCause"`
	ByTurn        map[int]int       `json:"byTurn"`
	RecruitedLost int               `json:"recruitedLost"`
	AverageLevel  float64           `json:"averageLevel"`
}

// ComputeLossStatistics folds a loss history into aggregate counts.
func ComputeLossStatistics(history []LossRecord) LossStatistics {
	stats := LossStatistics{
		TotalLosses: len(history),
		ByCause:     make(map[CauseKind]int),
		ByTurn:      make(map[int]int),
	}

	levelSum := 0
	for _, record := range history {
		stats.ByCause[record.Cause.Kind]++
		stats.ByTurn[record.Turn]++
		if record.Recruited {
			stats.RecruitedLost++
		}
		levelSum += record.Level
	}
	if len(history) > 0 {
		stats.AverageLevel = float64(levelSum) / float64(len(history))
	}
	return stats
}

// SortedLossTurns returns the turns with losses in ascending order.
func (s LossStatistics) SortedLossTurns() []int {
	turns := make([]int, 0, len(s.ByTurn))
	for turn := range s.ByTurn {
		turns = append(turns, turn)
	}
	sort.Ints(turns)
	return turns
}
