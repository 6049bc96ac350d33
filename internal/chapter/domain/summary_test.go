package domain

import (
	"testing"
	"time"
)

func TestSummaryValidate(t *testing.T) {
	summary := ChapterLossSummary{
		ChapterID:       "ch1",
		TotalCharacters: 3,
		Lost:            []LostCharacter{testLostCharacter("a", 2)},
		SurvivorIDs:     []string{"b", "c"},
		Duration:        30 * time.Minute,
		TotalTurns:      12,
		PerfectClear:    false,
	}
	if err := summary.Validate(); err != nil {
		t.Fatalf("expected valid summary, got %v", err)
	}
}

func TestSummaryValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		summary ChapterLossSummary
	}{
		{
			name:    "blank chapter id",
			summary: ChapterLossSummary{TotalCharacters: 0, PerfectClear: true},
		},
		{
			name: "count mismatch",
			summary: ChapterLossSummary{
				ChapterID:       "ch1",
				TotalCharacters: 5,
				SurvivorIDs:     []string{"a"},
				PerfectClear:    true,
			},
		},
		{
			name: "perfect clear with losses",
			summary: ChapterLossSummary{
				ChapterID:       "ch1",
				TotalCharacters: 1,
				Lost:            []LostCharacter{testLostCharacter("a", 1)},
				PerfectClear:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.summary.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestComputeLossStatistics(t *testing.T) {
	history := []LossRecord{
		testLossRecord("ch1", "a", 2),
		testLossRecord("ch1", "b", 2),
		testLossRecord("ch1", "c", 5),
	}
	history[1].Cause.Kind = CauseCriticalDefeat
	history[2].Recruited = true
	history[0].Level = 10
	history[1].Level = 20
	history[2].Level = 30

	stats := ComputeLossStatistics(history)
	if stats.TotalLosses != 3 {
		t.Fatalf("expected 3 losses, got %d", stats.TotalLosses)
	}
	if stats.ByCause[CauseBattleDefeat] != 2 || stats.ByCause[CauseCriticalDefeat] != 1 {
		t.Fatalf("unexpected cause counts: %v", stats.ByCause)
	}
	if stats.ByTurn[2] != 2 || stats.ByTurn[5] != 1 {
		t.Fatalf("unexpected turn counts: %v", stats.ByTurn)
	}
	if stats.RecruitedLost != 1 {
		t.Fatalf("expected 1 recruited loss, got %d", stats.RecruitedLost)
	}
	if stats.AverageLevel != 20 {
		t.Fatalf("expected average level 20, got %v", stats.AverageLevel)
	}

	turns := stats.SortedLossTurns()
	if len(turns) != 2 || turns[0] != 2 || turns[1] != 5 {
		t.Fatalf("expected sorted turns [2 5], got %v", turns)
	}
}

func TestComputeLossStatisticsEmpty(t *testing.T) {
	stats := ComputeLossStatistics(nil)
	if stats.TotalLosses != 0 || stats.AverageLevel != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
