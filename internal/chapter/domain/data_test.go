package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testLostCharacter(id string, turn int) LostCharacter {
	return LostCharacter{
		CharacterID: id,
		Name:        "Unit " + id,
		LostAt:      time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC),
		Turn:        turn,
		Cause:       LossCause{Kind: CauseBattleDefeat, Description: "defeated in battle", OccurredAt: time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)},
		Level:       5,
		Position:    &Position{X: 1, Y: 2},
	}
}

func testLossRecord(chapterID, characterID string, turn int) LossRecord {
	return LossRecord{
		ID:            "rec-" + characterID,
		LostCharacter: testLostCharacter(characterID, turn),
		ChapterID:     chapterID,
	}
}

func validChapterData() ChapterLossData {
	data := NewChapterLossData("ch1", time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC))
	data.LostCharacters["a"] = testLostCharacter("a", 2)
	data.LossHistory = append(data.LossHistory, testLossRecord("ch1", "a", 2))
	return data
}

func TestChapterLossDataValidate(t *testing.T) {
	if err := validChapterData().Validate(); err != nil {
		t.Fatalf("expected valid data, got %v", err)
	}
}

func TestChapterLossDataValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ChapterLossData)
		err    error
	}{
		{
			name:   "blank chapter id",
			mutate: func(d *ChapterLossData) { d.ChapterID = " " },
			err:    ErrEmptyChapterID,
		},
		{
			name:   "bad version",
			mutate: func(d *ChapterLossData) { d.Version = "0.9" },
			err:    ErrVersionMismatch,
		},
		{
			name: "orphaned lost entry",
			mutate: func(d *ChapterLossData) {
				d.LostCharacters["ghost"] = testLostCharacter("ghost", 3)
			},
			err: ErrInconsistentData,
		},
		{
			name: "missing lost entry",
			mutate: func(d *ChapterLossData) {
				delete(d.LostCharacters, "a")
			},
			err: ErrInconsistentData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validChapterData()
			tt.mutate(&data)
			if err := data.Validate(); !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestChapterLossDataValidateRecordChapterMismatch(t *testing.T) {
	data := validChapterData()
	record := data.LossHistory[0]
	record.ChapterID = "other"
	data.LossHistory[0] = record

	err := data.Validate()
	if err == nil || !strings.Contains(err.Error(), "belongs to chapter") {
		t.Fatalf("expected chapter mismatch error, got %v", err)
	}
}

func TestChapterLossDataCloneIsDeep(t *testing.T) {
	data := validChapterData()
	clone := data.Clone()

	clone.LostCharacters["a"] = testLostCharacter("mutated", 9)
	clone.LossHistory[0].StageID = "mutated"
	*clone.LossHistory[0].Position = Position{X: 99, Y: 99}

	if data.LostCharacters["a"].CharacterID != "a" {
		t.Fatal("expected original lost map untouched")
	}
	if data.LossHistory[0].StageID == "mutated" {
		t.Fatal("expected original history untouched")
	}
	if data.LossHistory[0].Position.X == 99 {
		t.Fatal("expected original position untouched")
	}
}

func TestLostCharacterCloneCopiesPosition(t *testing.T) {
	original := testLostCharacter("a", 1)
	original.Position = &Position{X: 3, Y: 4}

	clone := original.Clone()
	clone.Position.X = 42

	if original.Position.X != 3 {
		t.Fatalf("expected original position untouched, got %d", original.Position.X)
	}
}
