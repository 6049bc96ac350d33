package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

func TestRestoreForRepairAcceptsInvalidData(t *testing.T) {
	start := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	data := domain.NewChapterLossData("ch-1", start)
	// Orphaned lost entry with no history record fails Deserialize but
	// must load through the repair path.
	data.LostCharacters["ghost"] = domain.LostCharacter{
		CharacterID: "ghost",
		Name:        "Ghost",
		LostAt:      start.Add(time.Minute),
		Turn:        3,
		Cause:       domain.NewBattleDefeat("enemy", 10),
	}

	l := New()
	if err := l.Deserialize(data); err == nil {
		t.Fatal("expected Deserialize to reject inconsistent data")
	}
	if err := l.RestoreForRepair(data); err != nil {
		t.Fatalf("restore for repair: %v", err)
	}

	repairs := l.ValidateAndRepair()
	if len(repairs) != 1 || repairs[0].Kind != RepairSynthesizedRecord {
		t.Fatalf("expected one synthesized record, got %v", repairs)
	}
	if err := l.Serialize().Validate(); err != nil {
		t.Fatalf("expected repaired state to validate, got %v", err)
	}
	if l.CurrentTurn() != 3 {
		t.Fatalf("expected turn restored from lost entry, got %d", l.CurrentTurn())
	}
}

func TestRestoreForRepairRequiresChapterID(t *testing.T) {
	l := New()
	if err := l.RestoreForRepair(domain.ChapterLossData{}); err == nil {
		t.Fatal("expected error for blank chapter id")
	}
}

func TestRepairHookRejectsUnparseableBlob(t *testing.T) {
	hook := NewRepairHook()
	if _, err := hook.RepairChapterData(context.Background(), "ch-1", []byte("{nope"), nil); err == nil {
		t.Fatal("expected error for unparseable blob")
	}
}

func TestRepairHookFillsMissingChapterID(t *testing.T) {
	start := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	data := domain.NewChapterLossData("", start)
	data.ChapterID = ""
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	repaired, err := NewRepairHook().RepairChapterData(context.Background(), "ch-1", raw, nil)
	if err != nil {
		t.Fatalf("repair: %v", err)
	}

	var out domain.ChapterLossData
	if err := json.Unmarshal(repaired, &out); err != nil {
		t.Fatalf("unmarshal repaired: %v", err)
	}
	if out.ChapterID != "ch-1" {
		t.Fatalf("expected chapter id filled in, got %q", out.ChapterID)
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("expected repaired blob to validate, got %v", err)
	}
}
