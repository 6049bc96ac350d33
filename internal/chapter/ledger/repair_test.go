package ledger

import (
	"testing"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

func repairKinds(repairs []Repair) map[RepairKind]int {
	kinds := make(map[RepairKind]int)
	for _, repair := range repairs {
		kinds[repair.Kind]++
	}
	return kinds
}

func TestValidateAndRepairCleanLedger(t *testing.T) {
	l := initializedLedger(t)
	if _, err := l.RecordLoss(playerUnit("a"), domain.NewBattleDefeat("e1", 5)); err != nil {
		t.Fatalf("record loss: %v", err)
	}

	if repairs := l.ValidateAndRepair(); len(repairs) != 0 {
		t.Fatalf("expected no repairs on clean ledger, got %v", repairs)
	}
}

func TestValidateAndRepairOrphanedLostEntry(t *testing.T) {
	l := initializedLedger(t)
	l.lost["ghost"] = domain.LostCharacter{
		CharacterID: "ghost",
		Name:        "Ghost",
		LostAt:      l.startedAt.Add(time.Minute),
		Turn:        2,
		Cause:       domain.NewBattleDefeat("e1", 3),
	}

	repairs := l.ValidateAndRepair()
	if repairKinds(repairs)[RepairSynthesizedRecord] != 1 {
		t.Fatalf("expected synthesized record repair, got %v", repairs)
	}
	if err := l.Serialize().Validate(); err != nil {
		t.Fatalf("expected consistent state after repair: %v", err)
	}
}

func TestValidateAndRepairMissingLostEntry(t *testing.T) {
	l := initializedLedger(t)
	if _, err := l.RecordLoss(playerUnit("a"), domain.NewBattleDefeat("e1", 5)); err != nil {
		t.Fatalf("record loss: %v", err)
	}
	delete(l.lost, "a")

	repairs := l.ValidateAndRepair()
	if repairKinds(repairs)[RepairRestoredLostEntry] != 1 {
		t.Fatalf("expected restored lost entry repair, got %v", repairs)
	}
	if !l.IsLost("a") {
		t.Fatal("expected a lost after repair")
	}
}

func TestValidateAndRepairMalformedRecords(t *testing.T) {
	l := initializedLedger(t)
	if _, err := l.RecordLoss(playerUnit("a"), domain.NewBattleDefeat("e1", 5)); err != nil {
		t.Fatalf("record loss: %v", err)
	}
	l.history[0].Turn = -3
	l.history[0].LostAt = time.Time{}
	l.history[0].Cause = domain.LossCause{Kind: "???"}

	repairs := l.ValidateAndRepair()
	kinds := repairKinds(repairs)
	if kinds[RepairClampedTurn] != 1 || kinds[RepairClampedTimestamp] != 1 || kinds[RepairDefaultedCause] != 1 {
		t.Fatalf("expected turn, timestamp and cause repairs, got %v", repairs)
	}

	record := l.LossHistory()[0]
	if record.Turn != 1 {
		t.Fatalf("expected clamped turn 1, got %d", record.Turn)
	}
	if !record.LostAt.Equal(l.startedAt) {
		t.Fatalf("expected timestamp at chapter start, got %v", record.LostAt)
	}
	if record.Cause.Kind != domain.CauseBattleDefeat {
		t.Fatalf("expected defaulted cause, got %q", record.Cause.Kind)
	}
}

func TestValidateAndRepairFutureTimestamp(t *testing.T) {
	l := initializedLedger(t)
	if _, err := l.RecordLoss(playerUnit("a"), domain.NewBattleDefeat("e1", 5)); err != nil {
		t.Fatalf("record loss: %v", err)
	}
	l.history[0].LostAt = time.Now().Add(48 * time.Hour)

	repairs := l.ValidateAndRepair()
	if repairKinds(repairs)[RepairClampedTimestamp] != 1 {
		t.Fatalf("expected clamped timestamp repair, got %v", repairs)
	}
}

func TestValidateAndRepairUninitialized(t *testing.T) {
	l := New()
	if repairs := l.ValidateAndRepair(); repairs != nil {
		t.Fatalf("expected nil repairs on uninitialized ledger, got %v", repairs)
	}
}

func TestValidateAndRepairRestoresTurnHighWater(t *testing.T) {
	l := initializedLedger(t)
	if _, err := l.RecordLoss(playerUnit("a"), domain.NewBattleDefeat("e1", 5)); err != nil {
		t.Fatalf("record loss: %v", err)
	}
	l.history[0].Turn = 9
	l.currentTurn = 1

	l.ValidateAndRepair()

	if l.CurrentTurn() != 9 {
		t.Fatalf("expected turn high-water 9, got %d", l.CurrentTurn())
	}
}
