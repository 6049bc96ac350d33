package ledger

import (
	"fmt"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

// RepairKind classifies a correction applied by ValidateAndRepair.
type RepairKind string

const (
	// RepairSynthesizedRecord marks a history record created for an
	// orphaned lost-map entry.
	RepairSynthesizedRecord RepairKind = "synthesized_record"
	// RepairRestoredLostEntry marks a lost-map entry rebuilt from a
	// history record.
	RepairRestoredLostEntry RepairKind = "restored_lost_entry"
	// RepairClampedTurn marks a turn number clamped into range.
	RepairClampedTurn RepairKind = "clamped_turn"
	// RepairClampedTimestamp marks a loss timestamp moved inside the
	// chapter epoch.
	RepairClampedTimestamp RepairKind = "clamped_timestamp"
	// RepairDefaultedCause marks a malformed cause replaced with a
	// generic battle defeat.
	RepairDefaultedCause RepairKind = "defaulted_cause"
)

// Repair describes a single correction made to ledger state.
type Repair struct {
	Kind        RepairKind
	CharacterID string
	Detail      string
}

// ValidateAndRepair scans the ledger for structural inconsistencies and
// corrects them in place, returning the repairs performed. Run it after
// loading untrusted or legacy data.
func (l *Ledger) ValidateAndRepair() []Repair {
	if !l.Initialized() {
		return nil
	}

	var repairs []Repair
	now := l.now()

	// Malformed records: clamp turns and timestamps, default bad causes.
	for i := range l.history {
		record := &l.history[i]
		if record.Turn < 1 {
			repairs = append(repairs, Repair{
				Kind:        RepairClampedTurn,
				CharacterID: record.CharacterID,
				Detail:      fmt.Sprintf("turn %d clamped to 1", record.Turn),
			})
			record.Turn = 1
		}
		if record.LostAt.IsZero() || record.LostAt.Before(l.startedAt) || record.LostAt.After(now) {
			repairs = append(repairs, Repair{
				Kind:        RepairClampedTimestamp,
				CharacterID: record.CharacterID,
				Detail:      fmt.Sprintf("timestamp %v moved to chapter start", record.LostAt),
			})
			record.LostAt = l.startedAt
		}
		if domain.ValidateLossCause(record.Cause) != nil {
			repairs = append(repairs, Repair{
				Kind:        RepairDefaultedCause,
				CharacterID: record.CharacterID,
				Detail:      fmt.Sprintf("cause kind %q replaced", record.Cause.Kind),
			})
			record.Cause = domain.LossCause{
				Kind:        domain.CauseBattleDefeat,
				Description: "defeated in battle",
				OccurredAt:  record.LostAt,
			}
		}
		if record.ChapterID != l.chapterID {
			record.ChapterID = l.chapterID
		}
	}

	// History records missing from the lost map.
	for _, record := range l.history {
		if _, ok := l.lost[record.CharacterID]; ok {
			continue
		}
		l.lost[record.CharacterID] = record.LostCharacter.Clone()
		l.participants[record.CharacterID] = struct{}{}
		repairs = append(repairs, Repair{
			Kind:        RepairRestoredLostEntry,
			CharacterID: record.CharacterID,
			Detail:      "lost-map entry rebuilt from history",
		})
	}

	// Orphaned lost-map entries with no history record.
	inHistory := make(map[string]struct{}, len(l.history))
	for _, record := range l.history {
		inHistory[record.CharacterID] = struct{}{}
	}
	for id, lc := range l.lost {
		if _, ok := inHistory[id]; ok {
			continue
		}
		l.history = append(l.history, domain.LossRecord{
			ID:            l.newRecordID(),
			LostCharacter: lc.Clone(),
			ChapterID:     l.chapterID,
		})
		l.participants[id] = struct{}{}
		repairs = append(repairs, Repair{
			Kind:        RepairSynthesizedRecord,
			CharacterID: id,
			Detail:      "history record synthesized for orphaned lost entry",
		})
	}

	// Restore the turn high-water mark from the repaired history.
	for _, record := range l.history {
		if record.Turn > l.currentTurn {
			l.currentTurn = record.Turn
		}
	}

	return repairs
}
