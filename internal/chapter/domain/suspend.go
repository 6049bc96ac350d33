package domain

import (
	"fmt"
	"strings"
	"time"
)

// SuspendVersion is the schema version stamped on suspend records.
const SuspendVersion = "1.0.0"

// UnitState is the per-unit tactical state captured by a suspend record.
type UnitState struct {
	ID        string   `json:"id"`
	CurrentHP int      `json:"currentHp"`
	Position  Position `json:"position"`
	Acted     bool     `json:"acted"`
}

// SuspendRecord captures the full tactical state needed to resume a
// chapter mid-session. It is layered on top of the regular loss ledger:
// the ledger persists separately and the suspend record carries only what
// the ledger does not.
type SuspendRecord struct {
	ChapterID   string                 `json:"chapterId"`
	Turn        int                    `json:"turn"`
	Units       []UnitState            `json:"units"`
	Danger      map[string]DangerLevel `json:"dangerLevels"`
	SuspendedAt time.Time              `json:"suspendedAt"`
	Version     string                 `json:"version"`
}

// Validate checks structural validity of a suspend record.
func (r SuspendRecord) Validate() error {
	if strings.TrimSpace(r.ChapterID) == "" {
		return ErrEmptyChapterID
	}
	if r.Version != SuspendVersion {
		return fmt.Errorf("%w: %q", ErrVersionMismatch, r.Version)
	}
	if r.Turn < 1 {
		return ErrInvalidTurn
	}
	if r.SuspendedAt.IsZero() {
		return ErrZeroTimestamp
	}
	for i, unit := range r.Units {
		if strings.TrimSpace(unit.ID) == "" {
			return fmt.Errorf("suspend unit %d: %w", i, ErrEmptyUnitID)
		}
	}
	return nil
}
