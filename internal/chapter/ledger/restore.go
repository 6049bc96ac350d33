package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
)

// RestoreForRepair loads a blob without structural validation so that
// ValidateAndRepair can correct it afterwards. Regular loads must use
// Deserialize; this path exists for recovery tooling only.
func (l *Ledger) RestoreForRepair(data domain.ChapterLossData) error {
	if strings.TrimSpace(data.ChapterID) == "" {
		return errors.New(errors.CodeSaveDataCorrupted, "chapter data has no chapter id")
	}

	restored := data.Clone()
	l.chapterID = restored.ChapterID
	l.lost = restored.LostCharacters
	if l.lost == nil {
		l.lost = make(map[string]domain.LostCharacter)
	}
	l.history = restored.LossHistory
	l.startedAt = restored.ChapterStart
	if l.startedAt.IsZero() {
		l.startedAt = l.now()
	}
	l.initialized = true

	l.participants = make(map[string]struct{}, len(l.lost))
	l.currentTurn = 1
	for id := range l.lost {
		l.participants[id] = struct{}{}
	}
	for _, record := range l.history {
		l.participants[record.CharacterID] = struct{}{}
		if record.Turn > l.currentTurn {
			l.currentTurn = record.Turn
		}
	}
	return nil
}

// RepairHook adapts ValidateAndRepair into the persistence gateway's
// first recovery tier: blobs that still parse as JSON are loaded
// leniently, repaired in place, and re-serialized. Blobs that fail to
// parse at all are beyond this tier.
type RepairHook struct{}

// NewRepairHook creates the ledger-backed recovery hook.
func NewRepairHook() RepairHook {
	return RepairHook{}
}

// RepairChapterData attempts a structural repair of a corrupted blob.
func (RepairHook) RepairChapterData(_ context.Context, chapterID string, raw []byte, _ error) ([]byte, error) {
	var data domain.ChapterLossData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(errors.CodeSaveDataCorrupted, "blob is not parseable", err)
	}
	if strings.TrimSpace(data.ChapterID) == "" {
		data.ChapterID = chapterID
	}
	if data.Version == "" {
		data.Version = domain.DataVersion
	}
	if data.Version != domain.DataVersion {
		return nil, errors.New(errors.CodeSaveDataCorrupted, "unsupported data version")
	}
	if data.ChapterStart.IsZero() {
		data.ChapterStart = time.Now().UTC()
	}

	l := New()
	if err := l.RestoreForRepair(data); err != nil {
		return nil, err
	}
	l.ValidateAndRepair()

	repaired, err := json.Marshal(l.Serialize())
	if err != nil {
		return nil, errors.Wrap(errors.CodeSystemError, "marshal repaired data", err)
	}
	return repaired, nil
}
