package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DataVersion is the schema version stamped on persisted chapter blobs.
const DataVersion = "1.0.0"

var (
	// ErrVersionMismatch indicates an unsupported persisted schema version.
	ErrVersionMismatch = errors.New("unsupported chapter data version")
	// ErrInconsistentData indicates the lost map and history disagree.
	ErrInconsistentData = errors.New("lost characters and loss history are inconsistent")
)

// ChapterLossData is the persisted form of a chapter's loss state.
type ChapterLossData struct {
	ChapterID      string                   `json:"chapterId"`
	LostCharacters map[string]LostCharacter `json:"lostCharacters"`
	LossHistory    []LossRecord             `json:"lossHistory"`
	ChapterStart   time.Time                `json:"chapterStartTime"`
	Version        string                   `json:"version"`
}

// NewChapterLossData builds an empty, valid blob for a chapter.
func NewChapterLossData(chapterID string, start time.Time) ChapterLossData {
	return ChapterLossData{
		ChapterID:      chapterID,
		LostCharacters: make(map[string]LostCharacter),
		LossHistory:    nil,
		ChapterStart:   start.UTC(),
		Version:        DataVersion,
	}
}

// Clone returns a deep copy of the blob.
func (d ChapterLossData) Clone() ChapterLossData {
	copied := d
	copied.LostCharacters = make(map[string]LostCharacter, len(d.LostCharacters))
	for id, lc := range d.LostCharacters {
		copied.LostCharacters[id] = lc.Clone()
	}
	copied.LossHistory = make([]LossRecord, len(d.LossHistory))
	for i, record := range d.LossHistory {
		cloned := record
		cloned.LostCharacter = record.LostCharacter.Clone()
		copied.LossHistory[i] = cloned
	}
	return copied
}

// Validate checks structural validity of a persisted blob, including the
// lost-map/history consistency invariant.
func (d ChapterLossData) Validate() error {
	if strings.TrimSpace(d.ChapterID) == "" {
		return ErrEmptyChapterID
	}
	if d.Version != DataVersion {
		return fmt.Errorf("%w: %q", ErrVersionMismatch, d.Version)
	}
	if d.ChapterStart.IsZero() {
		return fmt.Errorf("chapter start time is required")
	}

	for id, lc := range d.LostCharacters {
		if id != lc.CharacterID {
			return fmt.Errorf("lost map key %q does not match character id %q", id, lc.CharacterID)
		}
		if err := lc.Validate(); err != nil {
			return fmt.Errorf("lost character %q: %w", id, err)
		}
	}

	historyIDs := make(map[string]struct{}, len(d.LossHistory))
	for i, record := range d.LossHistory {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("loss record %d: %w", i, err)
		}
		if record.ChapterID != d.ChapterID {
			return fmt.Errorf("loss record %d belongs to chapter %q, not %q", i, record.ChapterID, d.ChapterID)
		}
		historyIDs[record.CharacterID] = struct{}{}
	}

	// A character is in the lost map iff at least one history record exists.
	for id := range d.LostCharacters {
		if _, ok := historyIDs[id]; !ok {
			return fmt.Errorf("%w: %q has no history record", ErrInconsistentData, id)
		}
	}
	for id := range historyIDs {
		if _, ok := d.LostCharacters[id]; !ok {
			return fmt.Errorf("%w: %q missing from lost map", ErrInconsistentData, id)
		}
	}
	return nil
}
