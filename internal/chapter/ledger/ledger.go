// Package ledger implements the in-memory, chapter-scoped record of lost
// characters and full loss history.
//
// The ledger is the source of truth for "who is lost" within a chapter. It
// owns validation, serialization to the persisted form, and the
// lost-map/history consistency invariant. One ledger serves one chapter at
// a time; InitializeChapter resets it for the next.
package ledger

import (
	"math/rand"
	"strings"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
	"github.com/oklog/ulid/v2"
)

// Ledger tracks losses for the active chapter.
type Ledger struct {
	chapterID    string
	lost         map[string]domain.LostCharacter
	history      []domain.LossRecord
	participants map[string]struct{}
	currentTurn  int
	startedAt    time.Time
	initialized  bool

	clock   func() time.Time
	entropy *ulid.MonotonicEntropy
}

// New creates an uninitialized ledger. Call InitializeChapter before
// recording losses.
func New() *Ledger {
	return &Ledger{
		clock:   time.Now,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// InitializeChapter clears all state and starts a new epoch for chapterID.
// Initializing is idempotent in the sense that re-initializing the same
// chapter id simply resets it.
func (l *Ledger) InitializeChapter(chapterID string) error {
	chapterID = strings.TrimSpace(chapterID)
	if chapterID == "" {
		return errors.New(errors.CodeInvalidCharacter, "chapter id is required").
			WithRemediation("provide a non-blank chapter id")
	}

	l.chapterID = chapterID
	l.lost = make(map[string]domain.LostCharacter)
	l.history = nil
	l.participants = make(map[string]struct{})
	l.currentTurn = 1
	l.startedAt = l.now()
	l.initialized = true
	return nil
}

// Initialized reports whether a chapter epoch is active.
func (l *Ledger) Initialized() bool {
	return l != nil && l.initialized
}

// ChapterID returns the active chapter id, or "" before initialization.
func (l *Ledger) ChapterID() string {
	if l == nil {
		return ""
	}
	return l.chapterID
}

// StartedAt returns the chapter epoch start time.
func (l *Ledger) StartedAt() time.Time {
	return l.startedAt
}

// CurrentTurn returns the chapter-relative turn high-water mark.
func (l *Ledger) CurrentTurn() int {
	if l == nil || l.currentTurn < 1 {
		return 1
	}
	return l.currentTurn
}

// AdvanceTurn raises the turn high-water mark. Turns never move backwards;
// values below the current mark are ignored.
func (l *Ledger) AdvanceTurn(turn int) {
	if turn < 1 {
		turn = 1
	}
	if turn > l.currentTurn {
		l.currentTurn = turn
	}
}

// AddParticipants seeds the participating-character set.
func (l *Ledger) AddParticipants(ids ...string) {
	if l.participants == nil {
		l.participants = make(map[string]struct{})
	}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			l.participants[id] = struct{}{}
		}
	}
}

// ParticipantIDs returns the participating-character ids in no particular
// order.
func (l *Ledger) ParticipantIDs() []string {
	ids := make([]string, 0, len(l.participants))
	for id := range l.participants {
		ids = append(ids, id)
	}
	return ids
}

// RecordLoss records the permanent loss of a unit. Recording an
// already-lost character is idempotent: the existing snapshot is returned
// and no duplicate history entry is appended.
func (l *Ledger) RecordLoss(unit domain.Unit, cause domain.LossCause) (domain.LossRecord, error) {
	if !l.Initialized() {
		return domain.LossRecord{}, errors.New(errors.CodeChapterNotInitialized, "chapter is not initialized").
			WithRemediation("call InitializeChapter before recording losses")
	}
	if strings.TrimSpace(unit.ID) == "" {
		return domain.LossRecord{}, errors.WithMetadata(errors.CodeInvalidCharacter, "unit has no id",
			map[string]string{"chapter_id": l.chapterID})
	}
	if err := domain.ValidateLossCause(cause); err != nil {
		return domain.LossRecord{}, errors.WrapWithMetadata(errors.CodeInvalidLossCause, "loss cause is invalid",
			map[string]string{"chapter_id": l.chapterID, "character_id": unit.ID}, err)
	}

	if existing, ok := l.lost[unit.ID]; ok {
		return l.recordFor(existing), nil
	}

	snapshot, err := domain.NewLostCharacter(unit, cause, l.CurrentTurn(), l.now())
	if err != nil {
		return domain.LossRecord{}, errors.Wrap(errors.CodeInvalidCharacter, "snapshot lost character", err)
	}

	record := domain.LossRecord{
		ID:            l.newRecordID(),
		LostCharacter: snapshot.Clone(),
		ChapterID:     l.chapterID,
		Recoverable:   false,
	}

	l.lost[unit.ID] = snapshot
	l.history = append(l.history, record)
	l.participants[unit.ID] = struct{}{}
	return record, nil
}

// IsLost reports whether the character has been lost this chapter. Blank
// and unknown ids report false.
func (l *Ledger) IsLost(id string) bool {
	if l == nil || !l.initialized {
		return false
	}
	_, ok := l.lost[strings.TrimSpace(id)]
	return ok
}

// LostCharacter returns the loss snapshot for id. The second return is
// false for blank or unknown ids.
func (l *Ledger) LostCharacter(id string) (domain.LostCharacter, bool) {
	if l == nil || !l.initialized {
		return domain.LostCharacter{}, false
	}
	lc, ok := l.lost[strings.TrimSpace(id)]
	if !ok {
		return domain.LostCharacter{}, false
	}
	return lc.Clone(), true
}

// TotalLosses returns the number of distinct lost characters.
func (l *Ledger) TotalLosses() int {
	if l == nil {
		return 0
	}
	return len(l.lost)
}

// LossHistory returns a copy of the append-only loss history.
func (l *Ledger) LossHistory() []domain.LossRecord {
	history := make([]domain.LossRecord, len(l.history))
	for i, record := range l.history {
		cloned := record
		cloned.LostCharacter = record.LostCharacter.Clone()
		history[i] = cloned
	}
	return history
}

// Statistics aggregates the loss history.
func (l *Ledger) Statistics() domain.LossStatistics {
	return domain.ComputeLossStatistics(l.history)
}

// Summary computes and validates the chapter summary.
func (l *Ledger) Summary(chapterName string) (domain.ChapterLossSummary, error) {
	if !l.Initialized() {
		return domain.ChapterLossSummary{}, errors.New(errors.CodeChapterNotInitialized, "chapter is not initialized")
	}

	lost := make([]domain.LostCharacter, 0, len(l.history))
	seen := make(map[string]struct{}, len(l.history))
	for _, record := range l.history {
		if _, ok := seen[record.CharacterID]; ok {
			continue
		}
		seen[record.CharacterID] = struct{}{}
		lost = append(lost, record.LostCharacter.Clone())
	}

	survivors := make([]string, 0, len(l.participants))
	for id := range l.participants {
		if _, ok := l.lost[id]; !ok {
			survivors = append(survivors, id)
		}
	}

	summary := domain.ChapterLossSummary{
		ChapterID:       l.chapterID,
		ChapterName:     chapterName,
		TotalCharacters: len(l.participants),
		Lost:            lost,
		SurvivorIDs:     survivors,
		Duration:        l.now().Sub(l.startedAt),
		TotalTurns:      l.CurrentTurn(),
		PerfectClear:    len(l.lost) == 0,
	}

	// Defensive: a summary failing its own validation means the ledger
	// state is inconsistent.
	if err := summary.Validate(); err != nil {
		return domain.ChapterLossSummary{}, errors.Wrap(errors.CodeSystemError, "chapter summary failed validation", err)
	}
	return summary, nil
}

// Serialize snapshots the full chapter state into its persisted form.
func (l *Ledger) Serialize() domain.ChapterLossData {
	data := domain.ChapterLossData{
		ChapterID:      l.chapterID,
		LostCharacters: l.lost,
		LossHistory:    l.history,
		ChapterStart:   l.startedAt,
		Version:        domain.DataVersion,
	}
	return data.Clone()
}

// Deserialize replaces the ledger state with a persisted blob. The
// participating-character set and turn high-water mark are rebuilt from the
// loss history; a transmitted turn value is never trusted on its own.
func (l *Ledger) Deserialize(data domain.ChapterLossData) error {
	if err := data.Validate(); err != nil {
		return errors.WrapWithMetadata(errors.CodeSaveDataCorrupted, "chapter data failed validation",
			map[string]string{"chapter_id": data.ChapterID}, err).
			WithRemediation("run validate-and-repair or restore the backup copy")
	}

	restored := data.Clone()
	l.chapterID = restored.ChapterID
	l.lost = restored.LostCharacters
	l.history = restored.LossHistory
	l.startedAt = restored.ChapterStart
	l.initialized = true

	l.participants = make(map[string]struct{}, len(restored.LostCharacters))
	l.currentTurn = 1
	for _, record := range restored.LossHistory {
		l.participants[record.CharacterID] = struct{}{}
		if record.Turn > l.currentTurn {
			l.currentTurn = record.Turn
		}
	}
	return nil
}

// Cleanup discards all chapter state. The ledger must be re-initialized
// before further use.
func (l *Ledger) Cleanup() {
	l.chapterID = ""
	l.lost = nil
	l.history = nil
	l.participants = nil
	l.currentTurn = 0
	l.startedAt = time.Time{}
	l.initialized = false
}

func (l *Ledger) now() time.Time {
	if l.clock == nil {
		return time.Now().UTC()
	}
	return l.clock().UTC()
}

func (l *Ledger) newRecordID() string {
	id, err := ulid.New(ulid.Timestamp(l.now()), l.entropy)
	if err != nil {
		// Entropy exhaustion within one millisecond; fall back to a
		// non-monotonic id rather than failing the loss.
		return ulid.MustNew(ulid.Now(), ulid.DefaultEntropy()).String()
	}
	return id.String()
}

// recordFor finds the history record for an already-lost character. The
// consistency invariant guarantees one exists; a synthesized record is
// returned if it does not.
func (l *Ledger) recordFor(lc domain.LostCharacter) domain.LossRecord {
	for _, record := range l.history {
		if record.CharacterID == lc.CharacterID {
			cloned := record
			cloned.LostCharacter = record.LostCharacter.Clone()
			return cloned
		}
	}
	return domain.LossRecord{
		ID:            l.newRecordID(),
		LostCharacter: lc.Clone(),
		ChapterID:     l.chapterID,
	}
}

