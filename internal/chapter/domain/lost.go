package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyCharacterID indicates a record without a character id.
	ErrEmptyCharacterID = errors.New("character id is required")
	// ErrEmptyChapterID indicates a record without a chapter id.
	ErrEmptyChapterID = errors.New("chapter id is required")
	// ErrInvalidTurn indicates a turn number below 1.
	ErrInvalidTurn = errors.New("turn number must be at least 1")
	// ErrZeroTimestamp indicates a missing loss timestamp.
	ErrZeroTimestamp = errors.New("loss timestamp is required")
)

// LostCharacter is a snapshot taken at the moment of loss.
type LostCharacter struct {
	CharacterID string    `json:"characterId"`
	Name        string    `json:"name"`
	LostAt      time.Time `json:"lostAt"`
	Turn        int       `json:"turn"`
	Cause       LossCause `json:"cause"`
	Level       int       `json:"level"`
	Recruited   bool      `json:"recruited"`
	Position    *Position `json:"position,omitempty"`
}

// NewLostCharacter snapshots a unit at its moment of loss. The turn is
// clamped to at least 1.
func NewLostCharacter(unit Unit, cause LossCause, turn int, lostAt time.Time) (LostCharacter, error) {
	if strings.TrimSpace(unit.ID) == "" {
		return LostCharacter{}, ErrEmptyCharacterID
	}
	if err := ValidateLossCause(cause); err != nil {
		return LostCharacter{}, err
	}
	if turn < 1 {
		turn = 1
	}

	position := unit.Position
	return LostCharacter{
		CharacterID: unit.ID,
		Name:        unit.Name,
		LostAt:      lostAt.UTC(),
		Turn:        turn,
		Cause:       cause,
		Level:       unit.Level,
		Recruited:   unit.Recruited,
		Position:    &position,
	}, nil
}

// Clone returns a deep copy.
func (lc LostCharacter) Clone() LostCharacter {
	copied := lc
	if lc.Position != nil {
		position := *lc.Position
		copied.Position = &position
	}
	return copied
}

// Validate checks the structural invariants of a lost-character snapshot.
func (lc LostCharacter) Validate() error {
	if strings.TrimSpace(lc.CharacterID) == "" {
		return ErrEmptyCharacterID
	}
	if lc.LostAt.IsZero() {
		return ErrZeroTimestamp
	}
	if lc.Turn < 1 {
		return ErrInvalidTurn
	}
	return ValidateLossCause(lc.Cause)
}

// LossRecord extends a lost-character snapshot with its chapter context.
// Records are append-only; the history is the source of truth for audit and
// statistics.
type LossRecord struct {
	ID string `json:"id"`
	LostCharacter
	ChapterID string `json:"chapterId"`
	StageID   string `json:"stageId,omitempty"`
	// Recoverable is false by policy: losses are permanent.
	Recoverable bool `json:"recoverable"`
}

// Validate checks the structural invariants of a loss record.
func (r LossRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("loss record id is required")
	}
	if strings.TrimSpace(r.ChapterID) == "" {
		return ErrEmptyChapterID
	}
	return r.LostCharacter.Validate()
}
