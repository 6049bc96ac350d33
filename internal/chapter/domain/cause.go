package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CauseKind discriminates why a character was lost.
type CauseKind string

const (
	// CauseBattleDefeat is an ordinary combat defeat.
	CauseBattleDefeat CauseKind = "battle_defeat"
	// CauseCriticalDefeat is a defeat by critical hit.
	CauseCriticalDefeat CauseKind = "critical_defeat"
	// CauseStatusDefeat is a defeat by a damaging status effect.
	CauseStatusDefeat CauseKind = "status_defeat"
	// CauseEnvironmental is terrain or hazard damage.
	CauseEnvironmental CauseKind = "environmental"
	// CauseSacrifice is a scripted or player-chosen sacrifice.
	CauseSacrifice CauseKind = "sacrifice"
)

// IsValid reports whether k is a recognised cause kind.
func (k CauseKind) IsValid() bool {
	switch k {
	case CauseBattleDefeat, CauseCriticalDefeat, CauseStatusDefeat, CauseEnvironmental, CauseSacrifice:
		return true
	}
	return false
}

var (
	// ErrInvalidCauseKind indicates an unrecognised cause kind.
	ErrInvalidCauseKind = errors.New("loss cause kind is invalid")
	// ErrEmptyCauseDescription indicates a cause without a description.
	ErrEmptyCauseDescription = errors.New("loss cause description is required")
	// ErrNegativeCauseDamage indicates a negative damage amount.
	ErrNegativeCauseDamage = errors.New("loss cause damage must not be negative")
)

// LossCause describes why a character was lost. Values are immutable after
// creation; construct them through the factory helpers.
type LossCause struct {
	Kind        CauseKind `json:"kind"`
	Description string    `json:"description"`
	SourceID    string    `json:"sourceId,omitempty"`
	Damage      int       `json:"damage,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ValidateLossCause checks structural validity of a cause.
func ValidateLossCause(cause LossCause) error {
	if !cause.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCauseKind, cause.Kind)
	}
	if strings.TrimSpace(cause.Description) == "" {
		return ErrEmptyCauseDescription
	}
	if cause.Damage < 0 {
		return ErrNegativeCauseDamage
	}
	return nil
}

// NewBattleDefeat builds a cause for an ordinary combat defeat.
func NewBattleDefeat(sourceID string, damage int) LossCause {
	return newCause(CauseBattleDefeat, "defeated in battle", sourceID, damage)
}

// NewCriticalDefeat builds a cause for a critical-hit defeat.
func NewCriticalDefeat(sourceID string, damage int) LossCause {
	return newCause(CauseCriticalDefeat, "defeated by critical hit", sourceID, damage)
}

// NewStatusDefeat builds a cause for a status-effect defeat.
func NewStatusDefeat(effect string, damage int) LossCause {
	description := "defeated by status effect"
	if strings.TrimSpace(effect) != "" {
		description = fmt.Sprintf("defeated by %s", effect)
	}
	return newCause(CauseStatusDefeat, description, "", damage)
}

// NewEnvironmentalLoss builds a cause for terrain or hazard damage.
func NewEnvironmentalLoss(hazard string, damage int) LossCause {
	description := "lost to the battlefield"
	if strings.TrimSpace(hazard) != "" {
		description = fmt.Sprintf("lost to %s", hazard)
	}
	return newCause(CauseEnvironmental, description, "", damage)
}

// NewSacrifice builds a cause for a scripted or chosen sacrifice.
func NewSacrifice(description string) LossCause {
	if strings.TrimSpace(description) == "" {
		description = "sacrificed"
	}
	return newCause(CauseSacrifice, description, "", 0)
}

func newCause(kind CauseKind, description, sourceID string, damage int) LossCause {
	return LossCause{
		Kind:        kind,
		Description: description,
		SourceID:    sourceID,
		Damage:      damage,
		OccurredAt:  time.Now().UTC(),
	}
}
