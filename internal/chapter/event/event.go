// Package event defines the typed notification surface of the chapter
// engine. Collaborating subsystems subscribe to the Bus; the orchestrator
// publishes facts after the state change they describe has been committed.
package event

import (
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

// Type identifies the kind of a chapter event.
type Type string

// Chapter lifecycle events.
const (
	// TypeChapterInitialized records a chapter starting with its roster.
	TypeChapterInitialized Type = "chapter.initialized"
	// TypeChapterCompleted records a chapter formally completing.
	TypeChapterCompleted Type = "chapter.completed"
	// TypeChapterSuspended records a chapter being suspended mid-session.
	TypeChapterSuspended Type = "chapter.suspended"
	// TypeChapterResumed records a suspended chapter being restored.
	TypeChapterResumed Type = "chapter.resumed"
)

// Loss events.
const (
	// TypeLossProcessed records a completed character loss.
	TypeLossProcessed Type = "loss.processed"
	// TypeLossError records a rejected or failed loss attempt.
	TypeLossError Type = "loss.error"
	// TypeDangerChanged records a unit's danger level transition.
	TypeDangerChanged Type = "danger.changed"
	// TypeAllLost records the defeat of every player-faction unit.
	TypeAllLost Type = "party.all_lost"
	// TypeGameOver records the terminal defeat notification.
	TypeGameOver Type = "game.over"
)

// Diagnostics.
const (
	// TypeSlowProcessing records a loss invocation exceeding the
	// configured processing threshold.
	TypeSlowProcessing Type = "perf.slow_processing"
)

// Event is a single published notification.
type Event struct {
	Type      Type
	ChapterID string
	Timestamp time.Time
	Payload   any
}

// ChapterInitialized is the payload for TypeChapterInitialized.
type ChapterInitialized struct {
	RosterSize   int
	PlayerUnits  int
	StartedAt    time.Time
	ResumedState bool
}

// LossProcessed is the payload for TypeLossProcessed.
type LossProcessed struct {
	Record      domain.LossRecord
	TotalLosses int
}

// LossError is the payload for TypeLossError.
type LossError struct {
	CharacterID string
	Code        string
	Message     string
	Recoverable bool
}

// DangerChanged is the payload for TypeDangerChanged.
type DangerChanged struct {
	CharacterID string
	Previous    domain.DangerLevel
	Current     domain.DangerLevel
}

// AllLost is the payload for TypeAllLost.
type AllLost struct {
	TotalLosses int
}

// GameOver is the payload for TypeGameOver.
type GameOver struct {
	TotalLosses int
	FinalTurn   int
}

// ChapterCompleted is the payload for TypeChapterCompleted.
type ChapterCompleted struct {
	Summary domain.ChapterLossSummary
}

// ChapterSuspended is the payload for TypeChapterSuspended.
type ChapterSuspended struct {
	Turn int
}

// ChapterResumed is the payload for TypeChapterResumed.
type ChapterResumed struct {
	Turn        int
	TotalLosses int
}

// SlowProcessing is the payload for TypeSlowProcessing.
type SlowProcessing struct {
	CharacterID string
	Elapsed     time.Duration
	Threshold   time.Duration
}
