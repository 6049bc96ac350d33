package orchestrator

import (
	"context"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

// Collaborator interfaces. Every collaborator is optional: a nil field
// means the orchestrator skips the corresponding calls. Failures in
// collaborator calls are recorded in telemetry and never abort the
// record-and-persist path once it is reached.

// Recruitment finalizes or cancels pending recruitment bookkeeping when a
// recruited unit is lost.
type Recruitment interface {
	HandleNPCLoss(ctx context.Context, unit domain.Unit) error
}

// GameState is the external authority for unit state and the turn counter.
type GameState interface {
	// UpdateUnit pushes a unit snapshot back to the game state.
	UpdateUnit(ctx context.Context, unit domain.Unit) error
	// CurrentTurn reads the authoritative chapter-relative turn number.
	CurrentTurn(ctx context.Context) (int, error)
}

// Presentation owns loss animation and danger effects. Purely advisory.
type Presentation interface {
	// PlayLossAnimation plays the loss sequence for a unit. The call
	// blocks until the animation completes or ctx is done.
	PlayLossAnimation(ctx context.Context, unit domain.Unit, cause domain.LossCause) error
	// ShowDangerEffect marks a unit as endangered.
	ShowDangerEffect(ctx context.Context, characterID string, level domain.DangerLevel) error
	// HideDangerEffect clears a unit's danger marker.
	HideDangerEffect(ctx context.Context, characterID string) error
}

// Notice is a user-facing notification surfaced through the UI
// collaborator.
type Notice struct {
	Code        string
	Message     string
	Dismissible bool
}

// UI receives derived views and notifications. It never mutates loss
// state.
type UI interface {
	// Notify surfaces a notice to the player.
	Notify(ctx context.Context, notice Notice)
	// RefreshParty tells the UI to re-render party and roster views.
	RefreshParty(ctx context.Context) error
	// ShowGameOver presents the terminal defeat screen.
	ShowGameOver(ctx context.Context, info GameOverInfo) error
}

// Recovery may repair a malformed unit reported in a loss notification
// before the orchestrator gives up on it.
type Recovery interface {
	RepairUnit(ctx context.Context, unit domain.Unit, cause error) (domain.Unit, error)
}
