package orchestrator

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/event"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
	"github.com/louisbranch/ironmarch/internal/platform/errors/i18n"
	"github.com/louisbranch/ironmarch/internal/platform/id"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProcessCharacterLoss runs the full loss flow for a defeated unit: it
// validates the notification, records the loss, pushes the zeroed unit
// back to the game state, re-evaluates game-over, recomputes danger
// levels, persists the chapter, and publishes the loss event.
//
// The call is idempotent per character: a second invocation for an
// already-lost character returns the existing record without reprocessing.
// Overlapping invocations are rejected; loss events are expected to arrive
// one at a time on a single logical thread.
func (o *Orchestrator) ProcessCharacterLoss(ctx context.Context, unit domain.Unit, cause domain.LossCause) (domain.LossRecord, error) {
	// A tracing id must never block a loss; fall back to a blank id.
	invocationID, idErr := id.NewID()
	if idErr != nil {
		invocationID = ""
	}
	ctx, span := o.tracer.Start(ctx, "orchestrator.ProcessCharacterLoss",
		trace.WithAttributes(
			attribute.String("character.id", unit.ID),
			attribute.String("loss.invocation_id", invocationID),
		))
	defer span.End()

	if err := o.beginProcessing(); err != nil {
		return domain.LossRecord{}, err
	}
	defer o.endProcessing()

	started := o.clock()
	var presentationTime time.Duration

	// Step 1: the chapter must be active.
	if o.state != StateInitialized {
		var err error
		if o.state == StateCompleted {
			err = errors.New(errors.CodeChapterCompleted, "chapter is already completed")
		} else {
			err = errors.New(errors.CodeChapterNotInitialized, "no active chapter").
				WithRemediation("initialize the chapter before reporting losses")
		}
		o.failLoss(ctx, unit.ID, err, true)
		return domain.LossRecord{}, err
	}

	// Step 2: validate the unit, giving the recovery collaborator one
	// chance to repair a malformed notification.
	unit, err := o.validateUnit(ctx, unit)
	if err != nil {
		o.failLoss(ctx, unit.ID, err, true)
		return domain.LossRecord{}, err
	}

	// Step 3: validate the cause.
	if err := domain.ValidateLossCause(cause); err != nil {
		wrapped := errors.WrapWithMetadata(errors.CodeInvalidLossCause, "loss cause is invalid",
			map[string]string{"character_id": unit.ID}, err)
		o.failLoss(ctx, unit.ID, wrapped, true)
		return domain.LossRecord{}, wrapped
	}

	// Step 4: duplicate losses return the original record.
	if o.ledger.IsLost(unit.ID) {
		span.AddEvent("duplicate loss ignored")
		o.emitter.Info(ctx, "orchestrator", "duplicate loss ignored",
			map[string]string{"character_id": unit.ID, "chapter_id": o.ledger.ChapterID()})
		return o.ledger.RecordLoss(unit, cause)
	}

	// Step 5: recruitment bookkeeping for units that joined mid-campaign.
	if unit.Recruited && o.recruitment != nil {
		if err := o.recruitment.HandleNPCLoss(ctx, unit); err != nil {
			o.emitter.Warn(ctx, "orchestrator", "recruitment handling failed",
				map[string]string{"character_id": unit.ID, "error": err.Error()})
		}
	}

	// Step 6: loss presentation; its duration does not count toward slow detection.
	if !o.skipPresentation && o.presentation != nil {
		presentationStart := o.clock()
		if err := o.presentation.PlayLossAnimation(ctx, unit, cause); err != nil {
			o.emitter.Warn(ctx, "orchestrator", "loss animation failed",
				map[string]string{"character_id": unit.ID, "error": err.Error()})
		}
		presentationTime = o.clock().Sub(presentationStart)
	}

	// Step 7: commit the loss. From here on it is permanent.
	o.syncTurn(ctx)
	record, err := o.ledger.RecordLoss(unit, cause)
	if err != nil {
		o.failLoss(ctx, unit.ID, err, false)
		return domain.LossRecord{}, err
	}

	// Step 8: push the zeroed unit back to the game state.
	lost := unit
	lost.CurrentHP = 0
	o.units[unit.ID] = lost
	if o.gameState != nil {
		if err := o.gameState.UpdateUnit(ctx, lost); err != nil {
			o.emitter.Warn(ctx, "orchestrator", "game state update failed",
				map[string]string{"character_id": unit.ID, "error": err.Error()})
		}
	}

	// Step 9: game-over is announced exactly once.
	o.evaluateGameOver(ctx)

	// Step 10: danger levels change only after the loss is committed.
	o.publishAll(ctx, o.refreshDanger(ctx))

	// Step 11: persist and refresh the UI.
	if o.gateway != nil {
		if err := o.gateway.Save(ctx, o.ledger.Serialize()); err != nil {
			o.failLoss(ctx, unit.ID, err, false)
			return record, err
		}
	}
	if o.ui != nil {
		if err := o.ui.RefreshParty(ctx); err != nil {
			o.emitter.Warn(ctx, "orchestrator", "party refresh failed",
				map[string]string{"error": err.Error()})
		}
	}

	// Step 12: announce the processed loss.
	o.bus.Publish(ctx, event.Event{
		Type:      event.TypeLossProcessed,
		ChapterID: o.ledger.ChapterID(),
		Payload: event.LossProcessed{
			Record:      record,
			TotalLosses: o.ledger.TotalLosses(),
		},
	})

	elapsed := o.clock().Sub(started) - presentationTime
	if elapsed > o.slowThreshold {
		o.bus.Publish(ctx, event.Event{
			Type:      event.TypeSlowProcessing,
			ChapterID: o.ledger.ChapterID(),
			Payload: event.SlowProcessing{
				CharacterID: unit.ID,
				Elapsed:     elapsed,
				Threshold:   o.slowThreshold,
			},
		})
		o.emitter.Warn(ctx, "orchestrator", "slow loss processing",
			map[string]string{"character_id": unit.ID, "elapsed": elapsed.String(), "invocation_id": invocationID})
	}

	return record, nil
}

// beginProcessing acquires the re-entrancy guard. A second loss arriving
// while one is in flight is rejected rather than silently racing.
func (o *Orchestrator) beginProcessing() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return errors.New(errors.CodeLossProcessingFailed, "a loss is already being processed").
			WithRemediation("serialize loss notifications through a single caller")
	}
	o.processing = true
	return nil
}

func (o *Orchestrator) endProcessing() {
	o.mu.Lock()
	o.processing = false
	o.mu.Unlock()
}

// validateUnit checks unit identity, asking the recovery collaborator to
// repair a malformed unit before giving up.
func (o *Orchestrator) validateUnit(ctx context.Context, unit domain.Unit) (domain.Unit, error) {
	err := domain.ValidateUnit(unit)
	if err == nil {
		return unit, nil
	}

	if o.recovery != nil {
		repaired, repairErr := o.recovery.RepairUnit(ctx, unit, err)
		if repairErr == nil && domain.ValidateUnit(repaired) == nil {
			o.emitter.Info(ctx, "orchestrator", "unit repaired by recovery collaborator",
				map[string]string{"character_id": repaired.ID})
			return repaired, nil
		}
	}

	return unit, errors.WrapWithMetadata(errors.CodeInvalidCharacter, "unit failed validation",
		map[string]string{"character_id": unit.ID}, err)
}

// failLoss surfaces a rejected loss: a localized notice through the UI
// and a typed event on the bus. Corruption failures are not dismissible.
func (o *Orchestrator) failLoss(ctx context.Context, characterID string, err error, dismissible bool) {
	code := errors.CodeOf(err)
	if o.ui != nil {
		o.ui.Notify(ctx, Notice{
			Code:        string(code),
			Message:     i18n.GetCatalog(o.locale).Format(string(code), metadataOf(err)),
			Dismissible: dismissible && code.Recoverable(),
		})
	}
	o.bus.Publish(ctx, event.Event{
		Type:      event.TypeLossError,
		ChapterID: o.ledger.ChapterID(),
		Payload: event.LossError{
			CharacterID: characterID,
			Code:        string(code),
			Message:     err.Error(),
			Recoverable: code.Recoverable(),
		},
	})
}

// metadataOf extracts structured context from a domain error for message
// templating.
func metadataOf(err error) map[string]string {
	var de *errors.Error
	if stderrors.As(err, &de) {
		return de.Metadata
	}
	return nil
}

// evaluateGameOver announces terminal defeat the first time every player
// unit is lost.
func (o *Orchestrator) evaluateGameOver(ctx context.Context) {
	if o.gameOverAnnounced || !o.gameOverLocked() {
		return
	}
	o.gameOverAnnounced = true

	info := o.gameOverInfoLocked()
	o.bus.Publish(ctx, event.Event{
		Type:      event.TypeAllLost,
		ChapterID: o.ledger.ChapterID(),
		Payload:   event.AllLost{TotalLosses: info.TotalLosses},
	})
	o.bus.Publish(ctx, event.Event{
		Type:      event.TypeGameOver,
		ChapterID: o.ledger.ChapterID(),
		Payload: event.GameOver{
			TotalLosses: info.TotalLosses,
			FinalTurn:   info.FinalTurn,
		},
	})
	if o.ui != nil {
		if err := o.ui.ShowGameOver(ctx, info); err != nil {
			o.emitter.Warn(ctx, "orchestrator", "game over screen failed",
				map[string]string{"error": err.Error()})
		}
	}
}

// GameOverInfo describes the terminal defeat condition.
type GameOverInfo struct {
	GameOver    bool     `json:"gameOver"`
	TotalLosses int      `json:"totalLosses"`
	FinalTurn   int      `json:"finalTurn"`
	LostIDs     []string `json:"lostIds"`
}

// IsGameOver reports whether every player-faction unit is lost. A roster
// with no player units is never game over. The query mutates nothing.
func (o *Orchestrator) IsGameOver() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gameOverLocked()
}

// GameOverInfo returns the current defeat summary. The query mutates
// nothing.
func (o *Orchestrator) GameOverInfo() GameOverInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gameOverInfoLocked()
}

func (o *Orchestrator) gameOverLocked() bool {
	players := 0
	for id, unit := range o.units {
		if !unit.IsPlayer() {
			continue
		}
		players++
		if !o.ledger.IsLost(id) {
			return false
		}
	}
	return players > 0
}

func (o *Orchestrator) gameOverInfoLocked() GameOverInfo {
	var lostIDs []string
	for id, unit := range o.units {
		if unit.IsPlayer() && o.ledger.IsLost(id) {
			lostIDs = append(lostIDs, id)
		}
	}
	sort.Strings(lostIDs)

	return GameOverInfo{
		GameOver:    o.gameOverLocked(),
		TotalLosses: o.ledger.TotalLosses(),
		FinalTurn:   o.ledger.CurrentTurn(),
		LostIDs:     lostIDs,
	}
}
