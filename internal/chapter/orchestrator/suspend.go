package orchestrator

import (
	"context"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/event"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
)

// SuspendChapter captures the mid-session tactical state (turn, per-unit
// HP/position/acted flags, danger levels) alongside the regular ledger
// snapshot so the chapter can be resumed later.
func (o *Orchestrator) SuspendChapter(ctx context.Context) error {
	ctx, span := o.tracer.Start(ctx, "orchestrator.SuspendChapter")
	defer span.End()

	evt, err := o.suspendChapter(ctx)
	if err != nil {
		return err
	}
	o.bus.Publish(ctx, evt)
	return nil
}

func (o *Orchestrator) suspendChapter(ctx context.Context) (event.Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCompleted {
		return event.Event{}, errors.New(errors.CodeChapterCompleted, "chapter is already completed")
	}
	if o.state != StateInitialized {
		return event.Event{}, errors.New(errors.CodeChapterNotInitialized, "no active chapter to suspend")
	}
	if o.processing {
		return event.Event{}, errors.New(errors.CodeLossProcessingFailed, "cannot suspend while a loss is being processed")
	}
	if o.gateway == nil {
		return event.Event{}, errors.New(errors.CodeStorageFailed, "no persistence gateway configured")
	}

	record := domain.SuspendRecord{
		ChapterID:   o.ledger.ChapterID(),
		Turn:        o.ledger.CurrentTurn(),
		SuspendedAt: o.clock().UTC(),
		Version:     domain.SuspendVersion,
		Danger:      make(map[string]domain.DangerLevel, len(o.danger)),
	}
	for id, level := range o.danger {
		record.Danger[id] = level
	}
	for _, unit := range o.rosterLocked() {
		record.Units = append(record.Units, domain.UnitState{
			ID:        unit.ID,
			CurrentHP: unit.CurrentHP,
			Position:  unit.Position,
			Acted:     unit.Acted,
		})
	}

	if err := o.gateway.Save(ctx, o.ledger.Serialize()); err != nil {
		return event.Event{}, err
	}
	if err := o.gateway.SaveSuspend(ctx, record); err != nil {
		return event.Event{}, err
	}

	return event.Event{
		Type:      event.TypeChapterSuspended,
		ChapterID: record.ChapterID,
		Payload:   event.ChapterSuspended{Turn: record.Turn},
	}, nil
}

// ResumeChapter restores a suspended chapter: the persisted ledger first,
// then the suspend record's tactical state layered over the roster. The
// suspend record is consumed; a successful resume deletes it.
func (o *Orchestrator) ResumeChapter(ctx context.Context, chapterID string, roster []domain.Unit) error {
	ctx, span := o.tracer.Start(ctx, "orchestrator.ResumeChapter")
	defer span.End()

	if o.gateway == nil {
		return errors.New(errors.CodeStorageFailed, "no persistence gateway configured")
	}

	suspend, err := o.gateway.LoadSuspend(ctx, chapterID)
	if err != nil {
		return err
	}

	if err := o.InitializeChapter(ctx, chapterID, roster); err != nil {
		return err
	}

	o.mu.Lock()
	for _, state := range suspend.Units {
		unit, tracked := o.units[state.ID]
		if !tracked {
			continue
		}
		unit.CurrentHP = state.CurrentHP
		unit.Position = state.Position
		unit.Acted = state.Acted
		o.units[state.ID] = unit
	}
	o.ledger.AdvanceTurn(suspend.Turn)
	changes := o.refreshDanger(ctx)
	turn := o.ledger.CurrentTurn()
	losses := o.ledger.TotalLosses()
	o.mu.Unlock()

	o.publishAll(ctx, changes)

	if err := o.gateway.DeleteSuspend(ctx, chapterID); err != nil {
		o.emitter.Warn(ctx, "orchestrator", "suspend record cleanup failed",
			map[string]string{"chapter_id": chapterID, "error": err.Error()})
	}

	o.bus.Publish(ctx, event.Event{
		Type:      event.TypeChapterResumed,
		ChapterID: chapterID,
		Payload: event.ChapterResumed{
			Turn:        turn,
			TotalLosses: losses,
		},
	})
	return nil
}
