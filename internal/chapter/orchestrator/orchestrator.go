// Package orchestrator drives chapter-scoped loss processing: the chapter
// lifecycle state machine, the character-loss flow, game-over evaluation,
// danger tracking, and suspend/resume.
//
// One orchestrator instance owns one chapter at a time. It is the only
// writer of the chapter's ledger and persisted data; no cross-process
// coordination is performed, so two instances pointed at the same chapter
// id would race with last-writer-wins semantics.
package orchestrator

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/chapter/event"
	"github.com/louisbranch/ironmarch/internal/chapter/ledger"
	"github.com/louisbranch/ironmarch/internal/chapter/party"
	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
	"github.com/louisbranch/ironmarch/internal/platform/errors/i18n"
	"github.com/louisbranch/ironmarch/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// State is the chapter lifecycle state.
type State string

const (
	// StateUninitialized is the state before InitializeChapter.
	StateUninitialized State = "uninitialized"
	// StateInitialized is the active state accepting loss events.
	StateInitialized State = "initialized"
	// StateCompleted is the terminal state after CompleteChapter.
	StateCompleted State = "completed"
)

// DefaultSlowLossThreshold flags loss invocations slower than this when no
// threshold is configured.
const DefaultSlowLossThreshold = 200 * time.Millisecond

// Orchestrator coordinates loss processing for the active chapter.
type Orchestrator struct {
	mu                sync.Mutex
	state             State
	processing        bool
	ledger            *ledger.Ledger
	units             map[string]domain.Unit
	danger            map[string]domain.DangerLevel
	gameOverAnnounced bool

	gateway *persist.Gateway
	bus     *event.Bus

	recruitment  Recruitment
	gameState    GameState
	presentation Presentation
	ui           UI
	recovery     Recovery

	emitter          *telemetry.Emitter
	tracer           trace.Tracer
	clock            func() time.Time
	slowThreshold    time.Duration
	skipPresentation bool
	partyBounds      party.Bounds
	locale           string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecruitment installs the recruitment collaborator.
func WithRecruitment(r Recruitment) Option {
	return func(o *Orchestrator) { o.recruitment = r }
}

// WithGameState installs the game-state collaborator.
func WithGameState(gs GameState) Option {
	return func(o *Orchestrator) { o.gameState = gs }
}

// WithPresentation installs the presentation collaborator.
func WithPresentation(p Presentation) Option {
	return func(o *Orchestrator) { o.presentation = p }
}

// WithUI installs the UI collaborator.
func WithUI(ui UI) Option {
	return func(o *Orchestrator) { o.ui = ui }
}

// WithRecovery installs the error-recovery collaborator.
func WithRecovery(r Recovery) Option {
	return func(o *Orchestrator) { o.recovery = r }
}

// WithTelemetry installs the telemetry emitter.
func WithTelemetry(emitter *telemetry.Emitter) Option {
	return func(o *Orchestrator) { o.emitter = emitter }
}

// WithClock overrides the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSlowLossThreshold sets the processing-time warning threshold.
func WithSlowLossThreshold(threshold time.Duration) Option {
	return func(o *Orchestrator) {
		if threshold > 0 {
			o.slowThreshold = threshold
		}
	}
}

// WithSkipPresentation disables loss animation for headless processing.
func WithSkipPresentation(skip bool) Option {
	return func(o *Orchestrator) { o.skipPresentation = skip }
}

// WithPartyBounds sets the composition bounds used by ValidateParty.
func WithPartyBounds(bounds party.Bounds) Option {
	return func(o *Orchestrator) { o.partyBounds = bounds }
}

// WithLocale selects the message catalog for user-facing notices.
func WithLocale(locale string) Option {
	return func(o *Orchestrator) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// New creates an orchestrator over the given persistence gateway.
func New(gateway *persist.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state:         StateUninitialized,
		ledger:        ledger.New(),
		gateway:       gateway,
		bus:           event.NewBus(),
		tracer:        otel.Tracer("ironmarch/orchestrator"),
		clock:         time.Now,
		slowThreshold: DefaultSlowLossThreshold,
		partyBounds:   party.Bounds{MinSize: 1, MaxSize: 8},
		locale:        i18n.BaseLocale,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Events exposes the notification bus for subscribers.
func (o *Orchestrator) Events() *event.Bus {
	return o.bus
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InitializeChapter resets the orchestrator for a chapter and roster. Any
// previously persisted loss data for the chapter is restored, so a chapter
// resumed after a crash keeps its loss history. Initial danger levels are
// seeded from the roster's current HP.
func (o *Orchestrator) InitializeChapter(ctx context.Context, chapterID string, roster []domain.Unit) error {
	ctx, span := o.tracer.Start(ctx, "orchestrator.InitializeChapter")
	defer span.End()

	evt, err := o.initializeChapter(ctx, chapterID, roster)
	if err != nil {
		return err
	}
	// Published outside o.mu so subscribers may query the orchestrator.
	o.bus.Publish(ctx, evt)
	return nil
}

func (o *Orchestrator) initializeChapter(ctx context.Context, chapterID string, roster []domain.Unit) (event.Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.processing {
		return event.Event{}, errors.New(errors.CodeLossProcessingFailed, "cannot initialize while a loss is being processed")
	}

	if err := o.ledger.InitializeChapter(chapterID); err != nil {
		return event.Event{}, err
	}

	resumed := false
	if o.gateway != nil {
		result, err := o.gateway.Load(ctx, strings.TrimSpace(chapterID))
		if err != nil {
			return event.Event{}, err
		}
		if !result.Empty {
			if err := o.ledger.Deserialize(result.Data); err != nil {
				return event.Event{}, err
			}
			resumed = true
		}
	}

	o.units = make(map[string]domain.Unit, len(roster))
	o.danger = make(map[string]domain.DangerLevel, len(roster))
	players := 0
	for _, unit := range roster {
		if strings.TrimSpace(unit.ID) == "" {
			continue
		}
		o.units[unit.ID] = unit
		if unit.IsPlayer() {
			players++
			o.ledger.AddParticipants(unit.ID)
			o.danger[unit.ID] = o.dangerFor(unit)
		}
	}

	o.syncTurn(ctx)
	o.state = StateInitialized
	o.gameOverAnnounced = false

	return event.Event{
		Type:      event.TypeChapterInitialized,
		ChapterID: o.ledger.ChapterID(),
		Payload: event.ChapterInitialized{
			RosterSize:   len(o.units),
			PlayerUnits:  players,
			StartedAt:    o.ledger.StartedAt(),
			ResumedState: resumed,
		},
	}, nil
}

// CompleteChapter closes the chapter: computes the summary, persists the
// final ledger snapshot, clears in-memory state, and deletes the persisted
// chapter data. Returns the summary, including the perfect-clear flag.
func (o *Orchestrator) CompleteChapter(ctx context.Context, chapterName string) (domain.ChapterLossSummary, error) {
	ctx, span := o.tracer.Start(ctx, "orchestrator.CompleteChapter")
	defer span.End()

	summary, evt, err := o.completeChapter(ctx, chapterName)
	if err != nil {
		return domain.ChapterLossSummary{}, err
	}
	o.bus.Publish(ctx, evt)
	return summary, nil
}

func (o *Orchestrator) completeChapter(ctx context.Context, chapterName string) (domain.ChapterLossSummary, event.Event, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateCompleted {
		return domain.ChapterLossSummary{}, event.Event{}, errors.New(errors.CodeChapterCompleted, "chapter is already completed")
	}
	if o.state != StateInitialized {
		return domain.ChapterLossSummary{}, event.Event{}, errors.New(errors.CodeChapterNotInitialized, "no active chapter to complete")
	}
	if o.processing {
		return domain.ChapterLossSummary{}, event.Event{}, errors.New(errors.CodeLossProcessingFailed, "cannot complete while a loss is being processed")
	}

	summary, err := o.ledger.Summary(chapterName)
	if err != nil {
		return domain.ChapterLossSummary{}, event.Event{}, err
	}
	chapterID := o.ledger.ChapterID()

	if o.gateway != nil {
		if err := o.gateway.Save(ctx, o.ledger.Serialize()); err != nil {
			return domain.ChapterLossSummary{}, event.Event{}, err
		}
		// The chapter is closed; its working data has no further use.
		if err := o.gateway.Clear(ctx, chapterID); err != nil {
			return domain.ChapterLossSummary{}, event.Event{}, err
		}
	}

	o.ledger.Cleanup()
	o.units = nil
	o.danger = nil
	o.state = StateCompleted

	evt := event.Event{
		Type:      event.TypeChapterCompleted,
		ChapterID: chapterID,
		Payload:   event.ChapterCompleted{Summary: summary},
	}
	return summary, evt, nil
}

// AdvanceTurn raises the chapter turn high-water mark and refreshes danger
// levels, since HP changes between turns move units in and out of danger.
func (o *Orchestrator) AdvanceTurn(ctx context.Context, turn int, roster []domain.Unit) {
	o.mu.Lock()
	if o.state != StateInitialized {
		o.mu.Unlock()
		return
	}
	o.ledger.AdvanceTurn(turn)
	for _, unit := range roster {
		if _, tracked := o.units[unit.ID]; tracked {
			o.units[unit.ID] = unit
		}
	}
	changes := o.refreshDanger(ctx)
	o.mu.Unlock()

	o.publishAll(ctx, changes)
}

// TotalLosses returns the count of distinct lost characters.
func (o *Orchestrator) TotalLosses() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.TotalLosses()
}

// IsLost reports whether the character is lost this chapter.
func (o *Orchestrator) IsLost(characterID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.IsLost(characterID)
}

// LostCharacter returns the loss snapshot for a character.
func (o *Orchestrator) LostCharacter(characterID string) (domain.LostCharacter, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.LostCharacter(characterID)
}

// Summary computes the current chapter summary without completing the
// chapter.
func (o *Orchestrator) Summary(chapterName string) (domain.ChapterLossSummary, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.Summary(chapterName)
}

// Statistics aggregates the loss history.
func (o *Orchestrator) Statistics() domain.LossStatistics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.Statistics()
}

// DangerLevels returns the current danger level per tracked player unit.
func (o *Orchestrator) DangerLevels() map[string]domain.DangerLevel {
	o.mu.Lock()
	defer o.mu.Unlock()

	levels := make(map[string]domain.DangerLevel, len(o.danger))
	for id, level := range o.danger {
		levels[id] = level
	}
	return levels
}

// ValidateParty checks a candidate party against the tracked roster and
// the loss ledger.
func (o *Orchestrator) ValidateParty(candidate []string) party.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return party.NewValidator(o.ledger, o.partyBounds).Validate(candidate, o.rosterLocked())
}

// SuggestReplacements proposes replacements for lost members of a
// candidate party.
func (o *Orchestrator) SuggestReplacements(candidate []string) []party.Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()
	return party.NewValidator(o.ledger, o.partyBounds).SuggestReplacements(candidate, o.rosterLocked())
}

// rosterLocked snapshots the tracked units in stable order. Callers hold
// o.mu.
func (o *Orchestrator) rosterLocked() []domain.Unit {
	roster := make([]domain.Unit, 0, len(o.units))
	for _, unit := range o.units {
		roster = append(roster, unit)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })
	return roster
}

// dangerFor classifies a unit, treating lost units as critical.
func (o *Orchestrator) dangerFor(unit domain.Unit) domain.DangerLevel {
	if o.ledger.IsLost(unit.ID) {
		return domain.DangerCritical
	}
	return domain.DangerForHP(unit.CurrentHP, unit.MaxHP)
}

// syncTurn pulls the authoritative turn counter from the game-state
// collaborator. Callers hold o.mu.
func (o *Orchestrator) syncTurn(ctx context.Context) {
	if o.gameState == nil {
		return
	}
	turn, err := o.gameState.CurrentTurn(ctx)
	if err != nil {
		o.emitter.Warn(ctx, "orchestrator", "turn sync failed",
			map[string]string{"chapter_id": o.ledger.ChapterID(), "error": err.Error()})
		return
	}
	o.ledger.AdvanceTurn(turn)
}

// refreshDanger recomputes danger levels for all tracked player units and
// drives presentation effects for each transition. It returns the change
// events; callers publish them once o.mu is no longer held, so that
// subscribers may call back into the orchestrator.
func (o *Orchestrator) refreshDanger(ctx context.Context) []event.Event {
	var changes []event.Event
	for id, unit := range o.units {
		if !unit.IsPlayer() {
			continue
		}
		current := o.dangerFor(unit)
		previous := o.danger[id]
		if current == previous {
			continue
		}
		o.danger[id] = current

		changes = append(changes, event.Event{
			Type:      event.TypeDangerChanged,
			ChapterID: o.ledger.ChapterID(),
			Payload: event.DangerChanged{
				CharacterID: id,
				Previous:    previous,
				Current:     current,
			},
		})

		if o.presentation == nil {
			continue
		}
		var err error
		if current == domain.DangerNone {
			err = o.presentation.HideDangerEffect(ctx, id)
		} else {
			err = o.presentation.ShowDangerEffect(ctx, id, current)
		}
		if err != nil {
			o.emitter.Warn(ctx, "orchestrator", "danger effect failed",
				map[string]string{"character_id": id, "error": err.Error()})
		}
	}
	return changes
}

func (o *Orchestrator) publishAll(ctx context.Context, events []event.Event) {
	for _, evt := range events {
		o.bus.Publish(ctx, evt)
	}
}
