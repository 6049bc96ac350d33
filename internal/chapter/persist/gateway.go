// Package persist is the durable persistence gateway for chapter loss data.
//
// One primary blob and one backup blob are stored per chapter, plus an
// optional suspend record. Corrupted primaries resolve through a three-tier
// recovery ladder: a pluggable repair hook, then the backup copy, then a
// reset to a clean empty state. Load never returns data that fails
// structural validation.
package persist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/louisbranch/ironmarch/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Storage key prefixes, one namespace per record kind.
const (
	PrimaryKeyPrefix = "loss:"
	BackupKeyPrefix  = "loss:backup:"
	SuspendKeyPrefix = "loss:suspend:"
)

// RecoveryHook may attempt a data-level repair of a corrupted blob. It is
// the first tier of the recovery ladder and entirely optional.
type RecoveryHook interface {
	// RepairChapterData receives the corrupted payload and the
	// validation failure, and returns a repaired payload or an error.
	RepairChapterData(ctx context.Context, chapterID string, raw []byte, cause error) ([]byte, error)
}

// RecoveryTier reports which tier of the ladder produced a loaded blob.
type RecoveryTier string

const (
	// TierNone means the primary blob loaded cleanly.
	TierNone RecoveryTier = ""
	// TierRepair means the recovery hook repaired the primary blob.
	TierRepair RecoveryTier = "repair"
	// TierBackup means the backup blob was promoted to primary.
	TierBackup RecoveryTier = "backup"
	// TierReset means all data was discarded and a clean state persisted.
	TierReset RecoveryTier = "reset"
)

// LoadResult is the outcome of a Load call.
type LoadResult struct {
	// Data is the loaded (or recovered, or fresh) chapter blob. It is
	// always structurally valid.
	Data domain.ChapterLossData
	// Empty is true when no persisted data existed for the chapter.
	Empty bool
	// Recovered reports the recovery tier used, if any.
	Recovered RecoveryTier
}

// Gateway reads and writes chapter loss blobs through a key-value store.
type Gateway struct {
	kv       storage.KV
	recovery RecoveryHook
	emitter  *telemetry.Emitter
	tracer   trace.Tracer
	clock    func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRecoveryHook installs the first-tier repair collaborator.
func WithRecoveryHook(hook RecoveryHook) Option {
	return func(g *Gateway) { g.recovery = hook }
}

// WithTelemetry installs the telemetry emitter for recovery diagnostics.
func WithTelemetry(emitter *telemetry.Emitter) Option {
	return func(g *Gateway) { g.emitter = emitter }
}

// New creates a gateway over the provided store.
func New(kv storage.KV, opts ...Option) *Gateway {
	g := &Gateway{
		kv:     kv,
		tracer: otel.Tracer("ironmarch/persist"),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Save writes the blob to the primary key and, best-effort, to the backup
// key. A backup failure is recorded in telemetry and never surfaces.
func (g *Gateway) Save(ctx context.Context, data domain.ChapterLossData) error {
	ctx, span := g.tracer.Start(ctx, "persist.Save",
		trace.WithAttributes(attribute.String("chapter.id", data.ChapterID)))
	defer span.End()

	if err := data.Validate(); err != nil {
		return errors.Wrap(errors.CodeSystemError, "refusing to persist invalid chapter data", err)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(errors.CodeSystemError, "marshal chapter data", err)
	}

	if err := g.kv.Set(ctx, PrimaryKeyPrefix+data.ChapterID, payload); err != nil {
		return errors.WrapWithMetadata(errors.CodeSaveFailed, "write primary chapter data",
			map[string]string{"chapter_id": data.ChapterID}, err).
			WithRemediation("check storage capacity and retry the save")
	}

	if err := g.kv.Set(ctx, BackupKeyPrefix+data.ChapterID, payload); err != nil {
		g.emitter.Warn(ctx, "persist", "backup write failed",
			map[string]string{"chapter_id": data.ChapterID, "error": err.Error()})
	}
	return nil
}

// Load reads the chapter blob, applying the recovery ladder when the
// primary is corrupted. Absence of data is success with Empty set.
func (g *Gateway) Load(ctx context.Context, chapterID string) (LoadResult, error) {
	ctx, span := g.tracer.Start(ctx, "persist.Load",
		trace.WithAttributes(attribute.String("chapter.id", chapterID)))
	defer span.End()

	chapterID = strings.TrimSpace(chapterID)
	if chapterID == "" {
		return LoadResult{}, errors.New(errors.CodeInvalidCharacter, "chapter id is required")
	}

	raw, err := g.kv.Get(ctx, PrimaryKeyPrefix+chapterID)
	if stderrors.Is(err, storage.ErrNotFound) {
		return LoadResult{Empty: true}, nil
	}
	if err != nil {
		return LoadResult{}, errors.Wrap(errors.CodeStorageFailed, "read primary chapter data", err)
	}

	data, decodeErr := decode(raw, chapterID)
	if decodeErr == nil {
		return LoadResult{Data: data}, nil
	}

	g.emitter.Warn(ctx, "persist", "primary chapter data corrupted",
		map[string]string{"chapter_id": chapterID, "error": decodeErr.Error()})
	span.AddEvent("recovery ladder engaged")

	return g.recover(ctx, chapterID, raw, decodeErr)
}

// recover applies the three-tier recovery ladder. Every path leaves the
// store in a structurally valid, loadable state.
func (g *Gateway) recover(ctx context.Context, chapterID string, raw []byte, cause error) (LoadResult, error) {
	// Tier 1: collaborator-provided data repair.
	if g.recovery != nil {
		repaired, err := g.recovery.RepairChapterData(ctx, chapterID, raw, cause)
		if err == nil {
			if data, decodeErr := decode(repaired, chapterID); decodeErr == nil {
				if err := g.Save(ctx, data); err != nil {
					return LoadResult{}, err
				}
				g.emitter.Info(ctx, "persist", "chapter data repaired by recovery hook",
					map[string]string{"chapter_id": chapterID})
				return LoadResult{Data: data, Recovered: TierRepair}, nil
			}
		}
	}

	// Tier 2: promote the backup copy.
	backupRaw, err := g.kv.Get(ctx, BackupKeyPrefix+chapterID)
	if err == nil {
		if data, decodeErr := decode(backupRaw, chapterID); decodeErr == nil {
			if err := g.kv.Set(ctx, PrimaryKeyPrefix+chapterID, backupRaw); err != nil {
				return LoadResult{}, errors.Wrap(errors.CodeSaveFailed, "promote backup to primary", err)
			}
			g.emitter.Info(ctx, "persist", "backup promoted to primary",
				map[string]string{"chapter_id": chapterID})
			return LoadResult{Data: data, Recovered: TierBackup}, nil
		}
	}

	// Tier 3: discard everything and persist a clean empty state.
	fresh := domain.NewChapterLossData(chapterID, g.clock().UTC())
	if err := g.Save(ctx, fresh); err != nil {
		return LoadResult{}, err
	}
	g.emitter.Error(ctx, "persist", "chapter data reset after unrecoverable corruption",
		map[string]string{"chapter_id": chapterID})
	return LoadResult{Data: fresh, Recovered: TierReset}, nil
}

// HasSaveData reports whether a primary blob exists for the chapter.
func (g *Gateway) HasSaveData(ctx context.Context, chapterID string) (bool, error) {
	_, err := g.kv.Get(ctx, PrimaryKeyPrefix+chapterID)
	if stderrors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.CodeStorageFailed, "check chapter data", err)
	}
	return true, nil
}

// Clear removes the primary, backup, and suspend records for a chapter.
func (g *Gateway) Clear(ctx context.Context, chapterID string) error {
	for _, prefix := range []string{PrimaryKeyPrefix, BackupKeyPrefix, SuspendKeyPrefix} {
		if err := g.kv.Delete(ctx, prefix+chapterID); err != nil {
			return errors.Wrap(errors.CodeStorageFailed, "clear chapter data", err)
		}
	}
	return nil
}

// ListChapters enumerates chapter ids with a primary blob.
func (g *Gateway) ListChapters(ctx context.Context) ([]string, error) {
	keys, err := g.kv.List(ctx, PrimaryKeyPrefix)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailed, "list chapter keys", err)
	}

	var ids []string
	for _, key := range keys {
		if strings.HasPrefix(key, BackupKeyPrefix) || strings.HasPrefix(key, SuspendKeyPrefix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, PrimaryKeyPrefix))
	}
	return ids, nil
}

// decode unmarshals and validates a chapter blob, checking it belongs to
// the requested chapter.
func decode(raw []byte, chapterID string) (domain.ChapterLossData, error) {
	var data domain.ChapterLossData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.ChapterLossData{}, errors.Wrap(errors.CodeSaveDataCorrupted, "unmarshal chapter data", err)
	}
	if data.LostCharacters == nil {
		data.LostCharacters = make(map[string]domain.LostCharacter)
	}
	if err := data.Validate(); err != nil {
		return domain.ChapterLossData{}, errors.Wrap(errors.CodeSaveDataCorrupted, "validate chapter data", err)
	}
	if data.ChapterID != chapterID {
		return domain.ChapterLossData{}, errors.WithMetadata(errors.CodeSaveDataCorrupted, "chapter id mismatch",
			map[string]string{"expected": chapterID, "actual": data.ChapterID})
	}
	return data, nil
}
