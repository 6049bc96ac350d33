package persist

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
	"github.com/louisbranch/ironmarch/internal/platform/errors"
	"github.com/louisbranch/ironmarch/internal/storage"
)

// SaveSuspend writes the suspend record for its chapter.
func (g *Gateway) SaveSuspend(ctx context.Context, record domain.SuspendRecord) error {
	if err := record.Validate(); err != nil {
		return errors.Wrap(errors.CodeSystemError, "refusing to persist invalid suspend record", err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(errors.CodeSystemError, "marshal suspend record", err)
	}

	if err := g.kv.Set(ctx, SuspendKeyPrefix+record.ChapterID, payload); err != nil {
		return errors.WrapWithMetadata(errors.CodeSaveFailed, "write suspend record",
			map[string]string{"chapter_id": record.ChapterID}, err)
	}
	return nil
}

// LoadSuspend reads the suspend record for a chapter. A missing record
// yields SUSPEND_NOT_FOUND.
func (g *Gateway) LoadSuspend(ctx context.Context, chapterID string) (domain.SuspendRecord, error) {
	raw, err := g.kv.Get(ctx, SuspendKeyPrefix+chapterID)
	if stderrors.Is(err, storage.ErrNotFound) {
		return domain.SuspendRecord{}, errors.WithMetadata(errors.CodeSuspendNotFound, "no suspend record",
			map[string]string{"chapter_id": chapterID})
	}
	if err != nil {
		return domain.SuspendRecord{}, errors.Wrap(errors.CodeStorageFailed, "read suspend record", err)
	}

	var record domain.SuspendRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.SuspendRecord{}, errors.Wrap(errors.CodeSaveDataCorrupted, "unmarshal suspend record", err)
	}
	if err := record.Validate(); err != nil {
		return domain.SuspendRecord{}, errors.Wrap(errors.CodeSaveDataCorrupted, "validate suspend record", err)
	}
	return record, nil
}

// DeleteSuspend removes the suspend record after a successful resume.
func (g *Gateway) DeleteSuspend(ctx context.Context, chapterID string) error {
	if err := g.kv.Delete(ctx, SuspendKeyPrefix+chapterID); err != nil {
		return errors.Wrap(errors.CodeStorageFailed, "delete suspend record", err)
	}
	return nil
}
