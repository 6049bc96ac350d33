package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/oklog/ulid/v2"
)

// KeyPrefix namespaces telemetry records in the shared key-value store.
const KeyPrefix = "telemetry:"

// Journal persists telemetry events through the engine's key-value store so
// diagnostics survive restarts. Keys are time-ordered ULIDs under KeyPrefix.
type Journal struct {
	kv      storage.KV
	entropy *ulid.MonotonicEntropy
	clock   func() time.Time
}

// NewJournal creates a journal over the provided store.
func NewJournal(kv storage.KV) *Journal {
	seed := time.Now().UnixNano()
	return &Journal{
		kv:      kv,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
		clock:   time.Now,
	}
}

// AppendTelemetryEvent stores the event under a fresh ULID key.
func (j *Journal) AppendTelemetryEvent(ctx context.Context, evt Event) error {
	if j == nil || j.kv == nil {
		return fmt.Errorf("telemetry journal is not configured")
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal telemetry event: %w", err)
	}

	id, err := ulid.New(ulid.Timestamp(j.clock().UTC()), j.entropy)
	if err != nil {
		return fmt.Errorf("generate telemetry id: %w", err)
	}

	return j.kv.Set(ctx, KeyPrefix+id.String(), payload)
}

// Tail returns up to limit most recent events, oldest first.
func (j *Journal) Tail(ctx context.Context, limit int) ([]Event, error) {
	if j == nil || j.kv == nil {
		return nil, fmt.Errorf("telemetry journal is not configured")
	}

	keys, err := j.kv.List(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list telemetry keys: %w", err)
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[len(keys)-limit:]
	}

	events := make([]Event, 0, len(keys))
	for _, key := range keys {
		payload, err := j.kv.Get(ctx, key)
		if err != nil {
			// Concurrently pruned entries are skipped, not fatal.
			continue
		}
		var evt Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

// Prune removes telemetry records older than the cutoff.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	if j == nil || j.kv == nil {
		return 0, fmt.Errorf("telemetry journal is not configured")
	}

	keys, err := j.kv.List(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list telemetry keys: %w", err)
	}

	removed := 0
	for _, key := range keys {
		raw := strings.TrimPrefix(key, KeyPrefix)
		id, err := ulid.ParseStrict(raw)
		if err != nil {
			continue
		}
		if ulid.Time(id.Time()).After(cutoff) {
			continue
		}
		if err := j.kv.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("delete telemetry key %q: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
