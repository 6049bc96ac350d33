// Package party validates candidate party compositions against the loss
// ledger. Validation accumulates every applicable issue instead of stopping
// at the first, so the caller can surface a complete picture at once.
package party

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/louisbranch/ironmarch/internal/chapter/domain"
)

// Issue codes for validation errors.
const (
	IssueInvalidInput     = "invalid_input"
	IssuePartyTooSmall    = "party_too_small"
	IssuePartyTooLarge    = "party_too_large"
	IssueDuplicateMember  = "duplicate_character"
	IssueUnknownCharacter = "unknown_character"
	IssueLostCharacter    = "lost_character"
)

// Issue codes for validation warnings.
const (
	WarnAvailabilityCritical = "availability_critical"
	WarnAvailabilityLow      = "availability_low"
	WarnLevelImbalance       = "level_imbalance"
)

// Availability thresholds for the low-roster warnings.
const (
	availabilityCritical = 2
	availabilityLow      = 4
)

// levelSpreadThreshold is the standard deviation of member levels above
// which the composition is flagged as unbalanced.
const levelSpreadThreshold = 5.0

// Issue is a single validation error or warning.
type Issue struct {
	Code        string `json:"code"`
	CharacterID string `json:"characterId,omitempty"`
	Message     string `json:"message"`
}

// Result is the outcome of validating a candidate party.
type Result struct {
	Valid               bool     `json:"isValid"`
	Errors              []Issue  `json:"errors"`
	Warnings            []Issue  `json:"warnings"`
	AvailableCharacters []string `json:"availableCharacters"`
	LostCharacters      []string `json:"lostCharacters"`
	TotalAvailable      int      `json:"totalAvailable"`
}

// Bounds configures party size limits.
type Bounds struct {
	MinSize    int
	MaxSize    int
	AllowEmpty bool
}

// LossReader is the ledger subset the validator consults.
type LossReader interface {
	IsLost(characterID string) bool
	LostCharacter(characterID string) (domain.LostCharacter, bool)
}

// Validator checks candidate parties against the roster and the loss
// ledger. It never mutates either.
type Validator struct {
	losses LossReader
	bounds Bounds
}

// NewValidator creates a validator over the given loss reader.
func NewValidator(losses LossReader, bounds Bounds) *Validator {
	return &Validator{losses: losses, bounds: bounds}
}

// Validate evaluates a candidate party against the full roster. A nil
// candidate slice is rejected as invalid input; an empty one is judged by
// the AllowEmpty bound. Every rule runs regardless of earlier failures.
func (v *Validator) Validate(candidate []string, roster []domain.Unit) Result {
	result := Result{
		Errors:   []Issue{},
		Warnings: []Issue{},
	}

	units := make(map[string]domain.Unit, len(roster))
	for _, unit := range roster {
		if !unit.IsPlayer() {
			continue
		}
		units[unit.ID] = unit

		if v.losses != nil && v.losses.IsLost(unit.ID) {
			result.LostCharacters = append(result.LostCharacters, unit.ID)
		} else {
			result.AvailableCharacters = append(result.AvailableCharacters, unit.ID)
		}
	}
	sort.Strings(result.AvailableCharacters)
	sort.Strings(result.LostCharacters)
	result.TotalAvailable = len(result.AvailableCharacters)

	if candidate == nil {
		result.Errors = append(result.Errors, Issue{
			Code:    IssueInvalidInput,
			Message: "candidate party is required",
		})
	}

	if len(candidate) == 0 {
		if candidate != nil && !v.bounds.AllowEmpty {
			result.Errors = append(result.Errors, Issue{
				Code:    IssuePartyTooSmall,
				Message: fmt.Sprintf("party needs at least %d members", max(v.bounds.MinSize, 1)),
			})
		}
	} else {
		if len(candidate) < v.bounds.MinSize {
			result.Errors = append(result.Errors, Issue{
				Code:    IssuePartyTooSmall,
				Message: fmt.Sprintf("party has %d members, needs at least %d", len(candidate), v.bounds.MinSize),
			})
		}
		if v.bounds.MaxSize > 0 && len(candidate) > v.bounds.MaxSize {
			result.Errors = append(result.Errors, Issue{
				Code:    IssuePartyTooLarge,
				Message: fmt.Sprintf("party has %d members, allows at most %d", len(candidate), v.bounds.MaxSize),
			})
		}
	}

	seen := make(map[string]bool, len(candidate))
	var validMembers []domain.Unit
	for _, id := range candidate {
		id = strings.TrimSpace(id)
		if id == "" {
			result.Errors = append(result.Errors, Issue{
				Code:    IssueInvalidInput,
				Message: "party member id is blank",
			})
			continue
		}
		if seen[id] {
			result.Errors = append(result.Errors, Issue{
				Code:        IssueDuplicateMember,
				CharacterID: id,
				Message:     fmt.Sprintf("%s appears more than once", id),
			})
			continue
		}
		seen[id] = true

		unit, known := units[id]
		if !known {
			result.Errors = append(result.Errors, Issue{
				Code:        IssueUnknownCharacter,
				CharacterID: id,
				Message:     fmt.Sprintf("%s is not a known player character", id),
			})
			continue
		}

		if v.losses != nil {
			if lost, ok := v.losses.LostCharacter(id); ok {
				result.Errors = append(result.Errors, Issue{
					Code:        IssueLostCharacter,
					CharacterID: id,
					Message:     fmt.Sprintf("%s was lost on turn %d (%s)", lost.Name, lost.Turn, lost.Cause.Description),
				})
				continue
			}
		}

		validMembers = append(validMembers, unit)
	}

	switch {
	case result.TotalAvailable <= availabilityCritical:
		result.Warnings = append(result.Warnings, Issue{
			Code:    WarnAvailabilityCritical,
			Message: fmt.Sprintf("only %d characters remain available", result.TotalAvailable),
		})
	case result.TotalAvailable <= availabilityLow:
		result.Warnings = append(result.Warnings, Issue{
			Code:    WarnAvailabilityLow,
			Message: fmt.Sprintf("%d characters remain available", result.TotalAvailable),
		})
	}

	if spread := levelSpread(validMembers); spread > levelSpreadThreshold {
		result.Warnings = append(result.Warnings, Issue{
			Code:    WarnLevelImbalance,
			Message: fmt.Sprintf("member levels vary widely (spread %.1f)", spread),
		})
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// levelSpread is the population standard deviation of member levels.
// Parties with fewer than two members have no spread.
func levelSpread(members []domain.Unit) float64 {
	if len(members) < 2 {
		return 0
	}

	var sum float64
	for _, unit := range members {
		sum += float64(unit.Level)
	}
	mean := sum / float64(len(members))

	var variance float64
	for _, unit := range members {
		diff := float64(unit.Level) - mean
		variance += diff * diff
	}
	variance /= float64(len(members))
	return math.Sqrt(variance)
}
