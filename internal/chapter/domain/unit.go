package domain

import (
	"errors"
	"strings"
)

// Faction identifies which side controls a unit.
type Faction string

const (
	// FactionPlayer marks units under player control.
	FactionPlayer Faction = "player"
	// FactionEnemy marks hostile units.
	FactionEnemy Faction = "enemy"
	// FactionNPC marks neutral or guest units.
	FactionNPC Faction = "npc"
)

// IsValid reports whether f is a recognised faction.
func (f Faction) IsValid() bool {
	switch f {
	case FactionPlayer, FactionEnemy, FactionNPC:
		return true
	}
	return false
}

// Position is a map coordinate snapshot.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	// ErrEmptyUnitID indicates a unit without an identifier.
	ErrEmptyUnitID = errors.New("unit id is required")
	// ErrInvalidFaction indicates an unrecognised faction value.
	ErrInvalidFaction = errors.New("unit faction is invalid")
	// ErrInvalidHP indicates hit points outside 0..max.
	ErrInvalidHP = errors.New("unit hp is out of range")
)

// Unit is a tactical unit snapshot as seen by the loss engine. The roster
// authority lives with the game-state collaborator; the engine keeps only
// what loss tracking and danger classification need.
type Unit struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Faction   Faction  `json:"faction"`
	Level     int      `json:"level"`
	CurrentHP int      `json:"currentHp"`
	MaxHP     int      `json:"maxHp"`
	Position  Position `json:"position"`
	Recruited bool     `json:"recruited"`
	Acted     bool     `json:"acted"`
}

// ValidateUnit checks the invariants the loss engine relies on.
func ValidateUnit(unit Unit) error {
	if strings.TrimSpace(unit.ID) == "" {
		return ErrEmptyUnitID
	}
	if !unit.Faction.IsValid() {
		return ErrInvalidFaction
	}
	if unit.MaxHP < 0 || unit.CurrentHP < 0 || unit.CurrentHP > unit.MaxHP {
		return ErrInvalidHP
	}
	return nil
}

// IsPlayer reports whether the unit fights for the player faction.
func (u Unit) IsPlayer() bool {
	return u.Faction == FactionPlayer
}
