package domain

import (
	"errors"
	"testing"
)

func TestValidateUnit(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
		err  error
	}{
		{
			name: "valid",
			unit: Unit{ID: "u1", Name: "Ayra", Faction: FactionPlayer, CurrentHP: 20, MaxHP: 20},
			err:  nil,
		},
		{
			name: "blank id",
			unit: Unit{ID: "  ", Faction: FactionPlayer},
			err:  ErrEmptyUnitID,
		},
		{
			name: "bad faction",
			unit: Unit{ID: "u1", Faction: "bandit"},
			err:  ErrInvalidFaction,
		},
		{
			name: "hp above max",
			unit: Unit{ID: "u1", Faction: FactionEnemy, CurrentHP: 30, MaxHP: 20},
			err:  ErrInvalidHP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateUnit(tt.unit); !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestDangerForHP(t *testing.T) {
	tests := []struct {
		name    string
		current int
		max     int
		want    DangerLevel
	}{
		{"full", 20, 20, DangerNone},
		{"above three quarters", 16, 20, DangerNone},
		{"three quarters", 15, 20, DangerLow},
		{"half", 10, 20, DangerMedium},
		{"quarter", 5, 20, DangerHigh},
		{"critical", 2, 20, DangerCritical},
		{"downed", 0, 20, DangerCritical},
		{"unknown max", 5, 0, DangerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DangerForHP(tt.current, tt.max); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDangerSeverityOrdering(t *testing.T) {
	levels := []DangerLevel{DangerNone, DangerLow, DangerMedium, DangerHigh, DangerCritical}
	for i := 1; i < len(levels); i++ {
		if levels[i].Severity() <= levels[i-1].Severity() {
			t.Fatalf("expected %q more severe than %q", levels[i], levels[i-1])
		}
	}
}
