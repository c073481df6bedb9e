// Package battle implements the deterministic battle simulation core: the
// rules layer that decides who acts when, how attacks resolve into damage and
// casualties, and when a battle ends.
//
// The package is engine-independent and single-threaded: all state belongs to
// one Engine instance per battle, and every operation runs to completion
// before returning. The only randomness is the uniform damage roll, drawn
// from a Source injected at construction so battles replay deterministically.
package battle

import "github.com/mimiasei/realmsofeldor-sub003/internal/game/hexgrid"

// Side identifies which army a unit fights for.
type Side int

const (
	SideAttacker Side = iota
	SideDefender
)

// String returns a human-readable side label.
func (s Side) String() string {
	switch s {
	case SideAttacker:
		return "attacker"
	case SideDefender:
		return "defender"
	default:
		return "unknown"
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// BattlePhase is the engine-level state machine.
// PhaseTactics is a declared placeholder for a pre-battle repositioning phase
// and is never entered.
type BattlePhase int

const (
	PhaseNotStarted BattlePhase = iota
	PhaseTactics
	PhaseNormal
	PhaseEnded
)

// String returns a human-readable phase label.
func (p BattlePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseTactics:
		return "tactics"
	case PhaseNormal:
		return "normal"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ActionType identifies what a unit intends to do on its turn.
// The zero value (ActionUnknown) is intentionally invalid.
//
// Only Attack, Shoot, Wait, and Defend are wired to engine behavior; the
// remaining kinds are declared placeholders for feature systems that do not
// exist yet.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionAttack
	ActionShoot
	ActionWait
	ActionDefend
	ActionRetreat
	ActionSurrender
	ActionSpellcast
	ActionCatapult
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionShoot:
		return "shoot"
	case ActionWait:
		return "wait"
	case ActionDefend:
		return "defend"
	case ActionRetreat:
		return "retreat"
	case ActionSurrender:
		return "surrender"
	case ActionSpellcast:
		return "spellcast"
	case ActionCatapult:
		return "catapult"
	default:
		return "unknown"
	}
}

// Action is one validated command submitted for the acting unit.
type Action struct {
	Type ActionType
	// UnitID is the acting unit.
	UnitID int
	// TargetID is the target unit for Attack/Shoot; unused otherwise.
	TargetID int
	// Destination is the movement destination where relevant; unused by the
	// wired action kinds.
	Destination hexgrid.Hex
}

// StatusEffect is a timed stat modifier attached to a unit. Duration counts
// in rounds and is decremented once per round; an effect whose duration
// reaches zero is removed.
type StatusEffect struct {
	Name       string
	Rounds     int
	AttackMod  int
	DefenseMod int
	SpeedMod   int
}
