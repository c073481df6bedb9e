package battle

import (
	"fmt"

	"github.com/mimiasei/realmsofeldor-sub003/internal/game/creature"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/hexgrid"
)

// Unit is a stack of identical creatures fighting on one side.
//
// Health bookkeeping follows the classic stack model: Count creatures are
// alive, the lead creature has FirstUnitHP remaining, and everyone behind it
// is at full health. Damage kills from the back of the stack.
//
// Invariants: Count >= 0; 0 < FirstUnitHP <= MaxHealth() whenever Count > 0.
type Unit struct {
	// ID uniquely identifies this unit within its battle. Never reused.
	ID int
	// Type is the immutable creature stat block.
	Type *creature.Type
	// Side is the army this unit fights for.
	Side Side
	// Slot is the originating army slot index, 0–6.
	Slot int
	// Position is the unit's current battlefield cell.
	Position hexgrid.Hex

	// Count is the number of living creatures in the stack.
	Count int
	// FirstUnitHP is the remaining HP of the partially damaged lead creature.
	FirstUnitHP int

	// Shots is the remaining ranged ammunition.
	Shots int
	// Retaliations is the number of retaliations left this turn; restored to
	// one at the start of each turn.
	Retaliations int

	// Per-turn transient flags.
	HasMoved    bool
	IsDefending bool
	HasWaited   bool
	HadMorale   bool

	effects []StatusEffect
}

// NewUnit constructs a unit from a creature type and stack count.
//
// Precondition: ctype must not be nil and count must be positive — a nil type
// would corrupt every subsequent stat lookup, so this is a hard error.
// Postcondition: the unit is at full health with one retaliation and the
// type's full ammunition.
func NewUnit(id int, ctype *creature.Type, count int, side Side, slot int, pos hexgrid.Hex) (*Unit, error) {
	if ctype == nil {
		return nil, fmt.Errorf("battle: unit %d: creature type must not be nil", id)
	}
	if count <= 0 {
		return nil, fmt.Errorf("battle: unit %d (%s): count must be positive, got %d", id, ctype.ID, count)
	}
	return &Unit{
		ID:           id,
		Type:         ctype,
		Side:         side,
		Slot:         slot,
		Position:     pos,
		Count:        count,
		FirstUnitHP:  ctype.Health,
		Shots:        ctype.Shots,
		Retaliations: 1,
	}, nil
}

// IsAlive reports whether any creature in the stack is alive.
func (u *Unit) IsAlive() bool {
	return u.Count > 0
}

// MaxHealth returns the per-creature hit points.
func (u *Unit) MaxHealth() int {
	return u.Type.Health
}

// TotalHealth returns the summed HP of the whole stack.
//
// Postcondition: zero iff the unit is dead.
func (u *Unit) TotalHealth() int {
	if u.Count <= 0 {
		return 0
	}
	return (u.Count-1)*u.MaxHealth() + u.FirstUnitHP
}

// TakeDamage applies damage to the stack. The lead creature absorbs first;
// each time it falls, the next creature steps up at full health and the
// remainder carries forward.
//
// Non-positive amounts and damage to a dead unit are no-ops.
//
// Postcondition: Count >= 0; if Count > 0 then 0 < FirstUnitHP <= MaxHealth().
func (u *Unit) TakeDamage(amount int) {
	if amount <= 0 || !u.IsAlive() {
		return
	}
	remaining := u.TotalHealth() - amount
	if remaining <= 0 {
		u.Count = 0
		u.FirstUnitHP = 0
		return
	}
	max := u.MaxHealth()
	u.Count = (remaining + max - 1) / max
	u.FirstUnitHP = remaining - (u.Count-1)*max
}

// Heal restores HP to the lead creature, capped at its maximum. Healing never
// resurrects dead creatures and is a no-op on a dead unit.
func (u *Unit) Heal(amount int) {
	if amount <= 0 || !u.IsAlive() {
		return
	}
	u.FirstUnitHP += amount
	if u.FirstUnitHP > u.MaxHealth() {
		u.FirstUnitHP = u.MaxHealth()
	}
}

// Resurrect converts restored health into whole creatures, capping Count at
// maxCount, with any fractional remainder healing the lead creature.
//
// A dead unit needs at least one whole creature's worth of health to revive;
// fractional health alone is lost.
func (u *Unit) Resurrect(healthToRestore, maxCount int) {
	if healthToRestore <= 0 {
		return
	}
	max := u.MaxHealth()
	revived := healthToRestore / max
	remainder := healthToRestore % max

	newCount := u.Count + revived
	if newCount > maxCount {
		newCount = maxCount
		remainder = 0
	}
	if newCount <= 0 {
		return
	}
	if u.Count == 0 {
		// The revived lead creature comes back whole.
		u.FirstUnitHP = max
	}
	u.Count = newCount
	u.FirstUnitHP += remainder
	if u.FirstUnitHP > max {
		u.FirstUnitHP = max
	}
}

// StartTurn resets the per-turn flags and restores one retaliation.
//
// Postcondition: CanAct() is true if the unit is alive.
func (u *Unit) StartTurn() {
	u.HasMoved = false
	u.IsDefending = false
	u.HasWaited = false
	u.HadMorale = false
	u.Retaliations = 1
}

// EndTurn marks the unit as having acted this round.
func (u *Unit) EndTurn() {
	u.HasMoved = true
}

// CanAct reports whether the unit may still act this round.
func (u *Unit) CanAct() bool {
	return u.IsAlive() && !u.HasMoved
}

// CanShoot reports whether the unit can make a ranged attack.
func (u *Unit) CanShoot() bool {
	return u.IsAlive() && u.Shots > 0
}

// UseShot consumes one unit of ammunition.
//
// Precondition: CanShoot() must be true.
func (u *Unit) UseShot() {
	if u.Shots > 0 {
		u.Shots--
	}
}

// CanRetaliate reports whether the unit has a retaliation left this turn.
func (u *Unit) CanRetaliate() bool {
	return u.IsAlive() && u.Retaliations > 0
}

// UseRetaliation consumes the unit's retaliation for this turn.
func (u *Unit) UseRetaliation() {
	if u.Retaliations > 0 {
		u.Retaliations--
	}
}

// Attack returns the effective attack stat: base plus active effect
// modifiers, floored at zero.
func (u *Unit) Attack() int {
	v := u.Type.Attack
	for _, e := range u.effects {
		v += e.AttackMod
	}
	if v < 0 {
		return 0
	}
	return v
}

// Defense returns the effective defense stat: base plus active effect
// modifiers, plus half the base again while defending, floored at zero.
func (u *Unit) Defense() int {
	v := u.Type.Defense
	for _, e := range u.effects {
		v += e.DefenseMod
	}
	if u.IsDefending {
		v += u.Type.Defense / 2
	}
	if v < 0 {
		return 0
	}
	return v
}

// Speed returns the effective speed stat: base plus active effect modifiers,
// floored at zero.
func (u *Unit) Speed() int {
	v := u.Type.Speed
	for _, e := range u.effects {
		v += e.SpeedMod
	}
	if v < 0 {
		return 0
	}
	return v
}

// Initiative is the turn-order key; equal to effective speed.
func (u *Unit) Initiative() int {
	return u.Speed()
}

// AddEffect attaches a timed status effect to the unit.
func (u *Unit) AddEffect(e StatusEffect) {
	u.effects = append(u.effects, e)
}

// Effects returns a copy of the active status effects.
func (u *Unit) Effects() []StatusEffect {
	out := make([]StatusEffect, len(u.effects))
	copy(out, u.effects)
	return out
}

// TickEffects decrements every effect's round counter and removes the ones
// that expire, returning the expired names.
func (u *Unit) TickEffects() []string {
	var expired []string
	kept := u.effects[:0]
	for _, e := range u.effects {
		e.Rounds--
		if e.Rounds <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	u.effects = kept
	return expired
}
