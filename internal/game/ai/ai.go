// Package ai implements the greedy combat AI: it scores every attack the
// active unit could make right now and picks the best one, or waits.
//
// The AI deliberately does not plan movement toward a target — if the best
// option is a melee attack on a non-adjacent enemy, it waits.
package ai

import (
	"go.uber.org/zap"

	"github.com/mimiasei/realmsofeldor-sub003/internal/game/battle"
)

// Scoring weights: killing the defender is worth a flat bonus, dying to the
// retaliation a much larger penalty.
const (
	killBonus    = 100.0
	deathPenalty = 1000.0
)

// AttackPossibility is one evaluated attack option for the active unit.
type AttackPossibility struct {
	Attacker *battle.Unit
	Defender *battle.Unit
	Ranged   bool
	// Damage is the average damage the attack would deal.
	Damage int
	// RetaliationDamage is the average counter-attack damage for a
	// non-killing melee hit; zero for shots and killing hits.
	RetaliationDamage int
	// DefenderDies is true when the average damage wipes the defender.
	DefenderDies bool
	// AttackerDies is true when the expected retaliation wipes the attacker.
	AttackerDies bool
	Score        float64
}

// Evaluate scores the hypothetical attack of attacker on defender using the
// average of the estimated damage range.
//
// Precondition: attacker and defender must be non-nil and alive.
func Evaluate(attacker, defender *battle.Unit, ranged bool) AttackPossibility {
	p := AttackPossibility{
		Attacker: attacker,
		Defender: defender,
		Ranged:   ranged,
	}

	est := battle.EstimateDamage(battle.AttackContext{
		Attacker:    attacker,
		Defender:    defender,
		AttackerPos: attacker.Position,
		DefenderPos: defender.Position,
		Ranged:      ranged,
	})
	p.Damage = (est.Damage.Min + est.Damage.Max) / 2
	p.DefenderDies = p.Damage >= defender.TotalHealth()

	if !ranged && !p.DefenderDies && defender.CanRetaliate() && !attacker.Type.NoMeleeRetaliation {
		retal := battle.EstimateDamage(battle.AttackContext{
			Attacker:    defender,
			Defender:    attacker,
			AttackerPos: defender.Position,
			DefenderPos: attacker.Position,
		})
		p.RetaliationDamage = (retal.Damage.Min + retal.Damage.Max) / 2
		p.AttackerDies = p.RetaliationDamage >= attacker.TotalHealth()
	}

	p.Score = float64(p.Damage) - float64(p.RetaliationDamage)
	if p.DefenderDies {
		p.Score += killBonus
	}
	if p.AttackerDies {
		p.Score -= deathPenalty
	}
	return p
}

// Selector chooses actions for AI-controlled units.
type Selector struct {
	logger *zap.Logger
}

// NewSelector creates a Selector.
//
// Precondition: logger must be non-nil.
func NewSelector(logger *zap.Logger) *Selector {
	return &Selector{logger: logger}
}

// SelectAction evaluates every attack the active unit can make this turn and
// returns the highest-scoring one, or a Wait action when nothing is in reach.
// Ties keep the first possibility found, so selection is stable for a given
// unit-table order.
//
// Postcondition: returns nil for a nil or dead unit.
func (s *Selector) SelectAction(eng *battle.Engine, active *battle.Unit) *battle.Action {
	if active == nil || !active.IsAlive() {
		return nil
	}

	enemies := eng.UnitsForSide(active.Side.Opposite())

	var best *AttackPossibility
	for _, enemy := range enemies {
		if active.CanShoot() {
			p := Evaluate(active, enemy, true)
			if best == nil || p.Score > best.Score {
				cp := p
				best = &cp
			}
		}
		if active.Position.IsAdjacentTo(enemy.Position) {
			p := Evaluate(active, enemy, false)
			if best == nil || p.Score > best.Score {
				cp := p
				best = &cp
			}
		}
	}

	if best == nil {
		s.logger.Debug("no attack possibility, waiting",
			zap.Int("unit_id", active.ID),
		)
		return &battle.Action{Type: battle.ActionWait, UnitID: active.ID}
	}

	s.logger.Debug("attack selected",
		zap.Int("unit_id", active.ID),
		zap.Int("target_id", best.Defender.ID),
		zap.Bool("ranged", best.Ranged),
		zap.Float64("score", best.Score),
	)

	kind := battle.ActionAttack
	if best.Ranged {
		kind = battle.ActionShoot
	}
	return &battle.Action{
		Type:     kind,
		UnitID:   active.ID,
		TargetID: best.Defender.ID,
	}
}
