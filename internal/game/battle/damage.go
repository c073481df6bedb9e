package battle

import (
	"math"

	"github.com/mimiasei/realmsofeldor-sub003/internal/game/hexgrid"
)

// Damage formula constants. Attack advantage saturates at +300% (a 60-point
// advantage); defense advantage saturates at -70% (a 28-point advantage).
const (
	attackSkillFactorPerPoint = 0.05
	attackSkillFactorCap      = 3.0

	defenseSkillFactorPerPoint = 0.025
	defenseSkillFactorCap      = 0.7

	// meleeShooterPenalty applies when a ranged creature without the
	// shoot-in-melee trait is forced into a melee hit.
	meleeShooterPenalty = 0.5

	unluckyPenalty = 0.5
)

// AttackContext captures one attacker-vs-defender interaction at the moment
// of the attack.
//
// Lucky, Unlucky, DeathBlow, and DoubleDamage are trigger flags fed by the
// morale/luck and hero-skill systems; with those systems absent they are
// always false.
type AttackContext struct {
	Attacker    *Unit
	Defender    *Unit
	AttackerPos hexgrid.Hex
	DefenderPos hexgrid.Hex
	// Ranged is true for a shot, false for a melee hit.
	Ranged bool
	// ChargeDistance is the number of hexes moved before a melee hit, for
	// jousting bonuses.
	ChargeDistance int

	Lucky        bool
	Unlucky      bool
	DeathBlow    bool
	DoubleDamage bool
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min int
	Max int
}

// DamageEstimation is the computed outcome range for one attack: how much
// damage it may deal and how many defenders that kills.
type DamageEstimation struct {
	Damage Range
	Kills  Range
}

// EstimateDamage computes the damage and casualty ranges for ctx.
//
// Base damage is the attacker's per-creature damage interval scaled by its
// living count. Attack factors combine additively (1 + Σf), defense factors
// multiplicatively (Π(1 - min(1,f))), each bound is rounded to the nearest
// integer, and the result never drops below 1.
//
// Precondition: ctx.Attacker and ctx.Defender must be non-nil and alive.
func EstimateDamage(ctx AttackContext) DamageEstimation {
	att, def := ctx.Attacker, ctx.Defender

	baseMin := att.Type.MinDamage * att.Count
	baseMax := att.Type.MaxDamage * att.Count
	if baseMin > baseMax {
		baseMin, baseMax = baseMax, baseMin
	}

	attackTotal := 1.0 + sumAttackFactors(ctx)
	defenseTotal := productDefenseFactors(ctx)

	dmgMin := applyFactors(baseMin, attackTotal, defenseTotal)
	dmgMax := applyFactors(baseMax, attackTotal, defenseTotal)

	maxHP := def.MaxHealth()
	return DamageEstimation{
		Damage: Range{Min: dmgMin, Max: dmgMax},
		Kills: Range{
			Min: KillsFromDamage(dmgMin, def.FirstUnitHP, maxHP, def.Count),
			Max: KillsFromDamage(dmgMax, def.FirstUnitHP, maxHP, def.Count),
		},
	}
}

// KillsFromDamage returns how many creatures die in a stack with the given
// lead-creature HP, per-creature max HP, and count when it takes damage.
//
// This is the single authoritative casualty rule: both the estimation range
// and the engine's post-roll bookkeeping call it.
//
// Postcondition: 0 <= result <= count.
func KillsFromDamage(damage, firstUnitHP, maxHealth, count int) int {
	if count <= 0 || damage < firstUnitHP {
		return 0
	}
	kills := 1 + (damage-firstUnitHP)/maxHealth
	if kills > count {
		return count
	}
	return kills
}

// sumAttackFactors returns the additive attack bonus Σf for ctx.
func sumAttackFactors(ctx AttackContext) float64 {
	total := attackSkillFactor(ctx)
	total += offenseFactor(ctx)
	total += blessFactor(ctx)
	total += joustingFactor(ctx)
	total += attackFromBehindFactor(ctx)
	total += hateFactor(ctx)
	if ctx.Lucky {
		total += 1.0
	}
	if ctx.DeathBlow {
		total += 1.0
	}
	if ctx.DoubleDamage {
		total += 1.0
	}
	return total
}

// productDefenseFactors returns the multiplicative damage retention
// Π(1 - min(1,f)) for ctx.
func productDefenseFactors(ctx AttackContext) float64 {
	factors := []float64{
		defenseSkillFactor(ctx),
		armorerFactor(ctx),
		magicShieldFactor(ctx),
		obstaclePenaltyFactor(ctx),
		rangePenaltyFactor(ctx),
	}
	if ctx.Unlucky {
		factors = append(factors, unluckyPenalty)
	}
	total := 1.0
	for _, f := range factors {
		if f > 1.0 {
			f = 1.0
		}
		total *= 1.0 - f
	}
	return total
}

// applyFactors scales base damage by the combined factors, flooring the
// product and clamping to at least 1. The epsilon keeps float drift in the
// factor products from pushing an exact result below the next integer.
func applyFactors(base int, attackTotal, defenseTotal float64) int {
	dmg := int(math.Floor(float64(base)*attackTotal*defenseTotal + 1e-9))
	if dmg < 1 {
		return 1
	}
	return dmg
}

// attackSkillFactor is the bonus from an attack-skill advantage: 5% per point
// over the defender's defense, capped at +300%.
func attackSkillFactor(ctx AttackContext) float64 {
	adv := ctx.Attacker.Attack() - ctx.Defender.Defense()
	if adv <= 0 {
		return 0
	}
	f := float64(adv) * attackSkillFactorPerPoint
	if f > attackSkillFactorCap {
		return attackSkillFactorCap
	}
	return f
}

// defenseSkillFactor is the reduction from a defense-skill advantage: 2.5%
// per point over the attacker's attack, capped at 70%.
func defenseSkillFactor(ctx AttackContext) float64 {
	adv := ctx.Defender.Defense() - ctx.Attacker.Attack()
	if adv <= 0 {
		return 0
	}
	f := float64(adv) * defenseSkillFactorPerPoint
	if f > defenseSkillFactorCap {
		return defenseSkillFactorCap
	}
	return f
}

// rangePenaltyFactor penalises a ranged creature forced into melee without
// the shoot-in-melee trait. Distance falloff for actual shots belongs to an
// obstacle/wall system that does not exist yet.
func rangePenaltyFactor(ctx AttackContext) float64 {
	if ctx.Ranged {
		return 0
	}
	if ctx.Attacker.Type.IsRanged() && !ctx.Attacker.Type.CanShootInMelee {
		return meleeShooterPenalty
	}
	return 0
}

// The hooks below are extension points for hero skills, spells, and creature
// specials. They keep the factor pipeline shape stable while those systems
// are absent.

// offenseFactor covers the hero's offense/archery skill. No hero integration.
func offenseFactor(AttackContext) float64 { return 0 }

// blessFactor covers bless/curse damage shaping. No spell system.
func blessFactor(AttackContext) float64 { return 0 }

// joustingFactor covers cavalry charge bonuses scaled by ChargeDistance.
func joustingFactor(AttackContext) float64 { return 0 }

// attackFromBehindFactor covers flanking bonuses.
func attackFromBehindFactor(AttackContext) float64 { return 0 }

// hateFactor covers creature rivalries (e.g. genies vs efreet).
func hateFactor(AttackContext) float64 { return 0 }

// armorerFactor covers the hero's armorer skill. No hero integration.
func armorerFactor(AttackContext) float64 { return 0 }

// magicShieldFactor covers shield/air-shield spells. No spell system.
func magicShieldFactor(AttackContext) float64 { return 0 }

// obstaclePenaltyFactor covers shooting past walls. No siege system.
func obstaclePenaltyFactor(AttackContext) float64 { return 0 }
