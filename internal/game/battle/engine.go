package battle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mimiasei/realmsofeldor-sub003/internal/game/creature"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/hexgrid"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/rng"
)

// AttackResult reports one resolved attack. A melee hit that provoked a
// retaliation carries the retaliation's result nested one level; retaliations
// never nest further.
type AttackResult struct {
	Attacker *Unit
	Defender *Unit
	// Damage is the rolled damage applied to the defender.
	Damage int
	// Kills is the number of defender creatures that died.
	Kills int
	// Killed is true when the defender stack was wiped out.
	Killed bool
	// Ranged is true for a shot.
	Ranged bool
	// Retaliation is the defender's counter-attack, if one happened.
	Retaliation *AttackResult
}

// Result records a finished battle. A nil Winner is a draw.
type Result struct {
	Finished bool
	Winner   *Side
}

// Obstacle blocks a battlefield cell.
type Obstacle struct {
	Name string
}

// ArmyStack is one army slot handed to PlaceArmy: a creature type and count.
type ArmyStack struct {
	Type  *creature.Type
	Count int
}

// Engine owns the full state of one battle: the unit table, the turn
// scheduler, the obstacle map, and the round/phase counters. It is
// single-threaded; one instance serves exactly one battle.
type Engine struct {
	// ID uniquely identifies this battle instance.
	ID string

	units      map[int]*Unit
	nextUnitID int

	// Round is the current round number; StartNewRound increments it, so the
	// first round is 1.
	Round int
	// ActiveUnitID is the unit whose turn it is, or NoUnit.
	ActiveUnitID int
	// Phase is the engine-level battle phase.
	Phase BattlePhase
	// Terrain is the battlefield terrain type, carried for presentation.
	Terrain string

	obstacles map[hexgrid.Hex]Obstacle
	scheduler *TurnScheduler
	roller    *rng.Roller
	logger    *zap.Logger
	result    Result
}

// NewEngine creates an engine for one battle, owning a single random source
// for every damage roll so a seeded battle replays identically.
//
// Precondition: src and logger must be non-nil.
func NewEngine(src rng.Source, logger *zap.Logger) *Engine {
	return &Engine{
		ID:           uuid.NewString(),
		units:        make(map[int]*Unit),
		ActiveUnitID: NoUnit,
		Phase:        PhaseNotStarted,
		obstacles:    make(map[hexgrid.Hex]Obstacle),
		scheduler:    NewTurnScheduler(),
		roller:       rng.NewRoller(src, logger),
		logger:       logger,
	}
}

// AddUnit allocates the next unit ID and places a new stack on the field.
//
// Postcondition: returns an error (and no unit) for a nil type, non-positive
// count, or an unusable position.
func (e *Engine) AddUnit(ctype *creature.Type, count int, side Side, slot int, pos hexgrid.Hex) (*Unit, error) {
	if !pos.IsAvailable() {
		return nil, fmt.Errorf("battle %s: hex %d is not available for unit placement", e.ID, pos)
	}
	u, err := NewUnit(e.nextUnitID, ctype, count, side, slot, pos)
	if err != nil {
		return nil, err
	}
	e.nextUnitID++
	e.units[u.ID] = u
	e.logger.Debug("unit added",
		zap.Int("unit_id", u.ID),
		zap.String("creature", ctype.ID),
		zap.Int("count", count),
		zap.String("side", side.String()),
		zap.Int("slot", slot),
	)
	return u, nil
}

// PlaceArmy places up to seven stacks for one side in the standard columns:
// attacker stacks in columns 1–2, defender stacks in columns 14–15, slot
// pairs stacked in three-row bands top to bottom.
//
// Precondition: at most 7 stacks.
func (e *Engine) PlaceArmy(side Side, stacks []ArmyStack) error {
	if len(stacks) > 7 {
		return fmt.Errorf("battle %s: army has %d stacks, maximum is 7", e.ID, len(stacks))
	}
	for slot, stack := range stacks {
		if stack.Count <= 0 {
			continue
		}
		y := (slot/2)*3 + 1
		var x int
		if side == SideAttacker {
			x = 1 + slot%2
		} else {
			x = hexgrid.FieldWidth - 2 - slot%2
		}
		pos := hexgrid.FromXY(x, y)
		if _, err := e.AddUnit(stack.Type, stack.Count, side, slot, pos); err != nil {
			return err
		}
	}
	return nil
}

// StartNewRound begins the next round: every living unit gets a fresh turn
// and its status effects tick down, and the turn queue is rebuilt.
func (e *Engine) StartNewRound() {
	e.Round++
	e.Phase = PhaseNormal
	alive := e.aliveUnits()
	for _, u := range alive {
		u.StartTurn()
		for _, name := range u.TickEffects() {
			e.logger.Debug("status effect expired",
				zap.Int("unit_id", u.ID),
				zap.String("effect", name),
			)
		}
	}
	e.scheduler.Build(alive)
	e.logger.Info("round started",
		zap.String("battle_id", e.ID),
		zap.Int("round", e.Round),
		zap.Int("queued", e.scheduler.Len()),
	)
}

// aliveUnits returns the living units of both sides, ordered by ID.
func (e *Engine) aliveUnits() []*Unit {
	var out []*Unit
	for _, u := range e.AllUnits() {
		if u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

// GetNextUnit pulls the next living unit from the scheduler and makes it the
// active unit. Units that died while queued are skipped.
//
// Postcondition: returns NoUnit iff the round is over.
func (e *Engine) GetNextUnit() int {
	for {
		id := e.scheduler.NextUnit()
		if id == NoUnit {
			e.ActiveUnitID = NoUnit
			return NoUnit
		}
		if u, ok := e.units[id]; ok && u.IsAlive() {
			e.ActiveUnitID = id
			return id
		}
	}
}

// ExecuteAttack resolves a melee attack, rolling damage uniformly in the
// estimated range. The defender retaliates once if it survived, still has a
// retaliation, and the attacker does not carry the no-retaliation trait.
//
// Returns nil when either party is nil or dead, or the defender is out of
// melee reach; the attacker's turn is ended only on a resolved attack.
func (e *Engine) ExecuteAttack(attacker, defender *Unit, chargeDistance int) *AttackResult {
	if attacker == nil || defender == nil || !attacker.IsAlive() || !defender.IsAlive() {
		return nil
	}
	if !attacker.Position.IsAdjacentTo(defender.Position) {
		return nil
	}

	result := e.resolveStrike(attacker, defender, false, chargeDistance)

	if defender.IsAlive() && defender.CanRetaliate() && !attacker.Type.NoMeleeRetaliation {
		defender.UseRetaliation()
		result.Retaliation = e.resolveStrike(defender, attacker, false, 0)
	}

	attacker.EndTurn()
	return result
}

// ExecuteShoot resolves a ranged attack, consuming one shot. Shots never
// provoke retaliation.
//
// Returns nil when either party is nil or dead or the attacker has no
// ammunition left.
func (e *Engine) ExecuteShoot(attacker, defender *Unit) *AttackResult {
	if attacker == nil || defender == nil || !attacker.IsAlive() || !defender.IsAlive() {
		return nil
	}
	if !attacker.CanShoot() {
		return nil
	}

	attacker.UseShot()
	result := e.resolveStrike(attacker, defender, true, 0)
	attacker.EndTurn()
	return result
}

// ExecuteDefend puts the unit in the defensive stance for the rest of the
// round and ends its turn.
func (e *Engine) ExecuteDefend(u *Unit) {
	if u == nil || !u.IsAlive() {
		return
	}
	u.IsDefending = true
	u.EndTurn()
	e.logger.Debug("unit defends", zap.Int("unit_id", u.ID))
}

// ExecuteWait postpones the unit's turn to the wait phase of the current
// round. A unit that already waited this round forfeits the turn instead.
func (e *Engine) ExecuteWait(u *Unit) {
	if u == nil || !u.IsAlive() {
		return
	}
	if u.HasWaited {
		u.EndTurn()
		return
	}
	e.scheduler.MoveToWaitPhase(u)
	e.logger.Debug("unit waits", zap.Int("unit_id", u.ID))
}

// resolveStrike performs one hit with no retaliation handling: estimate,
// roll, apply, count casualties.
func (e *Engine) resolveStrike(attacker, defender *Unit, ranged bool, chargeDistance int) *AttackResult {
	ctx := AttackContext{
		Attacker:       attacker,
		Defender:       defender,
		AttackerPos:    attacker.Position,
		DefenderPos:    defender.Position,
		Ranged:         ranged,
		ChargeDistance: chargeDistance,
	}
	est := EstimateDamage(ctx)
	damage := e.roller.Between(est.Damage.Min, est.Damage.Max)
	kills := KillsFromDamage(damage, defender.FirstUnitHP, defender.MaxHealth(), defender.Count)
	defender.TakeDamage(damage)

	result := &AttackResult{
		Attacker: attacker,
		Defender: defender,
		Damage:   damage,
		Kills:    kills,
		Killed:   !defender.IsAlive(),
		Ranged:   ranged,
	}
	e.logger.Debug("attack resolved",
		zap.Int("attacker_id", attacker.ID),
		zap.Int("defender_id", defender.ID),
		zap.Bool("ranged", ranged),
		zap.Int("damage", damage),
		zap.Int("kills", kills),
		zap.Bool("killed", result.Killed),
	)
	return result
}

// CheckBattleEnd scans the unit table and ends the battle when a side has no
// living units: the surviving side wins, or a double wipe is a draw.
//
// Postcondition: returns true iff the battle is finished.
func (e *Engine) CheckBattleEnd() bool {
	if e.result.Finished {
		return true
	}
	attackers := len(e.UnitsForSide(SideAttacker))
	defenders := len(e.UnitsForSide(SideDefender))

	switch {
	case attackers == 0 && defenders == 0:
		e.EndBattle(nil)
		return true
	case attackers == 0:
		winner := SideDefender
		e.EndBattle(&winner)
		return true
	case defenders == 0:
		winner := SideAttacker
		e.EndBattle(&winner)
		return true
	default:
		return false
	}
}

// EndBattle marks the battle finished with the given winner; nil is a draw.
func (e *Engine) EndBattle(winner *Side) {
	e.result = Result{Finished: true, Winner: winner}
	e.Phase = PhaseEnded
	if winner != nil {
		e.logger.Info("battle ended",
			zap.String("battle_id", e.ID),
			zap.String("winner", winner.String()),
			zap.Int("round", e.Round),
		)
	} else {
		e.logger.Info("battle ended in a draw",
			zap.String("battle_id", e.ID),
			zap.Int("round", e.Round),
		)
	}
}

// IsFinished reports whether the battle has ended.
func (e *Engine) IsFinished() bool {
	return e.result.Finished
}

// WinningSide returns the winner of a finished battle. The second return is
// false while the battle runs or when it ended in a draw.
func (e *Engine) WinningSide() (Side, bool) {
	if !e.result.Finished || e.result.Winner == nil {
		return SideAttacker, false
	}
	return *e.result.Winner, true
}

// GetUnit returns the unit with the given ID.
func (e *Engine) GetUnit(id int) (*Unit, bool) {
	u, ok := e.units[id]
	return u, ok
}

// ActiveUnit returns the unit whose turn it is, or nil.
func (e *Engine) ActiveUnit() *Unit {
	if e.ActiveUnitID == NoUnit {
		return nil
	}
	return e.units[e.ActiveUnitID]
}

// AllUnits returns every unit in the table, dead ones included, ordered by ID.
func (e *Engine) AllUnits() []*Unit {
	out := make([]*Unit, 0, len(e.units))
	for _, u := range e.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnitsForSide returns the living units of one side, ordered by ID.
func (e *Engine) UnitsForSide(side Side) []*Unit {
	var out []*Unit
	for _, u := range e.AllUnits() {
		if u.Side == side && u.IsAlive() {
			out = append(out, u)
		}
	}
	return out
}

// UnitAtPosition returns the living unit occupying the hex, or nil.
func (e *Engine) UnitAtPosition(pos hexgrid.Hex) *Unit {
	for _, u := range e.units {
		if u.IsAlive() && u.Position == pos {
			return u
		}
	}
	return nil
}

// RemoveDeadUnits prunes dead stacks from the unit table and returns how many
// were removed. IDs are never reused.
func (e *Engine) RemoveDeadUnits() int {
	removed := 0
	for id, u := range e.units {
		if !u.IsAlive() {
			delete(e.units, id)
			removed++
		}
	}
	return removed
}

// AddObstacle blocks a battlefield cell.
func (e *Engine) AddObstacle(pos hexgrid.Hex, o Obstacle) {
	if pos.IsValid() {
		e.obstacles[pos] = o
	}
}

// IsHexOccupied reports whether a living unit stands on the hex.
func (e *Engine) IsHexOccupied(pos hexgrid.Hex) bool {
	return e.UnitAtPosition(pos) != nil
}

// IsHexBlocked reports whether an obstacle blocks the hex.
func (e *Engine) IsHexBlocked(pos hexgrid.Hex) bool {
	_, ok := e.obstacles[pos]
	return ok
}

// IsHexAccessible reports whether a unit could stand on the hex: usable,
// unoccupied, and unblocked.
func (e *Engine) IsHexAccessible(pos hexgrid.Hex) bool {
	return pos.IsAvailable() && !e.IsHexOccupied(pos) && !e.IsHexBlocked(pos)
}

// TurnOrder returns the remaining turn order of the current round, for
// display only.
func (e *Engine) TurnOrder() []int {
	return e.scheduler.TurnOrder()
}

// Scheduler exposes the turn scheduler for callers that drive the round loop.
func (e *Engine) Scheduler() *TurnScheduler {
	return e.scheduler
}

// BattleSummary returns a short human-readable description of the battle
// state for presentation.
func (e *Engine) BattleSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "round %d, phase %s", e.Round, e.Phase)
	for _, side := range []Side{SideAttacker, SideDefender} {
		units := e.UnitsForSide(side)
		creatures := 0
		for _, u := range units {
			creatures += u.Count
		}
		fmt.Fprintf(&b, " | %s: %d stacks, %d creatures", side, len(units), creatures)
	}
	if e.result.Finished {
		if winner, ok := e.WinningSide(); ok {
			fmt.Fprintf(&b, " | winner: %s", winner)
		} else {
			b.WriteString(" | draw")
		}
	}
	return b.String()
}
