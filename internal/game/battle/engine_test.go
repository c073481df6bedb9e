package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mimiasei/realmsofeldor-sub003/internal/game/battle"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/creature"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/hexgrid"
	"github.com/mimiasei/realmsofeldor-sub003/internal/game/rng"
)

func newEngine(t *testing.T, seed int64) *battle.Engine {
	t.Helper()
	return battle.NewEngine(rng.NewSeededSource(seed), zap.NewNop())
}

func peasantType() *creature.Type {
	return &creature.Type{
		ID:        "peasant",
		Name:      "Peasant",
		Attack:    1,
		Defense:   1,
		MinDamage: 1,
		MaxDamage: 1,
		Health:    6,
		Speed:     3,
	}
}

func griffinType() *creature.Type {
	return &creature.Type{
		ID:                 "griffin",
		Name:               "Griffin",
		Attack:             8,
		Defense:            8,
		MinDamage:          3,
		MaxDamage:          6,
		Health:             25,
		Speed:              6,
		NoMeleeRetaliation: false,
		Flying:             true,
	}
}

func marksmanType() *creature.Type {
	return &creature.Type{
		ID:        "marksman",
		Name:      "Marksman",
		Attack:    6,
		Defense:   3,
		MinDamage: 2,
		MaxDamage: 3,
		Health:    10,
		Speed:     6,
		Shots:     24,
	}
}

func TestAddUnit(t *testing.T) {
	e := newEngine(t, 1)

	u, err := e.AddUnit(peasantType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(2, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, u.ID)
	assert.Equal(t, 10, u.Count)

	got, ok := e.GetUnit(u.ID)
	require.True(t, ok)
	assert.Same(t, u, got)

	// Unit IDs are sequential and never reused.
	v, err := e.AddUnit(peasantType(), 5, battle.SideDefender, 0, hexgrid.FromXY(14, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, v.ID)
}

func TestAddUnit_Rejections(t *testing.T) {
	e := newEngine(t, 1)

	_, err := e.AddUnit(nil, 10, battle.SideAttacker, 0, hexgrid.FromXY(2, 4))
	assert.Error(t, err, "nil creature type")

	_, err = e.AddUnit(peasantType(), 0, battle.SideAttacker, 0, hexgrid.FromXY(2, 4))
	assert.Error(t, err, "empty stack")

	_, err = e.AddUnit(peasantType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(0, 4))
	assert.Error(t, err, "border column is not placeable")

	_, err = e.AddUnit(peasantType(), 10, battle.SideAttacker, 0, hexgrid.Invalid)
	assert.Error(t, err, "invalid hex")
}

func TestPlaceArmy_StandardColumns(t *testing.T) {
	e := newEngine(t, 1)

	attackers := []battle.ArmyStack{
		{Type: peasantType(), Count: 20},
		{Type: griffinType(), Count: 5},
		{Type: marksmanType(), Count: 10},
	}
	require.NoError(t, e.PlaceArmy(battle.SideAttacker, attackers))
	require.NoError(t, e.PlaceArmy(battle.SideDefender, []battle.ArmyStack{
		{Type: peasantType(), Count: 30},
		{Type: griffinType(), Count: 4},
	}))

	assert.NotNil(t, e.UnitAtPosition(hexgrid.FromXY(1, 1)), "attacker slot 0")
	assert.NotNil(t, e.UnitAtPosition(hexgrid.FromXY(2, 1)), "attacker slot 1")
	assert.NotNil(t, e.UnitAtPosition(hexgrid.FromXY(1, 4)), "attacker slot 2")
	assert.NotNil(t, e.UnitAtPosition(hexgrid.FromXY(15, 1)), "defender slot 0")
	assert.NotNil(t, e.UnitAtPosition(hexgrid.FromXY(14, 1)), "defender slot 1")

	assert.Len(t, e.UnitsForSide(battle.SideAttacker), 3)
	assert.Len(t, e.UnitsForSide(battle.SideDefender), 2)
}

func TestPlaceArmy_Rejections(t *testing.T) {
	e := newEngine(t, 1)

	eight := make([]battle.ArmyStack, 8)
	for i := range eight {
		eight[i] = battle.ArmyStack{Type: peasantType(), Count: 1}
	}
	assert.Error(t, e.PlaceArmy(battle.SideAttacker, eight))

	// Empty slots are skipped, not errors.
	require.NoError(t, e.PlaceArmy(battle.SideAttacker, []battle.ArmyStack{
		{Type: peasantType(), Count: 10},
		{},
		{Type: griffinType(), Count: 2},
	}))
	assert.Len(t, e.UnitsForSide(battle.SideAttacker), 2)
}

func TestStartNewRound(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 4))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 20, battle.SideDefender, 0, hexgrid.FromXY(14, 4))
	require.NoError(t, err)

	a.HasWaited = true
	a.IsDefending = true
	d.Shots = 0

	e.StartNewRound()

	assert.Equal(t, 1, e.Round)
	assert.Equal(t, battle.PhaseNormal, e.Phase)
	assert.False(t, a.HasWaited, "wait flag resets each round")
	assert.False(t, a.IsDefending)
	assert.Equal(t, []int{0, 1}, e.TurnOrder(), "griffin speed 6 outruns peasant speed 3")
}

func TestGetNextUnit_SkipsUnitsThatDiedWhileQueued(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 4))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 20, battle.SideDefender, 0, hexgrid.FromXY(14, 4))
	require.NoError(t, err)

	e.StartNewRound()
	require.Equal(t, a.ID, e.GetNextUnit())

	d.TakeDamage(10000)
	assert.Equal(t, battle.NoUnit, e.GetNextUnit(), "dead units are skipped")
	assert.Nil(t, e.ActiveUnit())
}

func TestExecuteAttack_RetaliatesOnce(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(7, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 40, battle.SideDefender, 0, hexgrid.FromXY(8, 5))
	require.NoError(t, err)
	e.StartNewRound()

	first := e.ExecuteAttack(a, d, 0)
	require.NotNil(t, first)
	assert.NotNil(t, first.Retaliation, "first melee hit draws a retaliation")
	assert.Nil(t, first.Retaliation.Retaliation, "retaliations never nest")
	assert.Same(t, d, first.Retaliation.Attacker)
	assert.Same(t, a, first.Retaliation.Defender)

	// The defender's single retaliation for this turn is spent.
	second := e.ExecuteAttack(a, d, 0)
	require.NotNil(t, second)
	assert.Nil(t, second.Retaliation, "only one retaliation per turn")
}

func TestExecuteAttack_NoRetaliationWhenDefenderDies(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 50, battle.SideAttacker, 0, hexgrid.FromXY(7, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 1, battle.SideDefender, 0, hexgrid.FromXY(8, 5))
	require.NoError(t, err)
	e.StartNewRound()

	result := e.ExecuteAttack(a, d, 0)
	require.NotNil(t, result)
	assert.True(t, result.Killed)
	assert.Nil(t, result.Retaliation, "the dead do not strike back")
}

func TestExecuteAttack_NoRetaliationTrait(t *testing.T) {
	e := newEngine(t, 1)
	vampire := griffinType()
	vampire.ID = "vampire"
	vampire.NoMeleeRetaliation = true

	a, err := e.AddUnit(vampire, 5, battle.SideAttacker, 0, hexgrid.FromXY(7, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 200, battle.SideDefender, 0, hexgrid.FromXY(8, 5))
	require.NoError(t, err)
	e.StartNewRound()

	result := e.ExecuteAttack(a, d, 0)
	require.NotNil(t, result)
	assert.Nil(t, result.Retaliation)
	assert.Equal(t, 1, d.Retaliations, "the retaliation was not consumed")
}

func TestExecuteAttack_NilAndDeadParties(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(7, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(8, 5))
	require.NoError(t, err)

	assert.Nil(t, e.ExecuteAttack(nil, d, 0))
	assert.Nil(t, e.ExecuteAttack(a, nil, 0))

	d.TakeDamage(10000)
	assert.Nil(t, e.ExecuteAttack(a, d, 0))
}

func TestExecuteAttack_RequiresAdjacency(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)
	e.StartNewRound()

	count := d.Count
	assert.Nil(t, e.ExecuteAttack(a, d, 0), "melee cannot reach across the field")
	assert.Equal(t, count, d.Count, "the defender is untouched")
	assert.False(t, a.HasMoved, "the attacker's turn did not end")
}

func TestExecuteShoot(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(marksmanType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 200, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)
	e.StartNewRound()

	shots := a.Shots
	result := e.ExecuteShoot(a, d)
	require.NotNil(t, result)
	assert.True(t, result.Ranged)
	assert.Nil(t, result.Retaliation, "shots never provoke retaliation")
	assert.Equal(t, shots-1, a.Shots)
}

func TestExecuteShoot_NoAmmunition(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(marksmanType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)

	a.Shots = 0
	assert.Nil(t, e.ExecuteShoot(a, d))
}

func TestExecuteDefend(t *testing.T) {
	e := newEngine(t, 1)
	u, err := e.AddUnit(griffinType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)

	e.ExecuteDefend(u)
	assert.True(t, u.IsDefending)
	assert.Equal(t, u.Type.Defense+u.Type.Defense/2, u.Defense(),
		"defending grants half the base defense again")
}

func TestExecuteWait_SecondWaitForfeitsTheTurn(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	_, err = e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)

	e.StartNewRound()
	require.Equal(t, a.ID, e.GetNextUnit())

	e.ExecuteWait(a)
	assert.True(t, a.HasWaited)
	assert.Contains(t, e.TurnOrder(), a.ID, "the waited turn is still pending")

	// Waiting again must not loop forever: the pending entry stays, but a
	// waited unit that waits once more just gives up the turn.
	require.Equal(t, 1, e.GetNextUnit(), "peasant acts during the wait window")
	require.Equal(t, a.ID, e.GetNextUnit())
	e.ExecuteWait(a)
	assert.NotContains(t, e.TurnOrder(), a.ID)
}

func TestCheckBattleEnd(t *testing.T) {
	e := newEngine(t, 1)
	_, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)

	assert.False(t, e.CheckBattleEnd())
	assert.False(t, e.IsFinished())
	_, ok := e.WinningSide()
	assert.False(t, ok)

	d.TakeDamage(10000)
	assert.True(t, e.CheckBattleEnd())
	assert.True(t, e.IsFinished())
	winner, ok := e.WinningSide()
	require.True(t, ok)
	assert.Equal(t, battle.SideAttacker, winner)
	assert.Equal(t, battle.PhaseEnded, e.Phase)
}

func TestCheckBattleEnd_DoubleWipeIsADraw(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)

	a.TakeDamage(10000)
	d.TakeDamage(10000)

	assert.True(t, e.CheckBattleEnd())
	assert.True(t, e.IsFinished())
	_, ok := e.WinningSide()
	assert.False(t, ok, "a draw has no winner")
}

func TestRemoveDeadUnits(t *testing.T) {
	e := newEngine(t, 1)
	a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	d, err := e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)

	d.TakeDamage(10000)
	assert.Equal(t, 1, e.RemoveDeadUnits())
	_, ok := e.GetUnit(d.ID)
	assert.False(t, ok)
	_, ok = e.GetUnit(a.ID)
	assert.True(t, ok)

	// Freed IDs are not handed out again.
	next, err := e.AddUnit(peasantType(), 3, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)
	assert.Equal(t, 2, next.ID)
}

func TestHexQueries(t *testing.T) {
	e := newEngine(t, 1)
	u, err := e.AddUnit(peasantType(), 10, battle.SideAttacker, 0, hexgrid.FromXY(5, 5))
	require.NoError(t, err)
	e.AddObstacle(hexgrid.FromXY(6, 5), battle.Obstacle{Name: "boulder"})

	assert.True(t, e.IsHexOccupied(u.Position))
	assert.False(t, e.IsHexAccessible(u.Position))
	assert.True(t, e.IsHexBlocked(hexgrid.FromXY(6, 5)))
	assert.False(t, e.IsHexAccessible(hexgrid.FromXY(6, 5)))
	assert.True(t, e.IsHexAccessible(hexgrid.FromXY(7, 5)))
	assert.False(t, e.IsHexAccessible(hexgrid.FromXY(0, 5)), "border column")

	u.TakeDamage(10000)
	assert.False(t, e.IsHexOccupied(u.Position), "dead units do not occupy hexes")
}

func TestSeededBattle_ReplaysIdentically(t *testing.T) {
	run := func(seed int64) []int {
		e := battle.NewEngine(rng.NewSeededSource(seed), zap.NewNop())
		a, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(7, 5))
		require.NoError(t, err)
		d, err := e.AddUnit(peasantType(), 100, battle.SideDefender, 0, hexgrid.FromXY(8, 5))
		require.NoError(t, err)

		var damages []int
		for i := 0; i < 10 && a.IsAlive() && d.IsAlive(); i++ {
			e.StartNewRound()
			result := e.ExecuteAttack(a, d, 0)
			require.NotNil(t, result)
			damages = append(damages, result.Damage)
			if result.Retaliation != nil {
				damages = append(damages, result.Retaliation.Damage)
			}
		}
		return damages
	}

	assert.Equal(t, run(42), run(42), "same seed, same battle")
	assert.NotEqual(t, run(42), run(43), "different seeds diverge")
}

func TestBattleSummary(t *testing.T) {
	e := newEngine(t, 1)
	_, err := e.AddUnit(griffinType(), 5, battle.SideAttacker, 0, hexgrid.FromXY(2, 5))
	require.NoError(t, err)
	_, err = e.AddUnit(peasantType(), 10, battle.SideDefender, 0, hexgrid.FromXY(14, 5))
	require.NoError(t, err)
	e.StartNewRound()

	s := e.BattleSummary()
	assert.Contains(t, s, "round 1")
	assert.Contains(t, s, "attacker: 1 stacks, 5 creatures")
	assert.Contains(t, s, "defender: 1 stacks, 10 creatures")

	winner := battle.SideAttacker
	e.EndBattle(&winner)
	assert.Contains(t, e.BattleSummary(), "winner: attacker")
}
