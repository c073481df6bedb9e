package battle

import "sort"

// TurnPhase orders the three sub-phases of a round: units act in their normal
// slot first, then the ones that waited. Entries are rebuilt every round.
type TurnPhase int

const (
	TurnPhaseNormal TurnPhase = iota
	TurnPhaseWaitMorale
	TurnPhaseWaitNoMorale
)

// NoUnit is the sentinel returned by NextUnit and PeekNextUnit when the queue
// is empty. Callers must treat it as "round is over".
const NoUnit = -1

// TurnQueueEntry is one scheduled turn for the current round. Initiative is
// cached at queue-build time.
type TurnQueueEntry struct {
	UnitID     int
	Phase      TurnPhase
	Initiative int
	Side       Side
	Slot       int
	Bonus      bool
}

// TurnScheduler maintains the ordered queue of units still to act this round.
//
// Sort order, ascending = acts first: phase, then initiative descending, then
// army-slot order within a side. Equal-initiative units on opposite sides
// alternate: the side that did not act last goes first, with the attacker
// winning the very first tie of the battle.
type TurnScheduler struct {
	entries []TurnQueueEntry

	lastActiveSide Side
	anyActed       bool
}

// NewTurnScheduler creates an empty scheduler.
func NewTurnScheduler() *TurnScheduler {
	return &TurnScheduler{}
}

// Build clears the queue and enqueues every living unit that has not already
// waited, tagged for the normal phase, then sorts.
//
// Postcondition: Len() equals the number of eligible units.
func (s *TurnScheduler) Build(units []*Unit) {
	s.entries = s.entries[:0]
	for _, u := range units {
		if !u.IsAlive() || u.HasWaited {
			continue
		}
		s.entries = append(s.entries, TurnQueueEntry{
			UnitID:     u.ID,
			Phase:      TurnPhaseNormal,
			Initiative: u.Initiative(),
			Side:       u.Side,
			Slot:       u.Slot,
		})
	}
	s.sortEntries()
}

// Len returns the number of turns left in the queue.
func (s *TurnScheduler) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether the round is over.
func (s *TurnScheduler) IsEmpty() bool {
	return len(s.entries) == 0
}

// CurrentPhase returns the phase of the head entry, or TurnPhaseNormal for an
// empty queue.
func (s *TurnScheduler) CurrentPhase() TurnPhase {
	if len(s.entries) == 0 {
		return TurnPhaseNormal
	}
	return s.entries[0].Phase
}

// NextUnit dequeues and returns the head unit ID, recording its side for the
// anti-monopoly tiebreak. The remaining queue is re-sorted so the new
// lastActiveSide takes effect on equal-initiative ties immediately.
//
// Postcondition: returns NoUnit iff the queue was empty.
func (s *TurnScheduler) NextUnit() int {
	if len(s.entries) == 0 {
		return NoUnit
	}
	head := s.entries[0]
	s.entries = s.entries[1:]
	s.lastActiveSide = head.Side
	s.anyActed = true
	s.sortEntries()
	return head.UnitID
}

// PeekNextUnit returns the head unit ID without dequeuing it.
//
// Postcondition: returns NoUnit iff the queue is empty; queue is unchanged.
func (s *TurnScheduler) PeekNextUnit() int {
	if len(s.entries) == 0 {
		return NoUnit
	}
	return s.entries[0].UnitID
}

// MoveToWaitPhase postpones the unit's turn: any pending entry is removed and
// the unit is enqueued tagged for the wait phase at the same initiative, after
// all not-yet-acted normal-phase units but within the same round. Sets the
// unit's HasWaited flag.
//
// A unit that already waited this round is not enqueued again; that guards
// the queue against wait loops.
func (s *TurnScheduler) MoveToWaitPhase(u *Unit) {
	if u == nil {
		return
	}
	for i, e := range s.entries {
		if e.UnitID == u.ID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	if !u.HasWaited {
		s.entries = append(s.entries, TurnQueueEntry{
			UnitID:     u.ID,
			Phase:      TurnPhaseWaitMorale,
			Initiative: u.Initiative(),
			Side:       u.Side,
			Slot:       u.Slot,
		})
	}
	u.HasWaited = true
	s.sortEntries()
}

// InsertBonusTurn inserts a morale-triggered extra turn for u at the absolute
// front of the queue, bypassing the sort order, so it acts immediately next.
func (s *TurnScheduler) InsertBonusTurn(u *Unit) {
	if u == nil || !u.IsAlive() {
		return
	}
	entry := TurnQueueEntry{
		UnitID:     u.ID,
		Phase:      TurnPhaseNormal,
		Initiative: u.Initiative(),
		Side:       u.Side,
		Slot:       u.Slot,
		Bonus:      true,
	}
	s.entries = append([]TurnQueueEntry{entry}, s.entries...)
}

// TurnOrder returns the full ordered unit-ID list, for display only.
func (s *TurnScheduler) TurnOrder() []int {
	out := make([]int, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.UnitID
	}
	return out
}

// sortEntries re-sorts the queue. The sort is stable so bonus-turn entries
// with identical keys keep their relative order.
func (s *TurnScheduler) sortEntries() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.less(s.entries[i], s.entries[j])
	})
}

// less is the total order over queue entries: earlier = acts first. Bonus
// entries outrank everything so a morale turn survives later re-sorts.
func (s *TurnScheduler) less(a, b TurnQueueEntry) bool {
	if a.Bonus != b.Bonus {
		return a.Bonus
	}
	if a.Phase != b.Phase {
		return a.Phase < b.Phase
	}
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	if a.Side == b.Side {
		return a.Slot < b.Slot
	}
	// Opposite sides at equal initiative: the side that did not act last
	// goes first; before anyone has acted, the attacker leads.
	if s.anyActed {
		return a.Side != s.lastActiveSide
	}
	return a.Side == SideAttacker
}
