// Package hexgrid implements coordinates on the fixed 17×11 hex battlefield.
//
// Cells are addressed by a single integer index in [0, 187): index = x + y*17.
// Rows use offset hex coordinates — odd rows are shifted half a cell left —
// so neighbor math depends on row parity, and distance converts to axial
// coordinates first.
package hexgrid

import "math"

// Battlefield dimensions. The two edge columns (x=0 and x=16) are reserved
// for the hero icons and are never usable by units.
const (
	FieldWidth  = 17
	FieldHeight = 11
	FieldSize   = FieldWidth * FieldHeight
)

// InfiniteDistance is returned by Distance when either hex is invalid.
const InfiniteDistance = math.MaxInt32

// Hex is a battlefield cell index in [0, FieldSize), or Invalid.
type Hex int

// Invalid is the sentinel for an off-grid coordinate.
const Invalid Hex = -1

// Direction identifies one of the six hex neighbors.
type Direction int

const (
	TopLeft Direction = iota
	TopRight
	Right
	BottomRight
	BottomLeft
	Left
)

// String returns a human-readable direction label.
func (d Direction) String() string {
	switch d {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case Right:
		return "right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Directions lists all six directions in clockwise order from TopLeft.
var Directions = [6]Direction{TopLeft, TopRight, Right, BottomRight, BottomLeft, Left}

// FromXY builds a Hex from column x and row y.
//
// Out-of-range input is rejected: the result is Invalid, never a silently
// corrected cell. Callers that compute placement coordinates must check
// IsValid before use.
//
// Postcondition: result.IsValid() iff 0 <= x < FieldWidth and 0 <= y < FieldHeight.
func FromXY(x, y int) Hex {
	if x < 0 || x >= FieldWidth || y < 0 || y >= FieldHeight {
		return Invalid
	}
	return Hex(x + y*FieldWidth)
}

// FromIndex builds a Hex from a raw cell index.
//
// Postcondition: result.IsValid() iff 0 <= index < FieldSize.
func FromIndex(index int) Hex {
	if index < 0 || index >= FieldSize {
		return Invalid
	}
	return Hex(index)
}

// X returns the column of the hex.
//
// Precondition: h must be valid; X on an invalid hex returns -1.
func (h Hex) X() int {
	if !h.IsValid() {
		return -1
	}
	return int(h) % FieldWidth
}

// Y returns the row of the hex.
//
// Precondition: h must be valid; Y on an invalid hex returns -1.
func (h Hex) Y() int {
	if !h.IsValid() {
		return -1
	}
	return int(h) / FieldWidth
}

// IsValid reports whether the hex lies on the battlefield grid.
func (h Hex) IsValid() bool {
	return h >= 0 && h < FieldSize
}

// IsAvailable reports whether units may occupy the hex: valid and not one of
// the two reserved edge columns.
func (h Hex) IsAvailable() bool {
	if !h.IsValid() {
		return false
	}
	x := h.X()
	return x != 0 && x != FieldWidth-1
}

// Neighbor returns the adjacent hex in the given direction, or Invalid if the
// neighbor falls outside the grid.
//
// Odd rows are shifted half a cell left, so the diagonal neighbors differ by
// row parity.
func (h Hex) Neighbor(d Direction) Hex {
	if !h.IsValid() {
		return Invalid
	}
	x, y := h.X(), h.Y()
	odd := y%2 == 1

	switch d {
	case TopLeft:
		if odd {
			return FromXY(x-1, y-1)
		}
		return FromXY(x, y-1)
	case TopRight:
		if odd {
			return FromXY(x, y-1)
		}
		return FromXY(x+1, y-1)
	case Right:
		return FromXY(x+1, y)
	case BottomRight:
		if odd {
			return FromXY(x, y+1)
		}
		return FromXY(x+1, y+1)
	case BottomLeft:
		if odd {
			return FromXY(x-1, y+1)
		}
		return FromXY(x, y+1)
	case Left:
		return FromXY(x-1, y)
	default:
		return Invalid
	}
}

// AllNeighbors returns exactly six entries, one per direction, some possibly
// Invalid for edge cells.
func (h Hex) AllNeighbors() [6]Hex {
	var out [6]Hex
	for i, d := range Directions {
		out[i] = h.Neighbor(d)
	}
	return out
}

// Distance returns the hex distance between h and other.
//
// The offset coordinates are converted to axial (x' = x + y/2) and the hex
// metric applied: same-sign deltas take max(|dx|,|dy|), opposite-sign deltas
// take |dx|+|dy|.
//
// Postcondition: Distance is symmetric and zero only for equal valid hexes.
// Returns InfiniteDistance if either hex is invalid.
func (h Hex) Distance(other Hex) int {
	if !h.IsValid() || !other.IsValid() {
		return InfiniteDistance
	}

	y1, y2 := h.Y(), other.Y()
	x1 := h.X() + y1/2
	x2 := other.X() + y2/2

	dx := x2 - x1
	dy := y2 - y1

	if (dx >= 0 && dy >= 0) || (dx < 0 && dy < 0) {
		return maxInt(absInt(dx), absInt(dy))
	}
	return absInt(dx) + absInt(dy)
}

// IsAdjacentTo reports whether other is exactly one hex away.
func (h Hex) IsAdjacentTo(other Hex) bool {
	return h.Distance(other) == 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
