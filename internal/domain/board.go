package domain

// BoardSize is the width and height of the tic-tac-toe grid.
const BoardSize = 3

// Mark is the symbol a seat writes into a cell.
type Mark int

const (
	// MarkEmpty is an unclaimed cell.
	MarkEmpty Mark = iota
	// MarkX belongs to seat 0.
	MarkX
	// MarkO belongs to seat 1.
	MarkO
)

// String returns the printable symbol for the mark.
func (m Mark) String() string {
	switch m {
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return "-"
	}
}

// MarkForSeat maps a seat index to its mark. Seat 0 plays X, seat 1 plays O.
func MarkForSeat(seat int) Mark {
	if seat == 0 {
		return MarkX
	}
	return MarkO
}

// Grid is the 3x3 board indexed as Grid[y][x].
type Grid [BoardSize][BoardSize]Mark

// lines lists every winning line as (x, y) cells: rows, then columns, then diagonals.
var lines = [8][3][2]int{
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{2, 0}, {1, 1}, {0, 2}},
}

// EvaluateWinner returns the mark that fills a complete line, if any.
// Lines are scanned rows first, then columns, then diagonals.
func EvaluateWinner(g Grid) (Mark, bool) {
	for _, line := range lines {
		a := g[line[0][1]][line[0][0]]
		b := g[line[1][1]][line[1][0]]
		c := g[line[2][1]][line[2][0]]
		if a != MarkEmpty && a == b && b == c {
			return a, true
		}
	}
	return MarkEmpty, false
}

// IsFull reports whether no empty cell remains.
func IsFull(g Grid) bool {
	for _, row := range g {
		for _, cell := range row {
			if cell == MarkEmpty {
				return false
			}
		}
	}
	return true
}

// InBounds reports whether (x, y) addresses a cell on the grid.
func InBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}
