package model

import (
	"encoding/json"
	"fmt"
)

// SeatState is the availability of one grid cell. The numeric values
// are what the seating_map column stores.
type SeatState int

const (
	SeatAvailable   SeatState = 0
	SeatReserved    SeatState = 1
	SeatNonBookable SeatState = 2
)

// Default grid used for every new showtime: 8 rows of 10 seats with a
// central aisle in columns 4 and 5 (zero based).
const (
	DefaultRows = 8
	DefaultCols = 10
)

var defaultAisles = []int{4, 5}

// SeatingMap is the per-showtime grid of seat states, indexed
// [row][col]. It is stored as a JSON array of arrays.
type SeatingMap [][]SeatState

// NewSeatingMap builds a rows x cols grid with every seat available
// except the listed aisle columns, which are non-bookable.
func NewSeatingMap(rows, cols int, aisles ...int) SeatingMap {
	m := make(SeatingMap, rows)
	for r := range m {
		m[r] = make([]SeatState, cols)
		for _, a := range aisles {
			if a >= 0 && a < cols {
				m[r][a] = SeatNonBookable
			}
		}
	}
	return m
}

// DefaultSeatingMap returns a fresh 8x10 grid with the centre aisle.
func DefaultSeatingMap() SeatingMap {
	return NewSeatingMap(DefaultRows, DefaultCols, defaultAisles...)
}

// Rows returns the number of rows.
func (m SeatingMap) Rows() int { return len(m) }

// Cols returns the width of the first row, or zero for an empty grid.
func (m SeatingMap) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// State returns the state at (row, col). Cells outside the grid read
// as non-bookable.
func (m SeatingMap) State(row, col int) SeatState {
	if row < 0 || row >= len(m) || col < 0 || col >= len(m[row]) {
		return SeatNonBookable
	}
	return m[row][col]
}

// Clone returns a deep copy.
func (m SeatingMap) Clone() SeatingMap {
	out := make(SeatingMap, len(m))
	for r := range m {
		out[r] = append([]SeatState(nil), m[r]...)
	}
	return out
}

// Available counts seats in state 0.
func (m SeatingMap) Available() int {
	n := 0
	for _, row := range m {
		for _, s := range row {
			if s == SeatAvailable {
				n++
			}
		}
	}
	return n
}

// Reserve returns a copy of m with every listed seat moved from
// available to reserved. m itself is left untouched. A seat that is
// already reserved, or listed twice, yields ErrSeatAlreadyReserved; a
// seat in an aisle or outside the grid yields ErrSeatNotBookable.
func (m SeatingMap) Reserve(seats []Seat) (SeatingMap, error) {
	out := m.Clone()
	for _, s := range seats {
		switch out.State(s.Row, s.Col) {
		case SeatAvailable:
			out[s.Row][s.Col] = SeatReserved
		case SeatReserved:
			return nil, fmt.Errorf("seat %s: %w", SeatCode(s.Row, s.Col), ErrSeatAlreadyReserved)
		default:
			return nil, fmt.Errorf("seat %s: %w", SeatCode(s.Row, s.Col), ErrSeatNotBookable)
		}
	}
	return out, nil
}

// Encode serialises the grid for the seating_map column.
func (m SeatingMap) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseSeatingMap decodes a seating_map column value.
func ParseSeatingMap(raw string) (SeatingMap, error) {
	var m SeatingMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode seating map: %w", err)
	}
	return m, nil
}
