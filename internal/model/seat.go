package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Seat identifies one cell of a seating grid. Row and Col are zero
// based; SeatNumber is the printable code such as "A1". The JSON form
// is what bookings persist in their seats column.
type Seat struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	SeatNumber string `json:"seatNumber"`
}

// NewSeat builds a seat at the given grid coordinates and fills in its
// printable code.
func NewSeat(row, col int) Seat {
	return Seat{Row: row, Col: col, SeatNumber: SeatCode(row, col)}
}

// SeatCode returns the row letter followed by the one-based column,
// e.g. row 0 col 0 is "A1".
func SeatCode(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col+1)
}

// RowLabel converts a zero-based row index to an alphabetical label:
// 0 -> A, 25 -> Z, 26 -> AA.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// rowIndex is the inverse of RowLabel.
func rowIndex(label string) (int, bool) {
	if label == "" {
		return -1, false
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return -1, false
		}
		n = n*26 + int(r-'A'+1)
	}
	return n - 1, true
}

// ParseSeatCode turns a code such as "C7" back into a seat.
func ParseSeatCode(code string) (Seat, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	i := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return Seat{}, &ValidationError{Field: "seat", Reason: fmt.Sprintf("malformed seat code %q", code)}
	}
	row, ok := rowIndex(s[:i])
	if !ok {
		return Seat{}, &ValidationError{Field: "seat", Reason: fmt.Sprintf("malformed seat code %q", code)}
	}
	col, err := strconv.Atoi(s[i:])
	if err != nil || col < 1 {
		return Seat{}, &ValidationError{Field: "seat", Reason: fmt.Sprintf("malformed seat code %q", code)}
	}
	return NewSeat(row, col-1), nil
}

// SeatCodes returns the printable codes of seats in order.
func SeatCodes(seats []Seat) []string {
	out := make([]string, len(seats))
	for i, s := range seats {
		if s.SeatNumber != "" {
			out[i] = s.SeatNumber
			continue
		}
		out[i] = SeatCode(s.Row, s.Col)
	}
	return out
}
