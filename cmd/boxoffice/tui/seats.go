package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/theatre-booking/internal/model"
)

// SeatPicker is the cursor-driven seat selection grid. Only available
// seats can be selected.
type SeatPicker struct {
	grid     model.SeatingMap
	row, col int
	selected map[[2]int]bool
}

// NewSeatPicker starts on the first available seat. Preselected seats
// that are still available are selected again.
func NewSeatPicker(grid model.SeatingMap, preselected []model.Seat) *SeatPicker {
	p := &SeatPicker{grid: grid, selected: map[[2]int]bool{}}
	for _, s := range preselected {
		if grid.State(s.Row, s.Col) == model.SeatAvailable {
			p.selected[[2]int{s.Row, s.Col}] = true
		}
	}
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < len(grid[r]); c++ {
			if grid[r][c] == model.SeatAvailable {
				p.row, p.col = r, c
				return p
			}
		}
	}
	return p
}

// Cursor returns the zero-based row and column under the cursor.
func (p *SeatPicker) Cursor() (int, int) { return p.row, p.col }

// Move shifts the cursor, stopping at the grid edges.
func (p *SeatPicker) Move(dr, dc int) {
	p.row = clamp(p.row+dr, 0, p.grid.Rows()-1)
	p.col = clamp(p.col+dc, 0, p.grid.Cols()-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}

// Toggle selects or deselects the seat under the cursor. Reserved and
// aisle cells are refused.
func (p *SeatPicker) Toggle() error {
	key := [2]int{p.row, p.col}
	if p.selected[key] {
		delete(p.selected, key)
		return nil
	}
	switch p.grid.State(p.row, p.col) {
	case model.SeatAvailable:
		p.selected[key] = true
		return nil
	case model.SeatReserved:
		return fmt.Errorf("seat %s: %w", model.SeatCode(p.row, p.col), model.ErrSeatAlreadyReserved)
	default:
		return fmt.Errorf("seat %s: %w", model.SeatCode(p.row, p.col), model.ErrSeatNotBookable)
	}
}

// Selected returns the chosen seats in row then column order.
func (p *SeatPicker) Selected() []model.Seat {
	out := make([]model.Seat, 0, len(p.selected))
	for k := range p.selected {
		out = append(out, model.NewSeat(k[0], k[1]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// View draws the grid with the stage at the top.
func (p *SeatPicker) View() string {
	var b strings.Builder
	width := p.grid.Cols()*3 + 3
	b.WriteString(screenBannerStyle.Width(width).Align(lipgloss.Center).Render("STAGE"))
	b.WriteString("\n   ")
	for c := 0; c < p.grid.Cols(); c++ {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-3s", strconv.Itoa(c+1))))
	}
	b.WriteString("\n")
	for r := 0; r < p.grid.Rows(); r++ {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-3s", model.RowLabel(r))))
		for c := 0; c < len(p.grid[r]); c++ {
			cell := p.cell(r, c)
			if r == p.row && c == p.col {
				cell = seatCursorStyle.Render(cell)
			}
			b.WriteString(cell + " ")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(seatFreeStyle.Render("[ ]") + " free  " +
		seatPickedStyle.Render("[*]") + " selected  " +
		seatTakenStyle.Render("[x]") + " taken")
	return b.String()
}

func (p *SeatPicker) cell(r, c int) string {
	if p.selected[[2]int{r, c}] {
		return seatPickedStyle.Render("[*]")
	}
	switch p.grid[r][c] {
	case model.SeatAvailable:
		return seatFreeStyle.Render("[ ]")
	case model.SeatReserved:
		return seatTakenStyle.Render("[x]")
	}
	return "   "
}
