package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-booking/internal/model"
)

func gridWithTaken(codes ...string) model.SeatingMap {
	g := model.DefaultSeatingMap()
	for _, c := range codes {
		s, _ := model.ParseSeatCode(c)
		g[s.Row][s.Col] = model.SeatReserved
	}
	return g
}

func TestSeatPickerStartsOnFirstFreeSeat(t *testing.T) {
	p := NewSeatPicker(gridWithTaken("A1", "A2"), nil)
	r, c := p.Cursor()
	assert.Equal(t, 0, r)
	assert.Equal(t, 2, c)
}

func TestSeatPickerRefusesTakenAndAisle(t *testing.T) {
	p := NewSeatPicker(gridWithTaken("A4"), nil)

	p.Move(0, 3) // A4
	err := p.Toggle()
	assert.ErrorIs(t, err, model.ErrSeatAlreadyReserved)

	p.Move(0, 1) // A5, aisle
	err = p.Toggle()
	assert.ErrorIs(t, err, model.ErrSeatNotBookable)
	assert.Contains(t, err.Error(), "A5")
	assert.Empty(t, p.Selected())
}

func TestSeatPickerSelection(t *testing.T) {
	p := NewSeatPicker(model.DefaultSeatingMap(), nil)

	p.Move(1, 1) // B2
	require.NoError(t, p.Toggle())
	p.Move(-1, 0) // A2
	require.NoError(t, p.Toggle())
	p.Move(0, -1) // A1
	require.NoError(t, p.Toggle())
	require.NoError(t, p.Toggle())

	assert.Equal(t, []string{"A2", "B2"}, model.SeatCodes(p.Selected()))
}

func TestSeatPickerClampsCursor(t *testing.T) {
	p := NewSeatPicker(model.DefaultSeatingMap(), nil)
	p.Move(-5, -5)
	r, c := p.Cursor()
	assert.Equal(t, [2]int{0, 0}, [2]int{r, c})
	p.Move(50, 50)
	r, c = p.Cursor()
	assert.Equal(t, [2]int{model.DefaultRows - 1, model.DefaultCols - 1}, [2]int{r, c})
}

func TestSeatPickerPreselection(t *testing.T) {
	grid := gridWithTaken("C3")
	p := NewSeatPicker(grid, []model.Seat{model.NewSeat(2, 2), model.NewSeat(2, 3)})
	assert.Equal(t, []string{"C4"}, model.SeatCodes(p.Selected()), "seats taken since are dropped")
}

func TestSeatPickerView(t *testing.T) {
	p := NewSeatPicker(gridWithTaken("B1"), nil)
	v := p.View()
	assert.Contains(t, v, "STAGE")
	assert.Contains(t, v, "[x]")
	assert.Contains(t, v, "H")
}
