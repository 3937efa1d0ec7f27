package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-fretboard/fretboard"
	"go-fretboard/theme"
	"go-fretboard/tone"
)

// CellWidth is the drawn width of one fret column, separator included.
const CellWidth = 5

// BoardStyles are the lipgloss styles for each cell state.
type BoardStyles struct {
	Label    lipgloss.Style
	Empty    lipgloss.Style
	Emphasis lipgloss.Style
	Tap      lipgloss.Style
	Octave   lipgloss.Style
	Marker   lipgloss.Style
	Number   lipgloss.Style
	Fret     lipgloss.Style

	symbols theme.Symbols
}

// NewBoardStyles derives the board styles from a theme.
func NewBoardStyles(th *theme.Theme) BoardStyles {
	return BoardStyles{
		Label:    lipgloss.NewStyle().Foreground(th.Label()),
		Empty:    lipgloss.NewStyle().Foreground(th.Muted()),
		Emphasis: lipgloss.NewStyle().Background(th.Emphasis()).Foreground(th.BG()).Bold(true),
		Tap:      lipgloss.NewStyle().Foreground(th.Tap()).Bold(true),
		Octave:   lipgloss.NewStyle().Foreground(th.Muted()),
		Marker:   lipgloss.NewStyle().Foreground(th.Marker()),
		Number:   lipgloss.NewStyle().Foreground(th.Muted()),
		Fret:     lipgloss.NewStyle().Foreground(th.Surface()),
		symbols:  th.Symbols,
	}
}

// Grid maps screen cells back to position indices. Columns are fret
// columns of CellWidth characters, rows are strings, highest string first.
type Grid struct {
	Cols [][]int // Cols[c][r] = position index, -1 for none
	Rows int
}

// Hit returns the position index drawn at (x, y), relative to the top-left
// of the board.
func (g Grid) Hit(x, y int) (int, bool) {
	if x < 0 || y < 0 || y >= g.Rows {
		return 0, false
	}
	c := x / CellWidth
	if c >= len(g.Cols) || y >= len(g.Cols[c]) {
		return 0, false
	}
	idx := g.Cols[c][y]
	return idx, idx >= 0
}

// column is one drawn fret: its cells top to bottom.
type column struct {
	points []tone.Point
	marker string
	number string
	nut    bool
}

// RenderBoard draws the nut and the visible fret window of s. Frets run left
// to right, strings top to bottom from the highest. Under each fret sit its
// inlay marker and its number.
func RenderBoard(s fretboard.State, st BoardStyles) (string, Grid) {
	if s.View.Empty() {
		return st.Empty.Render("(no strings)"), Grid{}
	}
	opts := s.Render.Options

	cols := []column{{points: fretboard.Reversed(s.View.Nut()), nut: true}}
	rows, _ := s.View.Window(opts.Range[0], opts.Range[1])
	for i, row := range rows {
		cols = append(cols, column{
			points: fretboard.Reversed(row),
			marker: fretboard.Marker(i, opts),
			number: fretboard.RowLabel(i),
		})
	}

	height := s.View.Keyboard.Strings()
	grid := Grid{Rows: height}
	lines := make([]strings.Builder, height)
	for _, col := range cols {
		idx := make([]int, height)
		sep := st.symbols.String
		if col.nut {
			sep = st.symbols.Nut
		}
		for r := 0; r < height; r++ {
			idx[r] = -1
			text := st.Empty.Render(center(st.symbols.Fret, CellWidth-1))
			if r < len(col.points) {
				p := col.points[r]
				idx[r] = p.Index
				text = renderCell(fretboard.CellFor(p, s.Render), st)
			}
			lines[r].WriteString(text)
			lines[r].WriteString(st.Fret.Render(sep))
		}
		grid.Cols = append(grid.Cols, idx)
	}

	var out strings.Builder
	for r := range lines {
		out.WriteString(lines[r].String())
		out.WriteString("\n")
	}

	var markers, numbers strings.Builder
	for _, col := range cols {
		markers.WriteString(st.Marker.Render(center(col.marker, CellWidth)))
		numbers.WriteString(st.Number.Render(center(col.number, CellWidth)))
	}
	out.WriteString(markers.String())
	out.WriteString("\n")
	out.WriteString(numbers.String())

	return out.String(), grid
}

// renderCell draws one cell CellWidth-1 characters wide. Emphasis and tap
// styles stack.
func renderCell(c fretboard.Cell, st BoardStyles) string {
	if c.Empty {
		style := st.Empty
		if c.Emphasised {
			style = st.Emphasis
		}
		return style.Render(center(st.symbols.Fret, CellWidth-1))
	}

	text := center(c.Label+c.Octave, CellWidth-1)
	style := st.Label
	if c.Tapped {
		style = st.Tap
	}
	if c.Emphasised {
		style = style.Background(st.Emphasis.GetBackground()).Bold(true)
	}
	return style.Render(text)
}

// center pads s to width w, trimming it when it is too long.
func center(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		r = r[:w]
	}
	pad := w - len(r)
	left := pad / 2
	return strings.Repeat(" ", left) + string(r) + strings.Repeat(" ", pad-left)
}
