package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/catalog"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// surface - terminal projection of the virtual canvas
// =============================================================================

// surface maps between terminal cells and virtual-canvas units. The terminal
// is just another rendering scale: pointer cells go through the stateless
// viewport transform into canvas units, and all geometry stays in canvas
// units. The surface is rebuilt on every window resize.
type surface struct {
	cols, rows int
}

// viewport returns the coordinate transform for the current surface size.
func (s surface) viewport() canvas.Viewport {
	return canvas.Viewport{Width: float64(s.cols), Height: float64(s.rows)}
}

// toCanvas converts a mouse cell position to canvas units. The cell center
// is used so a click on a cell maps inside the region the cell displays.
func (s surface) toCanvas(col, row int) canvas.Point {
	return s.viewport().ToCanvas(float64(col)+0.5, float64(row)+0.5)
}

// cellRect converts a canvas rectangle to the cell region covering it.
func (s surface) cellRect(r plan.Rect) (c0, r0, c1, r1 int) {
	c0 = r.X * s.cols / plan.CanvasWidth
	r0 = r.Y * s.rows / plan.CanvasHeight
	c1 = (r.Right()*s.cols + plan.CanvasWidth - 1) / plan.CanvasWidth
	r1 = (r.Bottom()*s.rows + plan.CanvasHeight - 1) / plan.CanvasHeight
	return c0, r0, max(c1, c0+1), max(r1, r0+1)
}

// cell is one terminal cell of the rendered canvas.
type cell struct {
	ch    rune
	style lipgloss.Style
}

var emptyCellStyle = lipgloss.NewStyle().Foreground(colorDim)

// renderCanvas projects rooms, drafts, and an in-progress draw rectangle
// onto a cell grid and returns it as terminal lines. Later rooms overdraw
// earlier ones, matching their stacking order in the layout.
func (s surface) renderCanvas(rooms plan.Layout, drafts []plan.DraftRoom, drawing *plan.Rect, selectedID string) string {
	if s.cols <= 0 || s.rows <= 0 {
		return ""
	}

	grid := make([][]cell, s.rows)
	for r := range grid {
		grid[r] = make([]cell, s.cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: '·', style: emptyCellStyle}
		}
	}

	for _, room := range rooms {
		s.paintRect(grid, room.Rect, lipgloss.Color(room.Color), room.ID == selectedID, false)
		s.paintLabel(grid, room.Rect, room.Label, lipgloss.Color(room.Color))
	}
	for i, d := range drafts {
		label := fmt.Sprintf("#%d", i+1)
		if d.Labeled() {
			if cfg, ok := catalog.Lookup(*d.Type); ok {
				label = cfg.Label
			}
		}
		s.paintRect(grid, d.Rect, colorBlue, d.ID == selectedID, !d.Labeled())
		s.paintLabel(grid, d.Rect, label, colorBlue)
	}
	if drawing != nil {
		s.paintRect(grid, *drawing, colorCyan, false, true)
	}

	var b strings.Builder
	for r := range grid {
		for c := range grid[r] {
			b.WriteString(grid[r][c].style.Render(string(grid[r][c].ch)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// paintRect fills a rectangle's cells. The border uses box characters;
// dashed rectangles (drafts, live draws) use lighter strokes. Selected
// rectangles get bold corner handles so the grab points are visible.
func (s surface) paintRect(grid [][]cell, r plan.Rect, color lipgloss.Color, selected, dashed bool) {
	c0, r0, c1, r1 := s.cellRect(r)
	c0, r0 = clampCell(c0, 0, s.cols), clampCell(r0, 0, s.rows)
	c1, r1 = clampCell(c1, 0, s.cols), clampCell(r1, 0, s.rows)

	fill := lipgloss.NewStyle().Foreground(color)
	border := fill
	if selected {
		border = border.Bold(true)
	}

	horiz, vert := '─', '│'
	if dashed {
		horiz, vert = '┄', '┆'
	}

	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			ch := ' '
			st := fill
			switch {
			case row == r0 && col == c0, row == r1-1 && col == c1-1,
				row == r0 && col == c1-1, row == r1-1 && col == c0:
				ch = cornerChar(row == r0, col == c0)
				st = border
				if selected {
					ch = '◆'
				}
			case row == r0 || row == r1-1:
				ch = horiz
				st = border
			case col == c0 || col == c1-1:
				ch = vert
				st = border
			}
			grid[row][col] = cell{ch: ch, style: st}
		}
	}
}

func cornerChar(top, left bool) rune {
	switch {
	case top && left:
		return '┌'
	case top && !left:
		return '┐'
	case !top && left:
		return '└'
	default:
		return '┘'
	}
}

// paintLabel writes the room label centered in the rectangle's interior,
// truncated to fit.
func (s surface) paintLabel(grid [][]cell, r plan.Rect, label string, color lipgloss.Color) {
	c0, r0, c1, r1 := s.cellRect(r)
	c0, r0 = clampCell(c0, 0, s.cols), clampCell(r0, 0, s.rows)
	c1, r1 = clampCell(c1, 0, s.cols), clampCell(r1, 0, s.rows)

	width := c1 - c0 - 2
	if width < 1 || r1-r0 < 3 {
		return
	}
	text := []rune(label)
	if len(text) > width {
		text = text[:width]
	}

	row := (r0 + r1) / 2
	col := (c0 + c1 - len(text)) / 2
	st := lipgloss.NewStyle().Foreground(color).Bold(true)
	for i, ch := range text {
		grid[row][col+i] = cell{ch: ch, style: st}
	}
}

func clampCell(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// =============================================================================
// typePickerModel - room-type selection during the label phase
// =============================================================================

// typePickerModel is the bubbletea model for choosing a catalog room type.
// It is embedded in the capture TUI for the label phase.
type typePickerModel struct {
	Types    []catalog.Config
	Cursor   int
	Selected *catalog.Config
}

// newTypePickerModel creates a picker over the full catalog in display order.
func newTypePickerModel() typePickerModel {
	return typePickerModel{Types: catalog.All()}
}

func (m typePickerModel) Init() tea.Cmd {
	return nil
}

func (m typePickerModel) Update(msg tea.Msg) (typePickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Types)-1 {
				m.Cursor++
			}
		case "enter":
			cfg := m.Types[m.Cursor]
			m.Selected = &cfg
		}
	}
	return m, nil
}

func (m typePickerModel) View() string {
	var b strings.Builder

	for i, cfg := range m.Types {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s %-14s %s", cursor, cfg.Icon, cfg.Label,
			listDimStyle.Render(fmt.Sprintf("%.0f m²", cfg.DefaultAreaM2)))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}
