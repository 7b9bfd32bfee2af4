package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/editor"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/io"
	"github.com/matzehuels/floorplan/pkg/notify"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// editCommand creates the edit command: an interactive move/resize session
// over an existing layout.
func (c *CLI) editCommand() *cobra.Command {
	var (
		project string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "edit [layout.json]",
		Short: "Move and resize rooms interactively",
		Long: `Move and resize rooms interactively.

Drag a room's body to move it; drag a corner handle of the selected room to
resize it. All geometry snaps to the grid and stays inside the canvas on
every frame. Changes are debounced and written back to the source (file or
project record) after each quiet period, and flushed once more on exit, so
the final state is never lost.

The layout comes from a JSON file argument or from a stored project
(--project).`,
		Example: `  floorplan edit plan.json
  floorplan edit --project project-42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == (project == "") {
				return errors.New(errors.ErrCodeInvalidInput, "pass a layout file or --project, not both")
			}
			return c.runEdit(cmd.Context(), input, project, output)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "edit the layout stored under this project ID")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result here instead of back to the source")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, input, project, output string) error {
	logger := loggerFromContext(ctx)

	var layout plan.Layout
	var persist func(plan.Layout)

	switch {
	case input != "":
		var err error
		if layout, err = io.ImportJSON(input); err != nil {
			return err
		}
		target := output
		if target == "" {
			target = input
		}
		persist = func(l plan.Layout) {
			if err := io.ExportJSON(l, target); err != nil {
				logger.Error("write layout", "path", target, "err", err)
			}
		}
	default:
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close(ctx)
		if layout, err = st.Load(ctx, project); err != nil {
			return err
		}
		persist = func(l plan.Layout) {
			if err := st.Save(ctx, project, l); err != nil {
				logger.Error("save layout", "project", project, "err", err)
			}
		}
	}

	notifier := notify.New(ctx, c.Config.Debounce(), persist)
	defer notifier.Close()

	session := editor.NewSession(ctx, layout, notifier.Changed)

	m := newEditModel(session, sourceName(input, project))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		session.Abandon()
		return fmt.Errorf("editor: %w", err)
	}

	// Flush the debounce window so the final geometry lands before exit.
	notifier.Flush()
	printSuccess("Edited %d room(s)", len(session.Layout()))
	return nil
}

func sourceName(input, project string) string {
	if input != "" {
		return input
	}
	return "project " + project
}

// =============================================================================
// editModel - bubbletea host for an editor session
// =============================================================================

// editModel routes terminal mouse events into an editor session. Mouse
// capture is program-wide (the bubbletea equivalent of document-scoped
// listeners), so a drag keeps updating even after the pointer leaves the
// room it started on.
type editModel struct {
	session *editor.Session
	source  string
	surface surface
	width   int
	height  int
}

// header + hint line + status line.
const editChromeRows = 3

func newEditModel(session *editor.Session, source string) editModel {
	return editModel{session: session, source: source}
}

func (m editModel) Init() tea.Cmd {
	return nil
}

func (m editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.surface = surface{cols: msg.Width, rows: max(msg.Height-editChromeRows, 4)}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.session.Abandon()
			return m, tea.Quit
		case "tab":
			m.selectNext()
		case "d", "delete", "backspace":
			if id := m.session.Selected(); id != "" {
				m.session.Delete(id)
			}
		case "up", "down", "left", "right":
			m.nudge(msg.String())
		}

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *editModel) handleMouse(msg tea.MouseMsg) {
	pt := m.surface.toCanvas(msg.X, msg.Y-1) // row 0 is the header

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.session.Begin(pt)
		}
	case tea.MouseActionMotion:
		m.session.Update(pt)
	case tea.MouseActionRelease:
		m.session.Update(pt)
		m.session.End()
	}
}

// selectNext cycles the selection through the layout in order.
func (m *editModel) selectNext() {
	layout := m.session.Layout()
	if len(layout) == 0 {
		return
	}
	next := 0
	if i := layout.Index(m.session.Selected()); i >= 0 {
		next = (i + 1) % len(layout)
	}
	m.session.Select(layout[next].ID)
}

// nudge moves the selected room by one grid step via a synthetic gesture,
// so it gets the same snapping and clamping as a mouse drag.
func (m *editModel) nudge(key string) {
	id := m.session.Selected()
	if id == "" {
		return
	}
	var dx, dy float64
	switch key {
	case "up":
		dy = -plan.Grid
	case "down":
		dy = plan.Grid
	case "left":
		dx = -plan.Grid
	case "right":
		dx = plan.Grid
	}
	origin := canvas.Point{}
	if !m.session.BeginGesture(id, editor.ModeMove, origin) {
		return
	}
	m.session.Update(canvas.Point{X: dx, Y: dy})
	m.session.End()
}

func (m editModel) View() string {
	layout := m.session.Layout()

	header := StyleTitle.Render("Edit ") + StyleValue.Render(m.source) +
		listDimStyle.Render(fmt.Sprintf("  %d rooms", len(layout)))

	body := m.surface.renderCanvas(layout, nil, nil, m.session.Selected())

	status := listDimStyle.Render("nothing selected")
	if i := layout.Index(m.session.Selected()); i >= 0 {
		room := layout[i]
		status = StyleHighlight.Render(room.Label) +
			listDimStyle.Render(fmt.Sprintf("  (%d,%d) %d×%d", room.X, room.Y, room.W, room.H))
	}
	hints := listDimStyle.Render("drag move · drag ◆ resize · tab select · arrows nudge · d delete · q quit")

	return header + "\n" + body + status + "\n" + hints
}
