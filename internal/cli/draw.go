package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplan/pkg/canvas"
	"github.com/matzehuels/floorplan/pkg/capture"
	"github.com/matzehuels/floorplan/pkg/editor"
	"github.com/matzehuels/floorplan/pkg/io"
	"github.com/matzehuels/floorplan/pkg/plan"
)

// drawCommand creates the draw command: free-draw capture of a plan.
func (c *CLI) drawCommand() *cobra.Command {
	var (
		output string
		save   string
	)

	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Sketch a floor plan from scratch, then label the rooms",
		Long: `Sketch a floor plan from scratch, then label the rooms.

Drag on empty canvas to draw room rectangles; rectangles smaller than the
minimum room size are discarded as noise. Existing rectangles can be moved,
resized, and deleted before labeling. Press 'l' to label: every rectangle
must be assigned a catalog room type before the plan can be finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow := capture.NewFreeDraw(cmd.Context())
			return c.runCapture(cmd.Context(), workflow, "free draw", output, save)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plan.json", "layout JSON output file")
	cmd.Flags().StringVar(&save, "save", "", "project ID to persist the layout under")

	return cmd
}

// runCapture hosts a capture workflow in the TUI and writes the finished
// layout. Shared by draw and trace; the workflow carries the backdrop when
// there is one.
func (c *CLI) runCapture(ctx context.Context, workflow *capture.Workflow, title, output, save string) error {
	m := newCaptureModel(workflow, title)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		workflow.CancelDraw()
		return fmt.Errorf("capture: %w", err)
	}

	result, ok := final.(captureModel)
	if !ok || !result.finished {
		printInfo("Capture abandoned, nothing written")
		return nil
	}

	if err := io.ExportJSON(result.layout, output); err != nil {
		return err
	}
	printSuccess("Captured %d room(s)", len(result.layout))
	printFile(output)
	for _, s := range result.selections {
		printDetail("%-14s × %d", s.Type, s.Quantity)
	}

	if save != "" {
		if err := c.saveLayout(ctx, save, result.layout); err != nil {
			return err
		}
		printSuccess("Saved layout to project %s", save)
	}

	printNewline()
	printNextStep("Edit", fmt.Sprintf("%s edit %s", appName, output))
	return nil
}

// =============================================================================
// captureModel - bubbletea host for the draw → label workflow
// =============================================================================

// captureModel drives a capture workflow from terminal input. The draw phase
// maps mouse drags onto draw or adjust gestures; the label phase pairs each
// unlabeled draft with the room-type picker. It quits either finished (layout
// and selections populated) or abandoned.
type captureModel struct {
	workflow *capture.Workflow
	title    string
	surface  surface
	picker   typePickerModel

	// labeling is the draft currently being labeled, or "".
	labeling string
	selected string
	note     string

	finished   bool
	layout     plan.Layout
	selections []plan.RoomSelection
}

const captureChromeRows = 3

func newCaptureModel(workflow *capture.Workflow, title string) captureModel {
	return captureModel{workflow: workflow, title: title, picker: newTypePickerModel()}
}

func (m captureModel) Init() tea.Cmd {
	return nil
}

func (m captureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.surface = surface{cols: msg.Width, rows: max(msg.Height-captureChromeRows, 4)}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.workflow.Phase() == capture.PhaseDraw {
			m.handleMouse(msg)
		}
	}
	return m, nil
}

func (m captureModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.workflow.Phase() == capture.PhaseLabel && msg.String() == "q" {
			break // the picker list owns plain letters during labeling
		}
		m.workflow.CancelDraw()
		return m, tea.Quit
	}

	switch m.workflow.Phase() {
	case capture.PhaseDraw:
		switch msg.String() {
		case "l":
			if err := m.workflow.EnterLabeling(); err != nil {
				m.note = err.Error()
				return m, nil
			}
			m.nextUnlabeled()
		case "d", "delete", "backspace":
			if m.selected != "" {
				m.workflow.DeleteDraft(m.selected)
				m.selected = ""
			}
		case "c":
			m.workflow.ClearDrafts()
			m.selected = ""
		case "esc":
			m.workflow.CancelDraw()
			return m, tea.Quit
		}

	case capture.PhaseLabel:
		switch msg.String() {
		case "esc", "b":
			m.workflow.ReopenDrawing()
			m.labeling = ""
			return m, nil
		case "f":
			layout, selections, err := m.workflow.Finish()
			if err != nil {
				m.note = err.Error()
				return m, nil
			}
			m.finished = true
			m.layout = layout
			m.selections = selections
			return m, tea.Quit
		case "enter":
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			if m.picker.Selected != nil && m.labeling != "" {
				if err := m.workflow.Assign(m.labeling, m.picker.Selected.Type); err != nil {
					m.note = err.Error()
				}
				m.picker.Selected = nil
				m.nextUnlabeled()
			}
			return m, cmd
		default:
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *captureModel) handleMouse(msg tea.MouseMsg) {
	pt := m.surface.toCanvas(msg.X, msg.Y-1) // row 0 is the header

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if id, mode, ok := m.hitDraft(pt); ok {
			m.selected = id
			if err := m.workflow.BeginAdjust(id, mode, pt); err != nil {
				m.note = err.Error()
			}
			return
		}
		m.selected = ""
		if err := m.workflow.BeginDraw(pt); err != nil {
			m.note = err.Error()
		}
	case tea.MouseActionMotion:
		m.workflow.UpdateDraw(pt)
		m.workflow.UpdateAdjust(pt)
	case tea.MouseActionRelease:
		m.workflow.UpdateDraw(pt)
		m.workflow.UpdateAdjust(pt)
		m.workflow.EndDraw()
		m.workflow.EndAdjust()
	}
}

// hitDraft resolves a point to a draft gesture: the selected draft's corner
// handles first, then draft bodies topmost-first.
func (m *captureModel) hitDraft(pt canvas.Point) (string, editor.Mode, bool) {
	drafts := m.workflow.Drafts()

	for _, d := range drafts {
		if d.ID != m.selected {
			continue
		}
		if mode, ok := handleHit(d.Rect, pt); ok {
			return d.ID, mode, true
		}
	}
	for i := len(drafts) - 1; i >= 0; i-- {
		if drafts[i].Contains(int(pt.X), int(pt.Y)) {
			return drafts[i].ID, editor.ModeMove, true
		}
	}
	return "", "", false
}

// handleHit tests a point against a rectangle's corner handles using the
// editor's oversized hit boxes.
func handleHit(r plan.Rect, p canvas.Point) (editor.Mode, bool) {
	corners := []struct {
		x, y int
		mode editor.Mode
	}{
		{r.X, r.Y, editor.ModeResizeNW},
		{r.Right(), r.Y, editor.ModeResizeNE},
		{r.X, r.Bottom(), editor.ModeResizeSW},
		{r.Right(), r.Bottom(), editor.ModeResizeSE},
	}
	for _, c := range corners {
		if p.X >= float64(c.x-editor.HandleHitSize) && p.X <= float64(c.x+editor.HandleHitSize) &&
			p.Y >= float64(c.y-editor.HandleHitSize) && p.Y <= float64(c.y+editor.HandleHitSize) {
			return c.mode, true
		}
	}
	return "", false
}

// nextUnlabeled advances the labeling cursor to the next draft without a
// type, or clears it when labeling is done.
func (m *captureModel) nextUnlabeled() {
	for _, d := range m.workflow.Drafts() {
		if !d.Labeled() {
			m.labeling = d.ID
			m.selected = d.ID
			return
		}
	}
	m.labeling = ""
}

func (m captureModel) View() string {
	drafts := m.workflow.Drafts()

	header := StyleTitle.Render("Capture ") + StyleValue.Render(m.title)
	if b := m.workflow.Backdrop(); b != nil {
		header += listDimStyle.Render(fmt.Sprintf("  tracing %s (%d×%d)", b.MIME, b.Width, b.Height))
	}
	header += listDimStyle.Render(fmt.Sprintf("  %d draft(s)", len(drafts)))

	var body, hints string
	switch m.workflow.Phase() {
	case capture.PhaseDraw:
		var drawing *plan.Rect
		if r, ok := m.workflow.Drawing(); ok {
			drawing = &r
		}
		body = m.surface.renderCanvas(nil, drafts, drawing, m.selected)
		hints = listDimStyle.Render("drag draw · drag rect move/resize · d delete · c clear · l label · q quit")

	case capture.PhaseLabel:
		v := labelView{
			picker:    m.picker,
			drafts:    drafts,
			labeling:  m.labeling,
			remaining: m.workflow.Unlabeled(),
		}
		body = v.String()
		hints = listDimStyle.Render("↑/↓ navigate · ⏎ assign · b back · f finish · ctrl+c quit")
	}

	status := ""
	if m.note != "" {
		status = StyleWarning.Render(m.note)
	}

	return header + "\n" + body + status + "\n" + hints
}

// labelView renders the label phase: the draft queue with assignment state
// and the type picker for the current draft.
type labelView struct {
	picker    typePickerModel
	drafts    []plan.DraftRoom
	labeling  string
	remaining int
}

func (v labelView) String() string {
	out := ""

	for i, d := range v.drafts {
		marker := StyleWarning.Render("?")
		name := fmt.Sprintf("room #%d", i+1)
		if d.Labeled() {
			marker = StyleSuccess.Render(iconSuccess)
			name = string(*d.Type)
		}
		cursor := "  "
		if d.ID == v.labeling {
			cursor = "▸ "
		}
		out += fmt.Sprintf("%s%s %-14s %s\n", cursor, marker, name,
			listDimStyle.Render(fmt.Sprintf("(%d,%d) %d×%d", d.X, d.Y, d.W, d.H)))
	}
	out += "\n"

	if v.remaining > 0 {
		out += StyleWarning.Render(fmt.Sprintf("%d room(s) remaining", v.remaining)) + "\n\n"
		out += v.picker.View()
	} else {
		out += StyleSuccess.Render("all rooms labeled — press f to finish") + "\n"
	}
	return out
}
