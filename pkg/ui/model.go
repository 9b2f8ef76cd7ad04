// Package ui implements the terminal browser for a tree: the display
// surface that shows the structure, dispatches edits to the mutator, and
// previews the computed diagram geometry.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/Alhassan777/arbor/pkg/model"
	"github.com/Alhassan777/arbor/pkg/render"
	"github.com/Alhassan777/arbor/pkg/source"
	"github.com/Alhassan777/arbor/pkg/tree"
)

// SceneMsg carries a freshly recomputed scene from the render coordinator
// into the program. Send it via Program.Send from the coordinator sink.
type SceneMsg struct {
	Scene render.Scene
}

// SessionChangedMsg reports that the chat-session export file changed on
// disk. The browser responds by syncing new conversations under the root.
type SessionChangedMsg struct{}

type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeCreate
	modeSearch
	modeLabel
	modeColor
	modeConfirmDelete
	modeHelp
)

var shapeCycle = []model.Shape{model.ShapeRounded, model.ShapeRect, model.ShapePill, model.ShapeDiamond}

// Model is the root bubbletea model for the tree browser.
type Model struct {
	mutator     *tree.Mutator
	coordinator *render.Coordinator
	adapter     source.Adapter // nil disables session sync
	exportBase  string         // snapshot filename stem

	rows   []Row
	cursor int

	mode     mode
	input    textinput.Model
	movingID string // node picked up for reparenting

	helpView viewport.Model

	status string
	errMsg string

	width  int
	height int
}

// NewModel creates the browser. adapter may be nil.
func NewModel(m *tree.Mutator, c *render.Coordinator, adapter source.Adapter, exportBase string) Model {
	input := textinput.New()
	input.CharLimit = 200
	input.Width = 48

	return Model{
		mutator:     m,
		coordinator: c,
		adapter:     adapter,
		exportBase:  exportBase,
		rows:        FlattenTree(m.Tree()),
		input:       input,
		helpView:    viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.helpView.Width = msg.Width - 6
		m.helpView.Height = msg.Height - 4
		m.helpView.SetContent(RenderHelp(m.helpView.Width))
		return m, nil

	case SceneMsg:
		// Geometry is current again; the listing itself is rebuilt at
		// mutation time, so there is nothing further to do.
		return m, nil

	case SessionChangedMsg:
		if m.adapter == nil {
			return m, nil
		}
		convs, err := m.adapter.Conversations()
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		created, err := source.Sync(m.mutator, m.mutator.Tree().RootID, convs)
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if len(created) > 0 {
			m.status = fmt.Sprintf("session sync: %d new conversation(s)", len(created))
			m.refreshRows("")
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeHelp:
			if msg.String() == "?" || msg.String() == "q" || msg.String() == "esc" {
				m.mode = modeBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.errMsg = ""

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = len(m.rows) - 1

	case "?":
		m.mode = modeHelp

	case "c":
		m.input.Placeholder = "new node title"
		return m.openInput(modeCreate, "")

	case "r":
		return m.openInput(modeRename, m.currentRow().Title)

	case "l":
		return m.openInput(modeLabel, m.currentRow().Label)

	case "C":
		m.input.Placeholder = "#RRGGBB (empty resets)"
		return m.openInput(modeColor, "")

	case "/":
		m.input.Placeholder = "search titles"
		return m.openInput(modeSearch, "")

	case "d":
		row := m.currentRow()
		if row.ID == m.mutator.Tree().RootID {
			m.errMsg = "the root cannot be deleted"
			return m, nil
		}
		m.mode = modeConfirmDelete

	case "m":
		row := m.currentRow()
		if m.movingID == "" {
			if row.ID == m.mutator.Tree().RootID {
				m.errMsg = "the root cannot be moved"
				return m, nil
			}
			m.movingID = row.ID
			m.status = "pick a new parent and press Enter (Esc cancels)"
		}

	case "esc":
		if m.movingID != "" {
			m.movingID = ""
			m.status = "move cancelled"
		}

	case "enter":
		if m.movingID != "" {
			if m.mutator.Reparent(m.movingID, m.currentRow().ID) {
				m.status = "moved"
				m.refreshRows(m.movingID)
			} else {
				m.errMsg = "that move is not allowed"
			}
			m.movingID = ""
		}

	case "s":
		row := m.currentRow()
		next := nextShape(m.mutator.Tree().Nodes[row.ID].Shape)
		if err := m.mutator.Reshape(row.ID, next); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = fmt.Sprintf("shape: %s", next)
		}

	case "p":
		row := m.currentRow()
		scene := m.coordinator.Refresh()
		for _, sn := range scene.Nodes {
			if sn.ID != row.ID {
				continue
			}
			pos := model.Point{X: sn.Rect.X, Y: sn.Rect.Y}
			if err := m.mutator.SetManualPosition(row.ID, pos); err != nil {
				m.errMsg = err.Error()
			} else {
				m.status = "position pinned"
				m.refreshRows(row.ID)
			}
			break
		}

	case "P":
		row := m.currentRow()
		if err := m.mutator.ClearManualPosition(row.ID); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = "position unpinned"
			m.refreshRows(row.ID)
		}

	case "y":
		row := m.currentRow()
		if row.URL == "" {
			m.errMsg = "node has no source URL"
		} else if err := clipboard.WriteAll(row.URL); err != nil {
			m.errMsg = fmt.Sprintf("clipboard: %v", err)
		} else {
			m.status = "URL copied"
		}

	case "o":
		return m.syncSession()

	case "e":
		return m.exportSnapshot("svg")
	case "E":
		return m.exportSnapshot("png")
	}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		row := m.currentRow()
		removed, err := m.mutator.Delete(row.ID)
		m.mode = modeBrowse
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("deleted %d node(s)", len(removed))
		m.refreshRows("")
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
		}
	default:
		m.mode = modeBrowse
		m.status = "delete cancelled"
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		return m.commitInput(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Live search: jump to the best hit as the query grows.
	if m.mode == modeSearch {
		if hits := SearchRows(m.rows, m.input.Value()); len(hits) > 0 {
			m.cursor = hits[0]
		}
	}
	return m, cmd
}

func (m Model) commitInput(value string) (tea.Model, tea.Cmd) {
	row := m.currentRow()
	mode := m.mode
	m.mode = modeBrowse

	switch mode {
	case modeCreate:
		if value == "" {
			return m, nil
		}
		node, err := m.mutator.Create(row.ID, value, "")
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.status = "created"
		m.refreshRows(node.ID)

	case modeRename:
		if err := m.mutator.Rename(row.ID, value); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = "renamed"
			m.refreshRows(row.ID)
		}

	case modeLabel:
		if err := m.mutator.SetConnectionLabel(row.ID, value); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = "label set"
			m.refreshRows(row.ID)
		}

	case modeColor:
		if err := m.mutator.Recolor(row.ID, value); err != nil {
			m.errMsg = err.Error()
		} else {
			m.status = "color set"
		}

	case modeSearch:
		hits := SearchRows(m.rows, value)
		if len(hits) == 0 {
			m.errMsg = fmt.Sprintf("no match for %q", value)
		} else {
			m.cursor = hits[0]
			m.status = fmt.Sprintf("%d match(es)", len(hits))
		}
	}
	return m, nil
}

func (m Model) syncSession() (tea.Model, tea.Cmd) {
	if m.adapter == nil {
		m.errMsg = "no session export configured"
		return m, nil
	}
	convs, err := m.adapter.Conversations()
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	created, err := source.Sync(m.mutator, m.currentRow().ID, convs)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	if len(created) == 0 {
		m.status = "already up to date"
	} else {
		m.status = fmt.Sprintf("added %d conversation(s)", len(created))
		m.refreshRows("")
	}
	return m, nil
}

func (m Model) exportSnapshot(format string) (tea.Model, tea.Cmd) {
	path := fmt.Sprintf("%s.%s", m.exportBase, format)
	err := render.SaveSnapshot(render.SnapshotOptions{
		Path:  path,
		Scene: m.coordinator.Refresh(),
	})
	if err != nil {
		m.errMsg = err.Error()
	} else {
		m.status = "wrote " + path
	}
	return m, nil
}

func (m *Model) openInput(target mode, initial string) (tea.Model, tea.Cmd) {
	m.mode = target
	m.input.SetValue(initial)
	m.input.CursorEnd()
	return *m, m.input.Focus()
}

// refreshRows rebuilds the listing and, when focusID is set, moves the
// cursor to that node.
func (m *Model) refreshRows(focusID string) {
	m.rows = FlattenTree(m.mutator.Tree())
	if focusID == "" {
		return
	}
	for i, row := range m.rows {
		if row.ID == focusID {
			m.cursor = i
			return
		}
	}
}

func (m Model) currentRow() Row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}
	}
	return m.rows[m.cursor]
}

func nextShape(s model.Shape) model.Shape {
	for i, shape := range shapeCycle {
		if shape == s {
			return shapeCycle[(i+1)%len(shapeCycle)]
		}
	}
	return shapeCycle[0]
}

// View implements tea.Model.
func (m Model) View() string {
	if m.mode == modeHelp {
		return OverlayStyle.Render(m.helpView.View())
	}

	var b strings.Builder
	b.WriteString(TitleBarStyle.Render("arbor · "+m.mutator.Tree().Name) + "\n\n")

	visible := m.height - 6
	if visible < 1 {
		visible = len(m.rows)
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.rows) && i < start+visible; i++ {
		row := m.rows[i]
		line := BranchStyle.Render(row.Prefix)

		title := row.Title
		if maxW := m.width - runewidth.StringWidth(row.Prefix) - 14; maxW > 8 {
			title = runewidth.Truncate(title, maxW, "…")
		}
		if i == m.cursor {
			line += SelectedRowStyle.Render(title)
		} else {
			line += RowStyle.Render(title)
		}
		if row.Pinned {
			line += PinnedBadgeStyle.Render(" ⚲")
		}
		if row.ID == m.movingID {
			line += " " + RenderMoveBadge()
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeConfirmDelete:
		b.WriteString(PromptStyle.Render(
			fmt.Sprintf("delete %q and its whole subtree? (y/N) ", m.currentRow().Title)))
	case modeRename, modeCreate, modeSearch, modeLabel, modeColor:
		b.WriteString(PromptStyle.Render(inputPrompt(m.mode)) + m.input.View())
	default:
		switch {
		case m.errMsg != "":
			b.WriteString(ErrorStyle.Render(m.errMsg))
		case m.status != "":
			b.WriteString(StatusStyle.Render(m.status))
		default:
			b.WriteString(StatusStyle.Render("? help · q quit"))
		}
	}
	return b.String()
}

func inputPrompt(mo mode) string {
	switch mo {
	case modeCreate:
		return "create: "
	case modeRename:
		return "rename: "
	case modeSearch:
		return "search: "
	case modeLabel:
		return "label: "
	case modeColor:
		return "color: "
	}
	return "> "
}
