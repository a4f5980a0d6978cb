// Package tui is a terminal front end for a single local roster. Keyboard
// picking and dropping stands in for mouse drag and drop.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/DoyleJ11/team-builder/internal/engine"
	"github.com/DoyleJ11/team-builder/internal/export"
)

const statusTTL = 2 * time.Second

type Options struct {
	// State is the starting roster; a state without lanes means the default
	// layout.
	State     engine.State
	Rand      engine.Rand
	Logger    *zap.Logger
	ExportDir string
	// Clipboard receives the text summary on export.
	Clipboard func(string) error
	Now       func() time.Time
}

type exportDoneMsg struct {
	Path    string
	Err     error
	ClipErr error
}

type clearStatusMsg struct{ seq int }

type Model struct {
	state  engine.State
	rand   engine.Rand
	log    *zap.Logger
	styles Styles

	input  textinput.Model
	typing bool

	// Rows 0..len(TierOrder)-1 are the pool, the rest are lanes.
	row, col int
	held     *engine.DragPayload

	status    string
	statusErr bool
	statusSeq int

	exportDir string
	clipboard func(string) error
	now       func() time.Time

	width, height int
}

func New(opts Options) Model {
	state := opts.State
	if len(state.Lanes) == 0 {
		state = engine.NewEmptyState()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = export.CopyToClipboard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	dir := opts.ExportDir
	if dir == "" {
		dir = "."
	}

	ti := textinput.New()
	ti.Placeholder = "names separated by spaces"
	ti.Prompt = "add > "
	ti.CharLimit = 512
	ti.Focus()

	return Model{
		state:     state,
		rand:      opts.Rand,
		log:       log,
		styles:    NewStyles(state.Theme),
		input:     ti,
		typing:    true,
		exportDir: dir,
		clipboard: clip,
		now:       now,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) State() engine.State { return m.state }

func (m Model) Status() string { return m.status }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case exportDoneMsg:
		switch {
		case msg.Err != nil:
			m.log.Warn("export failed", zap.Error(msg.Err))
			cmd := m.flash("export failed: "+msg.Err.Error(), true)
			return m, cmd
		case msg.ClipErr != nil:
			m.log.Debug("clipboard unavailable", zap.Error(msg.ClipErr))
			cmd := m.flash("saved "+msg.Path+" (clipboard unavailable)", false)
			return m, cmd
		default:
			cmd := m.flash("saved "+msg.Path+", summary copied", false)
			return m, cmd
		}

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status, m.statusErr = "", false
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.typing {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.input.Value()
		m.input.SetValue("")
		cmd := m.apply(engine.Command{Type: engine.CmdSubmitNames, Text: text})
		return m, cmd
	case "tab", "esc":
		m.typing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab", "i":
		m.typing = true
		cmd := m.input.Focus()
		return m, cmd

	case "up", "k":
		return m.move(-1, 0)
	case "down", "j":
		return m.move(1, 0)
	case "left", "h":
		return m.move(0, -1)
	case "right", "l":
		return m.move(0, 1)

	case " ", "space":
		return m.pickOrDrop()
	case "esc":
		if m.held != nil {
			m.held = nil
			cmd := m.apply(engine.Command{Type: engine.CmdDragLeave})
			return m, cmd
		}
		cmd := m.apply(engine.Command{Type: engine.CmdCloseContextMenu})
		return m, cmd

	case "s":
		if lane, ok := m.focusedLane(); ok {
			cmd := m.apply(engine.Command{Type: engine.CmdSwapSlots, Position: lane.Position})
			return m, cmd
		}
	case ",", ".":
		if lane, ok := m.focusedLane(); ok {
			dir := engine.DirBackward
			if msg.String() == "." {
				dir = engine.DirForward
			}
			cmd := m.apply(engine.Command{Type: engine.CmdCycleOperator, Position: lane.Position, Direction: dir})
			return m, cmd
		}

	case "1", "2", "3", "0":
		tier := map[string]engine.Tier{"1": engine.TierHigh, "2": engine.TierMid, "3": engine.TierLow, "0": engine.TierUnset}[msg.String()]
		if name := m.targetName(); name != "" {
			cmd := m.apply(engine.Command{Type: engine.CmdSetTier, Name: name, Tier: tier})
			return m, cmd
		}
	case "d":
		if name := m.targetName(); name != "" {
			cmd := m.apply(engine.Command{Type: engine.CmdDeletePlayer, Name: name})
			return m, cmd
		}
	case "m":
		if m.state.ContextMenu.Visible {
			cmd := m.apply(engine.Command{Type: engine.CmdCloseContextMenu})
			return m, cmd
		}
		if name := m.focusedName(); name != "" {
			cmd := m.apply(engine.Command{Type: engine.CmdOpenContextMenu, Name: name, X: m.col, Y: m.row})
			return m, cmd
		}

	case "r":
		cmd := m.apply(engine.Command{Type: engine.CmdRandomizeSides})
		return m, cmd
	case "a":
		cmd := m.apply(engine.Command{Type: engine.CmdRandomAssign})
		return m, cmd
	case "R":
		cmd := m.apply(engine.Command{Type: engine.CmdResetLanes})
		return m, cmd
	case "t":
		cmd := m.apply(engine.Command{Type: engine.CmdToggleTheme})
		return m, cmd
	case "x":
		return m, m.exportCmd()
	}
	return m, nil
}

func (m Model) move(dr, dc int) (tea.Model, tea.Cmd) {
	m.row += dr
	m.col += dc
	m.clamp()
	if m.held != nil {
		cmd := m.apply(engine.Command{Type: engine.CmdDragOver, Target: m.focusedTarget()})
		return m, cmd
	}
	return m, nil
}

func (m Model) pickOrDrop() (tea.Model, tea.Cmd) {
	if m.held == nil {
		name := m.focusedName()
		if name == "" {
			cmd := m.flash("nothing to pick up", true)
			return m, cmd
		}
		var p engine.DragPayload
		if lane, ok := m.focusedLane(); ok {
			p = engine.SlotPayload(name, lane.Position, m.focusedSlot())
		} else {
			p = engine.PoolPayload(name)
		}
		m.held = &p
		cmd := m.apply(engine.Command{Type: engine.CmdDragOver, Target: m.focusedTarget()})
		return m, cmd
	}

	p := *m.held
	m.held = nil
	cmd := m.apply(engine.Command{Type: engine.CmdDrop, Payload: p, Target: m.focusedTarget()})
	return m, cmd
}

// apply runs cmd through the engine and keeps the cursor in range.
func (m *Model) apply(cmd engine.Command) tea.Cmd {
	var events []engine.Event
	var next engine.State
	var err error
	if m.rand != nil {
		events, next, err = engine.ApplyWith(m.state, cmd, m.rand)
	} else {
		events, next, err = engine.Apply(m.state, cmd)
	}
	if err != nil {
		m.log.Debug("command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
		return m.flash(err.Error(), true)
	}

	themeChanged := next.Theme != m.state.Theme
	m.state = next
	if themeChanged {
		m.styles = NewStyles(m.state.Theme)
	}
	m.clamp()

	if engine.ContainsEvent(events, engine.EvtRandomAssignSkipped) {
		return m.flash("nothing to assign", false)
	}
	return nil
}

func (m *Model) flash(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status, m.statusErr = text, isErr
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m Model) exportCmd() tea.Cmd {
	state := m.state
	path := filepath.Join(m.exportDir, "roster-"+m.now().Format("20060102-150405")+".png")
	clip := m.clipboard
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{Err: err}
		}
		err = export.RenderPNG(f, state)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Path: path, ClipErr: clip(export.Summary(state))}
	}
}

// Cursor helpers.

func (m Model) rows() int { return len(engine.TierOrder) + len(m.state.Lanes) }

func (m *Model) clamp() {
	m.row = min(max(m.row, 0), m.rows()-1)
	last := 1
	if m.row < len(engine.TierOrder) {
		last = max(len(engine.TierBuckets(m.state)[engine.TierOrder[m.row]])-1, 0)
	}
	m.col = min(max(m.col, 0), last)
}

func (m Model) focusedLane() (engine.Lane, bool) {
	i := m.row - len(engine.TierOrder)
	if i < 0 || i >= len(m.state.Lanes) {
		return engine.Lane{}, false
	}
	return m.state.Lanes[i], true
}

func (m Model) focusedSlot() engine.Slot {
	if m.col == 0 {
		return engine.SlotA
	}
	return engine.SlotB
}

func (m Model) focusedTarget() engine.DropTarget {
	if lane, ok := m.focusedLane(); ok {
		return engine.SlotTarget(lane.Position, m.focusedSlot())
	}
	return engine.PoolTarget(engine.TierOrder[m.row])
}

func (m Model) focusedName() string {
	if lane, ok := m.focusedLane(); ok {
		if m.focusedSlot() == engine.SlotA {
			return lane.SlotA
		}
		return lane.SlotB
	}
	bucket := engine.TierBuckets(m.state)[engine.TierOrder[m.row]]
	if m.col < len(bucket) {
		return bucket[m.col].Name
	}
	return ""
}

// targetName is the context menu's player when the menu is open, otherwise
// the focused one.
func (m Model) targetName() string {
	if m.state.ContextMenu.Visible {
		return m.state.ContextMenu.TargetName
	}
	return m.focusedName()
}

// Rendering.

func (m Model) View() string {
	st := m.styles
	var b strings.Builder

	b.WriteString(st.Title.Render("Team Builder"))
	b.WriteString(st.Muted.Render("  theme: " + string(m.state.Theme)))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	buckets := engine.TierBuckets(m.state)
	for r, tier := range engine.TierOrder {
		label := st.Label
		if m.isOver(engine.PoolTarget(tier)) {
			label = label.Foreground(st.Over.GetForeground())
		}
		cells := []string{m.cursorMark(r) + label.Render(strings.ToUpper(string(tier)))}
		for c, p := range buckets[tier] {
			cells = append(cells, m.chip(p.Name, r, c))
		}
		if len(buckets[tier]) == 0 {
			cells = append(cells, m.empty(r, 0, engine.PoolTarget(tier)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, lane := range m.state.Lanes {
		r := len(engine.TierOrder) + i
		cells := []string{
			m.cursorMark(r) + st.Label.Render(lane.Position),
			m.slotCell(lane.SlotA, r, 0, engine.SlotTarget(lane.Position, engine.SlotA)),
			st.Op.Render(string(lane.Operator)),
			m.slotCell(lane.SlotB, r, 1, engine.SlotTarget(lane.Position, engine.SlotB)),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	if menu := m.state.ContextMenu; menu.Visible {
		b.WriteString("\n")
		b.WriteString(st.Menu.Render(menu.TargetName + "  1 high  2 mid  3 low  0 clear  d delete  m close"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.held != nil {
		b.WriteString(st.Carried.Render("carrying " + m.held.Name + "  (space to drop, esc to cancel)"))
		b.WriteString("\n")
	}
	if m.status != "" {
		style := st.Status
		if m.statusErr {
			style = st.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(st.Muted.Render(m.help()))

	return st.App.Render(b.String())
}

func (m Model) help() string {
	if m.typing {
		return "enter add names • tab board • ctrl+c quit"
	}
	return "arrows move • space pick/drop • s swap • ,/. operator • 1/2/3/0 tier • d delete • m menu\n" +
		"r randomize sides • a assign one • R reset • t theme • x export • tab names • q quit"
}

func (m Model) cursorMark(row int) string {
	if !m.typing && row == m.row {
		return "> "
	}
	return "  "
}

func (m Model) chip(name string, row, col int) string {
	p, _ := engine.FindPlayer(m.state, name)
	style := m.styles.Chip[engine.BucketTier(p.Tier)]
	if !m.typing && row == m.row && col == m.col {
		style = style.Inherit(m.styles.Focus)
	}
	return style.Render(name) + " "
}

func (m Model) slotCell(name string, row, col int, t engine.DropTarget) string {
	if name == "" {
		return m.empty(row, col, t)
	}
	cell := m.chip(name, row, col)
	if m.isOver(t) {
		cell = m.styles.Over.Render("[") + cell + m.styles.Over.Render("]")
	}
	return cell
}

func (m Model) empty(row, col int, t engine.DropTarget) string {
	style := m.styles.Empty
	if m.isOver(t) {
		style = style.Foreground(m.styles.Over.GetForeground()).Bold(true)
	}
	if !m.typing && row == m.row && col == m.col {
		style = style.Inherit(m.styles.Focus)
	}
	return style.Render(fmt.Sprintf("%-6s", "-"))
}

func (m Model) isOver(t engine.DropTarget) bool {
	return m.state.DragOver != nil && *m.state.DragOver == t
}
