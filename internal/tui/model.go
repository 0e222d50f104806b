// Package tui is the interactive terminal front end of the editor. It
// mounts itself as the renderer of a document's tree, shows the tree
// as an indented list of rows and turns keystrokes into node
// operations.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/tree"
)

// Doc is the document being edited.
type Doc interface {
	Path() string
	Tree() *tree.Tree
	Dirty() bool
	Restored() bool
	Save() error
	Reset() error
}

// editState describes the field being edited.
type editState struct {
	active bool
	node   tree.NodeID
	key    string
	part   tree.Part
	// replace means the whole text is selected: the next keystroke
	// replaces it.
	replace bool
}

// Model is the bubbletea model of the editor.
type Model struct {
	doc    Doc
	tree   *tree.Tree
	view   *renderer
	keys   KeyMap
	theme  Theme
	styles styles
	log    *zap.Logger

	help  help.Model
	input textinput.Model

	rows   []row
	cursor int
	offset int
	edit   editState

	width  int
	height int

	status    string
	statusErr bool
	quitting  bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the colour theme.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithKeyMap replaces the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Model) { m.log = log }
}

// New creates the editor for doc and mounts it on the document's tree.
func New(doc Doc, opts ...Option) *Model {
	m := &Model{
		doc:   doc,
		tree:  doc.Tree(),
		view:  newRenderer(),
		keys:  DefaultKeyMap,
		theme: DefaultTheme,
		log:   zap.NewNop(),
		help:  help.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.styles = newStyles(m.theme)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	m.input = ti

	m.tree.Mount(m.view)
	m.refresh()
	if f, ok := m.view.takeFocus(); ok {
		m.moveTo(f)
	}
	if doc.Restored() {
		m.setStatus("restored unsaved changes from a draft (ctrl+r to discard)")
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width/2, 10)
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.edit.active {
			return m, m.updateEditing(msg)
		}
		return m, m.updateBrowsing(msg)
	}
	return m, nil
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) tea.Cmd {
	m.clearStatus()
	r, ok := m.current()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.navigate(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.navigate(m.cursor + 1)
	case key.Matches(msg, m.keys.Collapse):
		if ok && r.kind == rowEntry && !r.entry.IsLeaf() {
			m.view.collapsed[r.entry.Child] = true
			m.refresh()
		}
	case key.Matches(msg, m.keys.Expand):
		if ok && r.kind == rowEntry && !r.entry.IsLeaf() {
			delete(m.view.collapsed, r.entry.Child)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Save):
		m.save()
	case key.Matches(msg, m.keys.Reset):
		m.reset()
	case !ok:
	case key.Matches(msg, m.keys.Edit):
		return m.editRow(r)
	case key.Matches(msg, m.keys.Rename):
		if r.kind == rowEntry && r.entry.Renameable {
			return m.startEditing(r.node, r.entry.Key, tree.PartKey, false)
		}
		m.fail(errors.NewMutationError("only object keys can be renamed", errors.ErrNotSupported))
	case key.Matches(msg, m.keys.Append):
		m.append(r.node)
		return m.followFocus()
	case key.Matches(msg, m.keys.Delete):
		if r.kind != rowEntry || !r.entry.Deletable {
			m.fail(errors.NewMutationError("this entry cannot be deleted", errors.ErrReadOnly))
			return nil
		}
		m.do(func(n *tree.Node) error { return n.Remove(r.entry.Key) }, r.node)
		return m.followFocus()
	case key.Matches(msg, m.keys.Toggle):
		if r.kind == rowEntry && r.entry.IsLeaf() {
			m.do(func(n *tree.Node) error { return n.Toggle(r.entry.Key) }, r.node)
		}
	}
	return nil
}

// editRow handles Edit on a row: leaves edit their value, renameable
// containers their key, the add control appends.
func (m *Model) editRow(r row) tea.Cmd {
	switch {
	case r.kind == rowAdd:
		m.append(r.node)
		return m.followFocus()
	case r.kind != rowEntry:
		return nil
	case r.entry.IsLeaf():
		return m.startEditing(r.node, r.entry.Key, tree.PartValue, false)
	case r.entry.Renameable:
		return m.startEditing(r.node, r.entry.Key, tree.PartKey, false)
	default:
		m.navigate(m.cursor + 1)
		return nil
	}
}

func (m *Model) updateEditing(msg tea.KeyMsg) tea.Cmd {
	m.clearStatus()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return nil
	case key.Matches(msg, m.keys.Commit):
		e := m.edit
		m.stopEditing()
		appended := false
		m.do(func(n *tree.Node) error {
			ok, err := n.Commit(e.key)
			appended = ok
			return err
		}, e.node)
		if appended {
			return m.followFocus()
		}
		return nil
	case key.Matches(msg, m.keys.SwitchPart):
		return m.switchPart()
	case msg.Type == tea.KeyBackspace && m.input.Value() == "":
		e := m.edit
		removed := false
		m.do(func(n *tree.Node) error {
			ok, err := n.Erase(e.key, "")
			removed = ok
			return err
		}, e.node)
		if removed {
			m.stopEditing()
			return m.followFocus()
		}
		return nil
	}

	if m.edit.replace {
		switch msg.Type {
		case tea.KeyBackspace, tea.KeyDelete:
			m.edit.replace = false
			m.input.SetValue("")
			m.applyText("")
			return nil
		case tea.KeyRunes, tea.KeySpace:
			m.edit.replace = false
			m.input.SetValue("")
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != before {
		m.edit.replace = false
		m.applyText(text)
	}
	return cmd
}

// applyText pushes the text of the field being edited into the tree.
func (m *Model) applyText(text string) {
	e := m.edit
	m.do(func(n *tree.Node) error {
		if e.part == tree.PartKey {
			newKey, err := n.Rename(e.key, text)
			if err == nil {
				m.edit.key = newKey
			}
			return err
		}
		return n.EditLeaf(e.key, text)
	}, e.node)
	m.view.takeFocus()
	m.selectRow(tree.Focus{Node: m.edit.node, Key: m.edit.key})
}

func (m *Model) switchPart() tea.Cmd {
	r, ok := m.current()
	if !ok || r.kind != rowEntry {
		return nil
	}
	switch {
	case m.edit.part == tree.PartKey && r.entry.IsLeaf():
		return m.startEditing(r.node, r.entry.Key, tree.PartValue, false)
	case m.edit.part == tree.PartValue && r.entry.Renameable:
		return m.startEditing(r.node, r.entry.Key, tree.PartKey, false)
	}
	return nil
}

func (m *Model) startEditing(node tree.NodeID, key string, part tree.Part, selectAll bool) tea.Cmd {
	m.selectRow(tree.Focus{Node: node, Key: key})
	r, ok := m.current()
	if !ok || r.kind != rowEntry {
		return nil
	}
	text := r.entry.Key
	if part == tree.PartValue {
		text = r.entry.Text
	}
	m.edit = editState{active: true, node: node, key: key, part: part, replace: selectAll}
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.tree.SetFocus(tree.Focus{Node: node, Key: key, Part: part, SelectAll: selectAll})
	m.view.takeFocus()
	return m.input.Focus()
}

func (m *Model) stopEditing() {
	m.edit = editState{}
	m.input.Blur()
}

// followFocus moves the cursor to where the tree put focus after a
// structural edit, and starts editing when the tree selected the text.
func (m *Model) followFocus() tea.Cmd {
	f, ok := m.view.takeFocus()
	if !ok {
		return nil
	}
	m.moveTo(f)
	if f.SelectAll && (f.Part == tree.PartValue || f.Part == tree.PartKey) {
		return m.startEditing(f.Node, f.Key, f.Part, true)
	}
	return nil
}

func (m *Model) moveTo(f tree.Focus) {
	m.view.reveal(m.tree, f.Node)
	m.refresh()
	m.selectRow(f)
}

func (m *Model) append(node tree.NodeID) {
	m.do(func(n *tree.Node) error {
		_, err := n.Append()
		return err
	}, node)
}

// do runs op on the node with the given id and reports its error.
func (m *Model) do(op func(*tree.Node) error, id tree.NodeID) {
	n, err := m.tree.Node(id)
	if err == nil {
		err = op(n)
	}
	if err != nil {
		m.fail(err)
	}
	m.refresh()
}

func (m *Model) save() {
	if err := m.doc.Save(); err != nil {
		m.fail(err)
		return
	}
	m.setStatus("saved " + m.doc.Path())
}

func (m *Model) reset() {
	m.stopEditing()
	if err := m.doc.Reset(); err != nil {
		m.fail(err)
		return
	}
	m.refresh()
	if f, ok := m.view.takeFocus(); ok {
		m.moveTo(f)
	}
	m.setStatus("reloaded " + m.doc.Path())
}

// refresh rebuilds the rows when the tree changed and keeps the cursor
// on the same row where possible.
func (m *Model) refresh() {
	if !m.view.stale && m.rows != nil {
		return
	}
	var keep *tree.Focus
	if r, ok := m.current(); ok {
		f := r.focus()
		keep = &f
	}
	m.rows = m.view.flatten(m.tree)
	m.log.Debug("rows rebuilt", zap.Int("rows", len(m.rows)), zap.Int("mounts", m.view.mounts))
	if keep != nil && m.find(*keep) >= 0 {
		m.cursor = m.find(*keep)
	}
	m.setCursor(m.cursor)
}

func (m *Model) find(f tree.Focus) int {
	for i, r := range m.rows {
		if r.matches(f) {
			return i
		}
	}
	return -1
}

func (m *Model) selectRow(f tree.Focus) {
	m.refresh()
	if i := m.find(f); i >= 0 {
		m.cursor = i
		m.scroll()
	}
}

func (m *Model) setCursor(i int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(i, 0), len(m.rows)-1)
	m.scroll()
}

// navigate moves the cursor on behalf of the user and tells the tree
// where input goes.
func (m *Model) navigate(i int) {
	m.setCursor(i)
	if r, ok := m.current(); ok {
		m.tree.SetFocus(r.focus())
		m.view.takeFocus()
	}
}

func (m *Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) fail(err error) {
	m.log.Debug("edit rejected", zap.Error(err))
	m.status = errors.UserFriendlyError(err)
	m.statusErr = true
}

// bodyHeight is the number of rows that fit between header and footer.
func (m *Model) bodyHeight() int {
	if m.height == 0 {
		return len(m.rows)
	}
	return max(m.height-2-strings.Count(m.helpView(), "\n")-1, 1)
}

func (m *Model) scroll() {
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-h), 0)
}

// Dirty reports whether the document has unsaved edits.
func (m *Model) Dirty() bool { return m.doc.Dirty() }

func (m *Model) helpView() string {
	if m.edit.active {
		return m.help.View(editingKeys{m.keys})
	}
	return m.help.View(m.keys)
}

func (m *Model) title() string {
	t := m.doc.Path()
	if m.doc.Dirty() {
		t += " [modified]"
	}
	return fmt.Sprintf("jsonedit  %s", t)
}
