package tui

import (
	"strconv"
	"strings"

	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/tree"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.header.Render(m.title()))
	b.WriteByte('\n')

	end := min(m.offset+m.bodyHeight(), len(m.rows))
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i], i == m.cursor)
		if i == m.cursor && !m.edit.active {
			line = m.styles.selected.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(m.statusView())
	b.WriteByte('\n')
	b.WriteString(m.helpView())
	return b.String()
}

func (m *Model) renderRow(r row, current bool) string {
	indent := strings.Repeat("  ", r.depth)
	switch r.kind {
	case rowAdd:
		return indent + m.styles.literal.Render("+ add")
	case rowDescription:
		return indent + m.styles.card.Render(r.text)
	case rowHint:
		return indent + m.styles.card.Render("• "+r.name+" = "+r.text)
	}

	e := r.entry
	editing := current && m.edit.active

	var keyText string
	switch {
	case r.region == tree.RegionScalar:
	case editing && m.edit.part == tree.PartKey:
		keyText = m.input.View() + ": "
	default:
		keyText = m.styles.key.Render(e.Key) + ": "
	}

	if !e.IsLeaf() {
		return indent + marker(m.view.collapsed[e.Child]) + " " + keyText + m.summary(e)
	}
	if editing && m.edit.part == tree.PartValue {
		return indent + "  " + keyText + m.input.View()
	}
	return indent + "  " + keyText + m.leafText(e)
}

func marker(collapsed bool) string {
	if collapsed {
		return "▸"
	}
	return "▾"
}

// summary describes a container entry: braces and its size.
func (m *Model) summary(e tree.Entry) string {
	n, err := m.tree.Node(e.Child)
	if err != nil {
		return ""
	}
	r := n.Region()
	size := len(r.Entries)
	switch r.Kind {
	case tree.RegionArray:
		return m.styles.muted.Render("[" + strconv.Itoa(size) + "]")
	case tree.RegionCard:
		return m.styles.muted.Render("(command)")
	default:
		return m.styles.muted.Render("{" + strconv.Itoa(size) + "}")
	}
}

func (m *Model) leafText(e tree.Entry) string {
	switch e.Kind {
	case models.KindString:
		if e.Text == "" {
			return m.styles.muted.Render(`""`)
		}
		return m.styles.value.Render(e.Text)
	default:
		return m.styles.literal.Render(e.Text)
	}
}

func (m *Model) statusView() string {
	if m.status == "" {
		return m.styles.muted.Render(m.pathOf())
	}
	if m.statusErr {
		return m.styles.err.Render(m.status)
	}
	return m.styles.muted.Render(m.status)
}

// pathOf returns the slash separated path of the cursor row.
func (m *Model) pathOf() string {
	r, ok := m.current()
	if !ok {
		return ""
	}
	n, err := m.tree.Node(r.node)
	if err != nil {
		return ""
	}
	path := n.Path()
	if r.kind == rowEntry && r.region != tree.RegionScalar {
		path = append(path, r.entry.Key)
	}
	return "/" + strings.Join(path, "/")
}
