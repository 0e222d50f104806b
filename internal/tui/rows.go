package tui

import (
	"github.com/mcncl/jsonedit/internal/tree"
)

type rowKind uint8

const (
	rowEntry rowKind = iota
	rowAdd
	rowDescription
	rowHint
)

// row is one line of the flattened tree.
type row struct {
	kind   rowKind
	node   tree.NodeID
	region tree.RegionKind
	depth  int
	// entry is set for rowEntry.
	entry tree.Entry
	// name and text are set for card lines.
	name string
	text string
}

func (r row) matches(f tree.Focus) bool {
	if r.node != f.Node {
		return false
	}
	if f.Part == tree.PartAdd {
		return r.kind == rowAdd
	}
	return r.kind == rowEntry && r.entry.Key == f.Key
}

// focus returns the tree focus for the row without selection.
func (r row) focus() tree.Focus {
	switch r.kind {
	case rowEntry:
		f := tree.Focus{Node: r.node, Key: r.entry.Key}
		switch {
		case r.entry.IsLeaf():
			f.Part = tree.PartValue
		case r.entry.Renameable:
			f.Part = tree.PartKey
		default:
			f.Part = tree.PartRow
		}
		return f
	case rowAdd:
		return tree.Focus{Node: r.node, Part: tree.PartAdd}
	default:
		return tree.Focus{Node: r.node, Part: tree.PartRow}
	}
}

// renderer receives region changes from the tree. The model re-reads
// regions on every frame, so the renderer only records what happened:
// whether rows need rebuilding and where the tree moved focus.
type renderer struct {
	stale     bool
	focus     tree.Focus
	moved     bool
	collapsed map[tree.NodeID]bool
	// mounts counts Mount calls, for the debug log.
	mounts int
}

func newRenderer() *renderer {
	return &renderer{collapsed: make(map[tree.NodeID]bool), focus: tree.Focus{Node: tree.NoNode}}
}

func (r *renderer) Mount(*tree.Node) {
	r.stale = true
	r.mounts++
}

func (r *renderer) Patch(*tree.Node, int) { r.stale = true }

func (r *renderer) Unmount(id tree.NodeID) {
	r.stale = true
	delete(r.collapsed, id)
}

func (r *renderer) Focus(f tree.Focus) {
	r.focus = f
	r.moved = true
}

// takeFocus returns the focus set by the tree since the last call.
func (r *renderer) takeFocus() (tree.Focus, bool) {
	if !r.moved {
		return tree.Focus{}, false
	}
	r.moved = false
	return r.focus, true
}

// flatten lays the tree out as rows, depth first, skipping collapsed
// containers.
func (r *renderer) flatten(t *tree.Tree) []row {
	root := t.Root()
	if root == nil {
		return nil
	}
	var rows []row
	r.appendNode(t, root, 0, &rows)
	r.stale = false
	return rows
}

func (r *renderer) appendNode(t *tree.Tree, n *tree.Node, depth int, rows *[]row) {
	region := n.Region()
	for _, e := range region.Entries {
		*rows = append(*rows, row{kind: rowEntry, node: n.ID(), region: region.Kind, depth: depth, entry: e})
		if e.IsLeaf() || r.collapsed[e.Child] {
			continue
		}
		if child, err := t.Node(e.Child); err == nil {
			r.appendNode(t, child, depth+1, rows)
		}
	}
	if card := region.Card; card != nil {
		*rows = append(*rows, row{kind: rowDescription, node: n.ID(), region: region.Kind, depth: depth, text: card.Description})
		for _, h := range card.Hints {
			*rows = append(*rows, row{kind: rowHint, node: n.ID(), region: region.Kind, depth: depth, name: h.Name, text: h.Text})
		}
	}
	if region.CanAdd {
		*rows = append(*rows, row{kind: rowAdd, node: n.ID(), region: region.Kind, depth: depth})
	}
}

// reveal expands every container on the way from the root to id.
func (r *renderer) reveal(t *tree.Tree, id tree.NodeID) {
	for id != tree.NoNode {
		delete(r.collapsed, id)
		n, err := t.Node(id)
		if err != nil {
			return
		}
		id = n.Parent()
	}
}
