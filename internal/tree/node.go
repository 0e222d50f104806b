package tree

import (
	"fmt"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/models"
)

// Node binds one container (or a bare leaf document) to its region.
type Node struct {
	tree *Tree
	id   NodeID
	// parent is only used to find the ancestor chain; a node never
	// mutates its parent directly.
	parent NodeID
	// key is the entry of the parent this node renders.
	key       string
	value     models.Value
	region    Region
	listeners []func(Event)
}

// ID returns the node's id.
func (n *Node) ID() NodeID { return n.id }

// Parent returns the id of the node that rendered this one, or NoNode.
func (n *Node) Parent() NodeID { return n.parent }

// Key returns the key this node occupies in its parent.
func (n *Node) Key() string { return n.key }

// Region returns a copy of the node's current rendering.
func (n *Node) Region() Region { return n.region.clone() }

// Path returns the keys leading from the root to this node.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil && cur.parent != NoNode; cur = n.tree.get(cur.parent) {
		path = append(path, cur.key)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Alive reports whether the node is still part of its tree.
func (n *Node) Alive() bool { return n.tree.get(n.id) == n }

// JSON returns a copy of the node's value.
func (n *Node) JSON() models.Value { return n.value.Clone() }

// SetJSON binds v to this node, discarding the previous region and all
// child nodes, and rebuilds. Ancestors are resynced through a change
// event.
func (n *Node) SetJSON(v models.Value) error {
	if err := n.live(); err != nil {
		return err
	}
	if n.parent != NoNode && infer.IsLeaf(v) {
		return errors.NewMutationError("a nested node must hold an object or array", errors.ErrNotContainer)
	}
	n.value = v.Clone()
	n.render()
	n.tree.focusFirst(n)
	return n.commit(Event{Op: OpSet})
}

// OnChange registers fn to run whenever a change event passes through
// this node, including events that start here. Listeners are dropped
// when the node is destroyed.
func (n *Node) OnChange(fn func(Event)) {
	n.listeners = append(n.listeners, fn)
}

func (n *Node) live() error {
	if !n.Alive() {
		return errors.NewContractError(fmt.Sprintf("node %d", n.id), errors.ErrStaleNode)
	}
	return nil
}

// commit dispatches ev from n and then verifies the tree if configured.
func (n *Node) commit(ev Event) error {
	n.tree.dispatch(n, ev)
	return n.tree.verify()
}

// render tears down the region and all child nodes and builds them again
// from the node's value.
func (n *Node) render() {
	n.destroyChildren()
	n.region = n.build()
	n.tree.renderer.Mount(n)
}

func (n *Node) build() Region {
	v := n.value
	switch v.Kind() {
	case models.KindObject:
		if info, ok := infer.DetectInfo(v, n.tree.opts.InfoFields); ok {
			msgKey := n.tree.opts.InfoFields.Message
			return Region{
				Kind:    RegionCard,
				Entries: []Entry{leafEntry(msgKey, info.Message)},
				Card:    &Card{Description: info.Description, Hints: info.Hints},
			}
		}
		obj := v.Object()
		r := Region{Kind: RegionObject, CanAdd: true}
		for _, key := range obj.Keys() {
			child, _ := obj.Get(key)
			e := n.entryFor(key, child)
			e.Renameable = true
			e.Deletable = true
			r.Entries = append(r.Entries, e)
		}
		return r
	case models.KindArray:
		r := Region{Kind: RegionArray, CanAdd: true}
		for i, item := range v.Items() {
			e := n.entryFor(fmt.Sprint(i), item)
			e.Deletable = true
			r.Entries = append(r.Entries, e)
		}
		return r
	default:
		return Region{Kind: RegionScalar, Entries: []Entry{leafEntry("", v)}}
	}
}

// entryFor renders one entry, creating a child node for containers.
func (n *Node) entryFor(key string, v models.Value) Entry {
	if infer.IsLeaf(v) {
		return leafEntry(key, v)
	}
	child := n.tree.newNode(n.id, key, v.Clone())
	child.render()
	return Entry{Key: key, Child: child.id, Kind: v.Kind()}
}

func leafEntry(key string, v models.Value) Entry {
	return Entry{Key: key, Child: NoNode, Text: infer.Text(v), Kind: v.Kind()}
}

func (n *Node) destroyChildren() {
	for _, e := range n.region.Entries {
		if e.Child != NoNode {
			n.tree.destroy(e.Child)
		}
	}
	n.region.Entries = nil
}

// entryFocus returns the focus for the editable region of e.
func (n *Node) entryFocus(e Entry, selectAll bool) Focus {
	f := Focus{Node: n.id, Key: e.Key, SelectAll: selectAll}
	switch {
	case e.IsLeaf():
		f.Part = PartValue
	case e.Renameable:
		f.Part = PartKey
	default:
		f.Part = PartRow
		f.SelectAll = false
	}
	return f
}

// entry returns the index of key in the region.
func (n *Node) entry(key string) (int, error) {
	i := n.region.index(key)
	if i >= 0 {
		return i, nil
	}
	if n.region.Kind == RegionCard && n.isCardStatic(key) {
		return -1, errors.NewMutationError(fmt.Sprintf("%q is part of a help card", key), errors.ErrReadOnly)
	}
	return -1, errors.NewMutationError(fmt.Sprintf("no entry %q", key), errors.ErrUnknownKey)
}

func (n *Node) isCardStatic(key string) bool {
	f := n.tree.opts.InfoFields
	return key == f.Description || key == f.Args
}
