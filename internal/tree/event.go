package tree

import (
	"go.uber.org/zap"
)

// Op names the mutation that produced a change event.
type Op uint8

const (
	OpEdit Op = iota
	OpToggle
	OpRename
	OpAppend
	OpRemove
	OpSet
)

func (o Op) String() string {
	switch o {
	case OpEdit:
		return "edit"
	case OpToggle:
		return "toggle"
	case OpRename:
		return "rename"
	case OpAppend:
		return "append"
	case OpRemove:
		return "remove"
	case OpSet:
		return "set"
	default:
		return "unknown"
	}
}

// Event is the change notification. It is created at the node where
// the mutation happened and bubbles to the root.
type Event struct {
	Op Op
	// Origin is the node whose value was mutated directly.
	Origin NodeID
	// Path is the key path from the root to Origin.
	Path []string
	// Key is the entry affected inside Origin; NewKey is the key after a
	// rename, or the key created by an append.
	Key    string
	NewKey string
	// Current is the node the event is passing through when a listener
	// runs; NoNode for tree-level listeners.
	Current NodeID
}

// dispatch bubbles ev from origin to the root. Each ancestor resyncs the
// entry of the child the event came from and nothing else: no re-render
// and no new event.
func (t *Tree) dispatch(origin *Node, ev Event) {
	ev.Origin = origin.id
	ev.Path = origin.Path()

	t.log.Debug("change",
		zap.Stringer("op", ev.Op),
		zap.Strings("path", ev.Path),
		zap.String("key", ev.Key),
		zap.String("new_key", ev.NewKey))

	child := origin
	ev.Current = child.id
	child.notify(ev)
	for parent := t.get(child.parent); parent != nil; parent = t.get(child.parent) {
		parent.resync(child)
		ev.Current = parent.id
		parent.notify(ev)
		child = parent
	}

	ev.Current = NoNode
	for _, fn := range t.listeners {
		fn(ev)
	}
}

func (n *Node) notify(ev Event) {
	for _, fn := range n.listeners {
		fn(ev)
	}
}

// resync replaces the entry child occupies with a copy of child's value.
func (n *Node) resync(child *Node) {
	if err := n.value.Put(child.key, child.value.Clone()); err != nil {
		// The child's key always names an entry of n; a failure here means
		// the arena is corrupt.
		n.tree.log.Error("resync failed", zap.Int("node", int(n.id)), zap.String("key", child.key), zap.Error(err))
		return
	}
	if i := n.region.index(child.key); i >= 0 {
		n.region.Entries[i].Kind = child.value.Kind()
	}
}
