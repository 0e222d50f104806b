package tree

import (
	"fmt"
	"strconv"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/models"
)

// Check walks the tree and verifies that every region shows exactly the
// value of its node, that every child holds the value its parent has
// under the child's key, and that no node is unreachable from the root.
func (t *Tree) Check() error {
	root := t.Root()
	if root == nil {
		return nil
	}
	if root.parent != NoNode {
		return invariant(root, "root has a parent")
	}
	seen := 0
	if err := t.checkNode(root, &seen); err != nil {
		return err
	}
	if live := t.Len(); live != seen {
		return errors.NewInvariantError(fmt.Sprintf("%d live nodes, %d reachable from the root", live, seen), errors.ErrInvariant)
	}
	return nil
}

func (t *Tree) checkNode(n *Node, seen *int) error {
	*seen++
	if err := n.checkKeys(); err != nil {
		return err
	}
	for _, e := range n.region.Entries {
		val, ok := n.entryValue(e.Key)
		if !ok {
			return invariant(n, fmt.Sprintf("entry %q has no value", e.Key))
		}
		if e.Kind != val.Kind() {
			return invariant(n, fmt.Sprintf("entry %q shows a %s, value is a %s", e.Key, e.Kind, val.Kind()))
		}
		if e.IsLeaf() {
			if err := n.checkLeaf(e, val); err != nil {
				return err
			}
			continue
		}
		child := t.get(e.Child)
		if child == nil {
			return invariant(n, fmt.Sprintf("entry %q points at dead node %d", e.Key, e.Child))
		}
		if child.parent != n.id || child.key != e.Key {
			return invariant(n, fmt.Sprintf("node %d is registered as %d/%q, rendered at %d/%q", child.id, child.parent, child.key, n.id, e.Key))
		}
		if !models.Equal(child.value, val) {
			return invariant(n, fmt.Sprintf("entry %q differs from node %d", e.Key, child.id))
		}
		if err := t.checkNode(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// checkKeys compares the region's keys, in order, with the value's.
func (n *Node) checkKeys() error {
	var want []string
	switch n.region.Kind {
	case RegionScalar:
		if n.value.IsContainer() {
			return invariant(n, "scalar region over a container")
		}
		want = []string{""}
	case RegionObject:
		if n.value.Kind() != models.KindObject {
			return invariant(n, fmt.Sprintf("object region over a %s", n.value.Kind()))
		}
		want = n.value.Object().Keys()
	case RegionArray:
		if n.value.Kind() != models.KindArray {
			return invariant(n, fmt.Sprintf("array region over a %s", n.value.Kind()))
		}
		for i := 0; i < n.value.Len(); i++ {
			want = append(want, strconv.Itoa(i))
		}
	case RegionCard:
		info, ok := infer.DetectInfo(n.value, n.tree.opts.InfoFields)
		if !ok {
			return invariant(n, "card region over a value that is not an info structure")
		}
		if n.region.Card == nil || n.region.Card.Description != info.Description || len(n.region.Card.Hints) != len(info.Hints) {
			return invariant(n, "card differs from its info structure")
		}
		for i, h := range info.Hints {
			if n.region.Card.Hints[i] != h {
				return invariant(n, fmt.Sprintf("card hint %q differs", h.Name))
			}
		}
		want = []string{n.tree.opts.InfoFields.Message}
	}
	if len(want) != len(n.region.Entries) {
		return invariant(n, fmt.Sprintf("region has %d entries, value has %d", len(n.region.Entries), len(want)))
	}
	for i, key := range want {
		if n.region.Entries[i].Key != key {
			return invariant(n, fmt.Sprintf("entry %d is %q, value has %q", i, n.region.Entries[i].Key, key))
		}
	}
	return nil
}

// checkLeaf compares a leaf's displayed text with its value.
func (n *Node) checkLeaf(e Entry, val models.Value) error {
	var shown models.Value
	if e.Edited {
		shown = infer.Leaf(e.Text, e.Kind)
	} else {
		v, err := infer.FromText(e.Text, e.Kind)
		if err != nil {
			return errors.NewInvariantError(fmt.Sprintf("node %d entry %q", n.id, e.Key), err)
		}
		shown = v
	}
	if !models.Equal(shown, val) {
		return invariant(n, fmt.Sprintf("entry %q shows %q", e.Key, e.Text))
	}
	return nil
}

func (n *Node) entryValue(key string) (models.Value, bool) {
	if n.region.Kind == RegionScalar {
		return n.value, key == ""
	}
	return n.value.Get(key)
}

func invariant(n *Node, msg string) error {
	return errors.NewInvariantError(fmt.Sprintf("node %d: %s", n.id, msg), errors.ErrInvariant)
}
