package tree

import (
	"fmt"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/models"
)

// EditLeaf is called on every change of a leaf's text. The text is run
// through type inference and the result replaces the value under key.
// The region keeps showing text exactly as typed.
func (n *Node) EditLeaf(key, text string) error {
	if err := n.live(); err != nil {
		return err
	}
	i, err := n.entry(key)
	if err != nil {
		return err
	}
	e := &n.region.Entries[i]
	if !e.IsLeaf() {
		return errors.NewMutationError(fmt.Sprintf("entry %q holds a %s, not text", key, e.Kind), errors.ErrNotContainer)
	}

	val := infer.Leaf(text, e.Kind)
	if err := n.storeLeaf(key, val); err != nil {
		return err
	}
	e.Text = text
	e.Kind = val.Kind()
	e.Edited = true
	n.tree.renderer.Patch(n, i)
	return n.commit(Event{Op: OpEdit, Key: key})
}

// Toggle flips a boolean leaf.
func (n *Node) Toggle(key string) error {
	if err := n.live(); err != nil {
		return err
	}
	i, err := n.entry(key)
	if err != nil {
		return err
	}
	e := &n.region.Entries[i]
	if !e.IsLeaf() || e.Kind != models.KindBool {
		return errors.NewMutationError(fmt.Sprintf("entry %q is not a bool", key), errors.ErrNotSupported)
	}

	current, err := infer.FromText(e.Text, models.KindBool)
	if err != nil {
		current = models.Bool(false)
	}
	val := models.Bool(!current.Truth())
	if err := n.storeLeaf(key, val); err != nil {
		return err
	}
	e.Text = infer.Text(val)
	e.Edited = false
	n.tree.renderer.Patch(n, i)
	return n.commit(Event{Op: OpToggle, Key: key})
}

func (n *Node) storeLeaf(key string, val models.Value) error {
	if n.region.Kind == RegionScalar {
		n.value = val
		return nil
	}
	if err := n.value.Put(key, val); err != nil {
		return errors.NewInvariantError(fmt.Sprintf("entry %q has no value", key), err)
	}
	return nil
}

// Commit handles the commit chord (Enter) on the key or value of the
// entry under key: it appends a new entry to this node when the node
// accepts one. It reports whether an entry was appended.
func (n *Node) Commit(key string) (bool, error) {
	if err := n.live(); err != nil {
		return false, err
	}
	if _, err := n.entry(key); err != nil {
		return false, err
	}
	switch n.region.Kind {
	case RegionArray:
	case RegionObject:
		if !n.tree.opts.EnterAppendsInObjects {
			return false, nil
		}
	default:
		return false, nil
	}
	if _, err := n.Append(); err != nil {
		return false, err
	}
	return true, nil
}

// Erase handles the delete chord on the entry under key. text is the
// current content of the focused field; the entry is only removed when
// it is empty. It reports whether the entry was removed.
func (n *Node) Erase(key, text string) (bool, error) {
	if err := n.live(); err != nil {
		return false, err
	}
	if _, err := n.entry(key); err != nil {
		return false, err
	}
	if text != "" {
		return false, nil
	}
	switch n.region.Kind {
	case RegionArray:
	case RegionObject:
		if !n.tree.opts.BackspaceRemovesInObjects {
			return false, nil
		}
	default:
		return false, nil
	}
	if err := n.Remove(key); err != nil {
		return false, err
	}
	return true, nil
}
