package tree

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/infer"
)

// Append adds an entry holding the default value: the next index for
// arrays, the default key made unique for objects. Only the new entry is
// rendered. Focus moves to it with its text selected. Append returns the
// new key.
func (n *Node) Append() (string, error) {
	if err := n.live(); err != nil {
		return "", err
	}
	if !n.region.CanAdd {
		return "", errors.NewMutationError(fmt.Sprintf("cannot add entries to a %s", n.region.Kind), errors.ErrNotSupported)
	}

	val := n.tree.opts.DefaultValue.Clone()
	var key string
	switch n.region.Kind {
	case RegionArray:
		key = strconv.Itoa(n.value.Len())
		if err := n.value.Append(val); err != nil {
			return "", errors.NewInvariantError("array region over a non-array value", err)
		}
	case RegionObject:
		obj := n.value.Object()
		key = infer.UniqueKey(n.tree.opts.DefaultKey, obj.Has)
		if err := n.value.Put(key, val); err != nil {
			return "", errors.NewInvariantError("object region over a non-object value", err)
		}
	}

	e := n.entryFor(key, val)
	e.Deletable = true
	e.Renameable = n.region.Kind == RegionObject
	n.region.Entries = append(n.region.Entries, e)
	n.tree.renderer.Patch(n, len(n.region.Entries)-1)

	f := n.entryFocus(e, true)
	if e.Renameable {
		f.Part = PartKey
	}
	n.tree.SetFocus(f)

	n.tree.log.Debug("append", zap.Int("node", int(n.id)), zap.String("key", key))
	return key, n.commit(Event{Op: OpAppend, NewKey: key})
}

// Remove deletes the entry under key and rebuilds the whole region, so
// indices and child nodes are renumbered from the new value. Focus moves
// to the new last entry with its text selected.
//
// For arrays key is first matched against the displayed indices, then
// parsed as an index. A key that is neither is a contract violation.
func (n *Node) Remove(key string) error {
	if err := n.live(); err != nil {
		return err
	}
	switch n.region.Kind {
	case RegionArray:
		i, err := n.arrayIndex(key)
		if err != nil {
			return err
		}
		if err := n.value.RemoveAt(i); err != nil {
			return errors.NewInvariantError("array region over a non-array value", err)
		}
	case RegionObject:
		if !n.value.Object().Delete(key) {
			return errors.NewMutationError(fmt.Sprintf("no entry %q", key), errors.ErrUnknownKey)
		}
	default:
		return errors.NewMutationError(fmt.Sprintf("cannot remove entries from a %s", n.region.Kind), errors.ErrNotSupported)
	}

	n.render()

	if last := len(n.region.Entries) - 1; last >= 0 {
		n.tree.SetFocus(n.entryFocus(n.region.Entries[last], true))
	} else {
		n.tree.SetFocus(Focus{Node: n.id, Part: PartAdd})
	}

	n.tree.log.Debug("remove", zap.Int("node", int(n.id)), zap.String("key", key))
	return n.commit(Event{Op: OpRemove, Key: key})
}

func (n *Node) arrayIndex(key string) (int, error) {
	if i := n.region.index(key); i >= 0 {
		return i, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || i < 0 || i >= n.value.Len() {
		return -1, errors.NewContractError(
			fmt.Sprintf("remove %q from array of %d", key, n.value.Len()),
			errors.ErrBadIndex,
		)
	}
	return i, nil
}

// Rename moves the object entry under oldKey to want, or to want with
// the smallest numeric suffix that does not collide with another key.
// The entry keeps its position; only its value region is rebuilt,
// unless the renamed object now has the shape of an info structure: then
// the whole node is rebuilt as a card, as Remove would, and focus moves
// to the card's message. Rename returns the key actually used.
func (n *Node) Rename(oldKey, want string) (string, error) {
	if err := n.live(); err != nil {
		return "", err
	}
	if n.region.Kind != RegionObject {
		if n.region.Kind == RegionArray {
			return "", errors.NewMutationError("array indices cannot be renamed", errors.ErrNotSupported)
		}
		return "", errors.NewMutationError(fmt.Sprintf("cannot rename entries of a %s", n.region.Kind), errors.ErrNotSupported)
	}
	i, err := n.entry(oldKey)
	if err != nil {
		return "", err
	}

	obj := n.value.Object()
	newKey := infer.UniqueKey(want, func(k string) bool {
		return k != oldKey && obj.Has(k)
	})
	if newKey == oldKey {
		return oldKey, nil
	}
	obj.Rename(oldKey, newKey)

	if _, ok := infer.DetectInfo(n.value, n.tree.opts.InfoFields); ok {
		n.render()
		n.tree.focusFirst(n)
		n.tree.log.Debug("rename", zap.Int("node", int(n.id)), zap.String("from", oldKey), zap.String("to", newKey), zap.Bool("card", true))
		return newKey, n.commit(Event{Op: OpRename, Key: oldKey, NewKey: newKey})
	}

	old := n.region.Entries[i]
	if old.Child != NoNode {
		n.tree.destroy(old.Child)
	}
	val, _ := obj.Get(newKey)
	e := n.entryFor(newKey, val)
	e.Renameable = old.Renameable
	e.Deletable = old.Deletable
	n.region.Entries[i] = e
	n.tree.renderer.Patch(n, i)

	if f := n.tree.focus; f.Node == n.id && f.Key == oldKey {
		n.tree.SetFocus(Focus{Node: n.id, Key: newKey, Part: f.Part})
	}

	n.tree.log.Debug("rename", zap.Int("node", int(n.id)), zap.String("from", oldKey), zap.String("to", newKey))
	return newKey, n.commit(Event{Op: OpRename, Key: oldKey, NewKey: newKey})
}
