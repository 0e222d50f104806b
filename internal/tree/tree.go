// Package tree is the schema-less JSON editing model.
//
// A Tree is an arena of Nodes. Every object or array of the document
// (and the document itself) is bound to one Node, which owns a private
// copy of that value and a Region describing how it is displayed: one
// Entry per key, leaves as editable text, nested containers as child
// Nodes. Edits are applied to the Node where they happen and then
// bubble to the root as a change Event; every ancestor on the way copies
// the child's value into its own under the child's key. Structural
// edits rebuild the affected region, value edits do not.
//
// A Tree is not safe for concurrent use.
package tree

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/models"
)

// NodeID identifies a node within its tree. IDs are never reused.
type NodeID int

// NoNode is the zero parent of the root and the Child of leaf entries.
const NoNode NodeID = -1

// Options configure a Tree.
type Options struct {
	// DefaultKey is the base key for entries appended to objects.
	DefaultKey string
	// DefaultValue is stored by append.
	DefaultValue models.Value
	// EnterAppendsInObjects and BackspaceRemovesInObjects extend the
	// commit and erase chords from arrays to objects.
	EnterAppendsInObjects     bool
	BackspaceRemovesInObjects bool
	// InfoFields names the members of an info structure.
	InfoFields infer.InfoFields
	// Verify runs Check after every mutation.
	Verify bool
	Logger *zap.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithDefaultKey sets the base key for appended object entries.
func WithDefaultKey(key string) Option {
	return func(o *Options) { o.DefaultKey = key }
}

// WithDefaultValue sets the placeholder stored by append.
func WithDefaultValue(v models.Value) Option {
	return func(o *Options) { o.DefaultValue = v.Clone() }
}

// WithObjectChords controls whether commit and erase apply to object
// entries as well as array entries.
func WithObjectChords(enterAppends, backspaceRemoves bool) Option {
	return func(o *Options) {
		o.EnterAppendsInObjects = enterAppends
		o.BackspaceRemovesInObjects = backspaceRemoves
	}
}

// WithInfoFields sets the member names of info structures.
func WithInfoFields(fields infer.InfoFields) Option {
	return func(o *Options) { o.InfoFields = fields }
}

// WithVerify enables a full consistency check after every mutation.
func WithVerify(verify bool) Option {
	return func(o *Options) { o.Verify = verify }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// DefaultOptions returns the options used by New without arguments.
func DefaultOptions() Options {
	return Options{
		DefaultKey:                "key",
		DefaultValue:              models.String(""),
		EnterAppendsInObjects:     true,
		BackspaceRemovesInObjects: true,
		InfoFields:                infer.DefaultInfoFields,
	}
}

// Tree is the arena holding every node of one document.
//
// Slots of destroyed nodes stay nil and are never handed out again, so a
// stale handle or NodeID keeps failing with ErrStaleNode. The arena grows
// by one slot per node ever built; the live count is tracked separately.
type Tree struct {
	opts      Options
	log       *zap.Logger
	nodes     []*Node
	live      int
	root      NodeID
	renderer  Renderer
	listeners []func(Event)
	focus     Focus
}

// New creates an empty tree. Call Load to bind a document.
func New(opts ...Option) *Tree {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Tree{
		opts:     o,
		log:      log,
		root:     NoNode,
		renderer: NopRenderer{},
		focus:    Focus{Node: NoNode},
	}
}

// Options returns the tree's options.
func (t *Tree) Options() Options { return t.opts }

// Load binds v as the document, discarding any previous one. Unlike
// SetJSON on the root it does not emit a change event: loading is not
// an edit.
func (t *Tree) Load(v models.Value) *Node {
	if old := t.get(t.root); old != nil {
		t.destroy(old.id)
	}
	root := t.newNode(NoNode, "", v.Clone())
	t.root = root.id
	root.render()
	t.focusFirst(root)
	return root
}

// Root returns the root node, or nil before Load.
func (t *Tree) Root() *Node { return t.get(t.root) }

// JSON returns a copy of the whole document.
func (t *Tree) JSON() models.Value {
	root := t.Root()
	if root == nil {
		return models.Null()
	}
	return root.JSON()
}

// Node returns the live node with the given id.
func (t *Tree) Node(id NodeID) (*Node, error) {
	n := t.get(id)
	if n == nil {
		return nil, errors.NewContractError(fmt.Sprintf("node %d", id), errors.ErrStaleNode)
	}
	return n, nil
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// OnChange registers fn to run after every change event has bubbled to
// the root.
func (t *Tree) OnChange(fn func(Event)) {
	t.listeners = append(t.listeners, fn)
}

// Mount attaches r and replays the current state into it, parents
// before children.
func (t *Tree) Mount(r Renderer) {
	if r == nil {
		r = NopRenderer{}
	}
	t.renderer = r
	if root := t.Root(); root != nil {
		t.mountAll(root)
	}
	r.Focus(t.focus)
}

func (t *Tree) mountAll(n *Node) {
	t.renderer.Mount(n)
	for _, e := range n.region.Entries {
		if child := t.get(e.Child); child != nil {
			t.mountAll(child)
		}
	}
}

// Focus returns where input currently goes.
func (t *Tree) Focus() Focus { return t.focus }

// SetFocus moves input focus. Front ends call it when the user moves
// the cursor.
func (t *Tree) SetFocus(f Focus) {
	t.focus = f
	t.renderer.Focus(f)
}

// Lookup returns the node bound to the container at path.
func (t *Tree) Lookup(path []string) (*Node, error) {
	n := t.Root()
	if n == nil {
		return nil, errors.NewContractError("lookup before load", errors.ErrStaleNode)
	}
	for i, key := range path {
		idx := n.region.index(key)
		if idx < 0 {
			return nil, errors.NewMutationError(fmt.Sprintf("no entry %q at %v", key, path[:i]), errors.ErrUnknownKey)
		}
		child := t.get(n.region.Entries[idx].Child)
		if child == nil {
			return nil, errors.NewMutationError(fmt.Sprintf("entry %v is a leaf", path[:i+1]), errors.ErrNotContainer)
		}
		n = child
	}
	return n, nil
}

// Resolve splits path into the node owning the last entry and that
// entry's key.
func (t *Tree) Resolve(path []string) (*Node, string, error) {
	if len(path) == 0 {
		return nil, "", errors.NewMutationError("empty path", errors.ErrUnknownKey)
	}
	n, err := t.Lookup(path[:len(path)-1])
	if err != nil {
		return nil, "", err
	}
	key := path[len(path)-1]
	if n.region.index(key) < 0 {
		return nil, "", errors.NewMutationError(fmt.Sprintf("no entry %q at %v", key, path[:len(path)-1]), errors.ErrUnknownKey)
	}
	return n, key, nil
}

func (t *Tree) get(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

func (t *Tree) newNode(parent NodeID, key string, v models.Value) *Node {
	n := &Node{
		tree:   t,
		id:     NodeID(len(t.nodes)),
		parent: parent,
		key:    key,
		value:  v,
	}
	t.nodes = append(t.nodes, n)
	t.live++
	return n
}

// destroy removes id and its descendants from the arena.
func (t *Tree) destroy(id NodeID) {
	n := t.get(id)
	if n == nil {
		return
	}
	n.destroyChildren()
	t.nodes[id] = nil
	t.live--
	n.listeners = nil
	t.renderer.Unmount(id)
}

func (t *Tree) focusFirst(n *Node) {
	if len(n.region.Entries) == 0 {
		if n.region.CanAdd {
			t.SetFocus(Focus{Node: n.id, Part: PartAdd})
		} else {
			t.SetFocus(Focus{Node: n.id, Part: PartRow})
		}
		return
	}
	t.SetFocus(n.entryFocus(n.region.Entries[0], false))
}

// verify runs Check when the tree is configured to.
func (t *Tree) verify() error {
	if !t.opts.Verify {
		return nil
	}
	if err := t.Check(); err != nil {
		t.log.Error("tree check failed", zap.Error(err))
		return err
	}
	return nil
}
