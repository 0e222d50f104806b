package tree

import (
	"github.com/mcncl/jsonedit/internal/infer"
	"github.com/mcncl/jsonedit/internal/models"
)

// RegionKind says how a node's region is laid out.
type RegionKind uint8

const (
	// RegionScalar is a bare leaf document: one unnamed, editable entry.
	RegionScalar RegionKind = iota
	RegionObject
	RegionArray
	// RegionCard is an info structure shown as a help card.
	RegionCard
)

func (k RegionKind) String() string {
	switch k {
	case RegionScalar:
		return "scalar"
	case RegionObject:
		return "object"
	case RegionArray:
		return "array"
	case RegionCard:
		return "card"
	default:
		return "unknown"
	}
}

// Region is the rendered form of one node. Entries correspond 1:1, in
// order, with the entries of the node's value (for cards: the message
// only).
type Region struct {
	Kind    RegionKind
	Entries []Entry
	// Card is set for RegionCard.
	Card *Card
	// CanAdd reports whether the region shows an add control.
	CanAdd bool
}

// Entry is one key/value row of a region.
type Entry struct {
	Key        string
	Renameable bool
	Deletable  bool

	// Child is the node rendering a container value, or NoNode for a
	// leaf.
	Child NodeID

	// Text and Kind describe a leaf. Edited is set once the user has
	// typed into it; until then Text is the canonical rendering of the
	// value.
	Text   string
	Kind   models.Kind
	Edited bool
}

// IsLeaf reports whether the entry renders inline text.
func (e Entry) IsLeaf() bool { return e.Child == NoNode }

// Card is the static part of a help card.
type Card struct {
	Description string
	Hints       []infer.Hint
}

func (r Region) clone() Region {
	c := r
	c.Entries = make([]Entry, len(r.Entries))
	copy(c.Entries, r.Entries)
	if r.Card != nil {
		card := *r.Card
		card.Hints = append([]infer.Hint(nil), r.Card.Hints...)
		c.Card = &card
	}
	return c
}

func (r Region) index(key string) int {
	for i, e := range r.Entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Part identifies which part of an entry holds focus.
type Part uint8

const (
	// PartValue is the editable text of a leaf.
	PartValue Part = iota
	// PartKey is the editable key of an object entry.
	PartKey
	// PartRow is an entry without editable text of its own, such as an
	// array element holding a container.
	PartRow
	// PartAdd is the add control of a region.
	PartAdd
)

// Focus is where keyboard input goes. SelectAll means the whole text of
// the focused part is selected, so the next keystroke replaces it.
type Focus struct {
	Node      NodeID
	Key       string
	Part      Part
	SelectAll bool
}

// Renderer receives region changes. Mount is called after a node's
// region was rebuilt from scratch, Patch after a single entry was
// appended or had its value region replaced, Unmount when a node is
// destroyed. Implementations must not mutate the tree from these calls.
type Renderer interface {
	Mount(n *Node)
	Patch(n *Node, index int)
	Unmount(id NodeID)
	Focus(f Focus)
}

// NopRenderer discards all region changes.
type NopRenderer struct{}

func (NopRenderer) Mount(*Node)      {}
func (NopRenderer) Patch(*Node, int) {}
func (NopRenderer) Unmount(NodeID)   {}
func (NopRenderer) Focus(Focus)      {}
