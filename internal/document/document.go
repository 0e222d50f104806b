// Package document ties an edit tree to the file it was loaded from. It
// tracks whether there are unsaved edits, keeps a recovery draft while
// there are, and writes the file back on save.
package document

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/atomicfile"
	"github.com/mcncl/jsonedit/internal/draft"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/formatter"
	"github.com/mcncl/jsonedit/internal/models"
	"github.com/mcncl/jsonedit/internal/parser"
	"github.com/mcncl/jsonedit/internal/tree"
)

// Document is one open JSON file.
type Document struct {
	path      string
	tree      *tree.Tree
	formatter *formatter.Formatter
	drafts    *draft.Store
	log       *zap.Logger

	dirty    bool
	restored bool
	draftID  string
	// draftErr is the last failure to write a draft; editing continues.
	draftErr error
}

// Option configures a Document.
type Option func(*Document)

// WithTreeOptions sets the options of the document's tree.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(d *Document) { d.tree = tree.New(opts...) }
}

// WithFormatter sets the formatter used by Save.
func WithFormatter(f *formatter.Formatter) Option {
	return func(d *Document) { d.formatter = f }
}

// WithDrafts enables recovery drafts in s.
func WithDrafts(s *draft.Store) Option {
	return func(d *Document) { d.drafts = s }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(d *Document) { d.log = log }
}

// Open parses the file at path and binds it to a new tree. If a draft
// of the file exists it replaces the file content and the document
// starts out dirty.
func Open(path string, opts ...Option) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("invalid path '%s'", path), errors.ErrInvalidFilePath)
	}
	d := &Document{
		path:      abs,
		formatter: formatter.NewFormatter(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.tree == nil {
		d.tree = tree.New(tree.WithLogger(d.log))
	}

	v, err := parser.ParseFile(abs)
	if err != nil {
		return nil, err
	}
	d.tree.Load(v)

	if d.drafts != nil {
		dr, ok, err := d.drafts.Load(abs)
		if err != nil {
			d.log.Warn("ignoring draft", zap.String("path", abs), zap.Error(err))
		} else if ok {
			d.tree.Load(dr.Content)
			d.draftID = dr.ID
			d.dirty = true
			d.restored = true
			d.log.Info("restored draft", zap.String("id", dr.ID), zap.String("path", abs), zap.Time("saved_at", dr.SavedAt))
		}
	}

	d.tree.OnChange(d.changed)
	return d, nil
}

// Path returns the absolute path of the file.
func (d *Document) Path() string { return d.path }

// Tree returns the edit tree.
func (d *Document) Tree() *tree.Tree { return d.tree }

// JSON returns a copy of the current document value.
func (d *Document) JSON() models.Value { return d.tree.JSON() }

// Dirty reports whether there are edits that have not been saved.
func (d *Document) Dirty() bool { return d.dirty }

// Restored reports whether the document was opened from a draft.
func (d *Document) Restored() bool { return d.restored }

// DraftErr returns the last error writing a draft, or nil.
func (d *Document) DraftErr() error { return d.draftErr }

func (d *Document) changed(ev tree.Event) {
	d.dirty = true
	if d.drafts == nil {
		return
	}
	saved, err := d.drafts.Save(draft.Draft{ID: d.draftID, Target: d.path, Content: d.tree.JSON()})
	if err != nil {
		d.draftErr = err
		d.log.Warn("draft not saved", zap.Stringer("op", ev.Op), zap.Error(err))
		return
	}
	d.draftID = saved.ID
	d.draftErr = nil
}

// Render returns the document as it would be saved.
func (d *Document) Render() (string, error) {
	out, err := d.formatter.Format(d.tree.JSON())
	if err != nil {
		return "", errors.NewOutputError("failed to format document", err)
	}
	return out, nil
}

// Save writes the document to its file, marks it clean and drops the
// draft.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path. The document is only marked clean
// when path is its own file.
func (d *Document) SaveAs(path string) error {
	out, err := d.Render()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("invalid path '%s'", path), errors.ErrInvalidFilePath)
	}
	if err := atomicfile.Write(abs, []byte(out), atomicfile.Mode(abs, 0o644)); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write '%s'", abs), err)
	}
	d.log.Info("saved", zap.String("path", abs))

	if abs != d.path {
		return nil
	}
	d.dirty = false
	d.restored = false
	d.draftID = ""
	return d.clearDraft()
}

// Reset drops the draft and all unsaved edits and reloads the file.
func (d *Document) Reset() error {
	v, err := parser.ParseFile(d.path)
	if err != nil {
		return err
	}
	if err := d.clearDraft(); err != nil {
		return err
	}
	d.tree.Load(v)
	d.dirty = false
	d.restored = false
	d.draftID = ""
	d.log.Info("reset", zap.String("path", d.path))
	return nil
}

// ClearDraft removes any draft of the file at path without opening it.
func ClearDraft(s *draft.Store, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid path '%s'", path), errors.ErrInvalidFilePath)
	}
	return s.Clear(abs)
}

func (d *Document) clearDraft() error {
	if d.drafts == nil {
		return nil
	}
	return d.drafts.Clear(d.path)
}
