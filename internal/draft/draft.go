// Package draft keeps recovery copies of documents with unsaved edits.
//
// A draft belongs to one target (the absolute path of the edited file)
// and is only handed back for that target. Drafts older than the store's
// TTL are discarded on load.
package draft

import (
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mcncl/jsonedit/internal/atomicfile"
	"github.com/mcncl/jsonedit/internal/errors"
	"github.com/mcncl/jsonedit/internal/models"
)

// Draft is one stored recovery copy.
type Draft struct {
	// ID stays the same across saves of one editing session.
	ID      string       `json:"id"`
	Target  string       `json:"target"`
	SavedAt time.Time    `json:"saved_at"`
	Content models.Value `json:"content"`
}

// Store is a directory of drafts, one file per target.
type Store struct {
	dir string
	ttl time.Duration
	now func() time.Time
	log *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore returns a store in dir. A ttl of zero keeps drafts forever.
// The directory is created on first save.
func NewStore(dir string, ttl time.Duration, opts ...Option) *Store {
	s := &Store{dir: dir, ttl: ttl, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file a target's draft is stored in.
func (s *Store) Path(target string) string {
	sum := blake3.Sum256([]byte(target))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

// Save stores content as the draft of d.Target. An empty d.ID gets a new
// id. The stored draft is returned.
func (s *Store) Save(d Draft) (Draft, error) {
	if d.Target == "" {
		return Draft{}, errors.NewDraftError("draft has no target", errors.ErrInvalidFilePath)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.SavedAt = s.now().UTC()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return Draft{}, errors.NewDraftError("failed to encode draft", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return Draft{}, errors.NewDraftError(fmt.Sprintf("failed to create draft directory '%s'", s.dir), err)
	}
	path := s.Path(d.Target)
	if err := atomicfile.Write(path, append(data, '\n'), 0o600); err != nil {
		return Draft{}, errors.NewDraftError(fmt.Sprintf("failed to write draft for '%s'", d.Target), err)
	}

	s.log.Debug("draft saved", zap.String("id", d.ID), zap.String("target", d.Target), zap.String("path", path))
	return d, nil
}

// Load returns the draft of target. ok is false when there is none, it
// belongs to another target or it has expired; expired drafts are
// removed.
func (s *Store) Load(target string) (d Draft, ok bool, err error) {
	path := s.Path(target)
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Draft{}, false, nil
		}
		return Draft{}, false, errors.NewDraftError(fmt.Sprintf("failed to read draft for '%s'", target), err)
	}

	if err := json.Unmarshal(data, &d); err != nil {
		s.log.Warn("discarding unreadable draft", zap.String("path", path), zap.Error(err))
		return Draft{}, false, s.remove(path)
	}
	if d.Target != target {
		return Draft{}, false, nil
	}
	if s.ttl > 0 && s.now().Sub(d.SavedAt) > s.ttl {
		s.log.Info("discarding expired draft", zap.String("id", d.ID), zap.String("target", target), zap.Time("saved_at", d.SavedAt))
		return Draft{}, false, s.remove(path)
	}
	return d, true, nil
}

// Clear removes the draft of target, if any.
func (s *Store) Clear(target string) error {
	return s.remove(s.Path(target))
}

func (s *Store) remove(path string) error {
	if err := os.Remove(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewDraftError(fmt.Sprintf("failed to remove draft '%s'", path), err)
	}
	return nil
}
